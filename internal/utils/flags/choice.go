package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	choicePlaceholderPrefix        = "<"
	choicePlaceholderSuffix        = ">"
	choiceSeparatorLiteral         = "|"
	choiceUsageEmptyTemplate       = "`%s`"
	choiceUsageFullTemplate        = "`%s` %s"
	choiceValueTypeName            = "choice"
	unsupportedChoiceErrorTemplate = "unsupported value %q (expected one of %s)"
)

// ChoiceValue is a pflag.Value restricted to a fixed, case-insensitive set of choices.
type ChoiceValue struct {
	target  *string
	choices []string
}

// AddChoiceFlag registers a string flag that rejects values outside choices.
// The default choice is highlighted in the generated usage text.
func AddChoiceFlag(flagSet *pflag.FlagSet, target *string, name string, defaultChoice string, choices []string, description string) {
	if flagSet == nil || target == nil || len(name) == 0 {
		return
	}
	*target = strings.ToLower(strings.TrimSpace(defaultChoice))
	choiceValue := &ChoiceValue{target: target, choices: normalizeChoices(choices)}
	flagSet.Var(choiceValue, name, FormatChoiceUsage(defaultChoice, choices, description))
}

// String returns the current selection.
func (value *ChoiceValue) String() string {
	if value == nil || value.target == nil {
		return ""
	}
	return *value.target
}

// Set validates and stores candidate.
func (value *ChoiceValue) Set(candidate string) error {
	normalizedCandidate := strings.ToLower(strings.TrimSpace(candidate))
	for _, choice := range value.choices {
		if choice == normalizedCandidate {
			*value.target = normalizedCandidate
			return nil
		}
	}
	return fmt.Errorf(unsupportedChoiceErrorTemplate, candidate, strings.Join(value.choices, choiceSeparatorLiteral))
}

// Type names the flag value kind in help output.
func (value *ChoiceValue) Type() string {
	return choiceValueTypeName
}

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := buildChoicePlaceholder(defaultChoice, choices)
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

func buildChoicePlaceholder(defaultChoice string, choices []string) string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	normalized := normalizeChoices(choices)
	highlighted := make([]string, 0, len(normalized))
	for _, choice := range normalized {
		if choice == normalizedDefault {
			highlighted = append(highlighted, strings.ToUpper(choice))
			continue
		}
		highlighted = append(highlighted, choice)
	}
	return choicePlaceholderPrefix + strings.Join(highlighted, choiceSeparatorLiteral) + choicePlaceholderSuffix
}

func normalizeChoices(choices []string) []string {
	normalized := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		normalizedChoice := strings.ToLower(strings.TrimSpace(choice))
		if len(normalizedChoice) == 0 {
			continue
		}
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}
		seen[normalizedChoice] = struct{}{}
		normalized = append(normalized, normalizedChoice)
	}
	return normalized
}
