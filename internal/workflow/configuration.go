package workflow

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configurationLoadErrorTemplateConstant            = "failed to load workflow configuration: %w"
	configurationParseErrorTemplateConstant           = "failed to parse workflow configuration: %w"
	configurationPathRequiredMessageConstant          = "workflow configuration path must be provided"
	configurationEmptyStepsMessageConstant            = "workflow configuration must define at least one step"
	configurationOperationMissingMessageConstant      = "workflow step missing operation name"
	configurationToolNameRequiredMessageConstant      = "workflow tool names must be non-empty"
	configurationDuplicateToolNameTemplateConstant    = "workflow configuration defines duplicate tool name %s"
	configurationToolOperationMissingTemplateConstant = "workflow tool %s missing operation name"
	configurationUnknownToolTemplateConstant          = "workflow step references unknown tool %s"
)

// OperationType identifies supported workflow operations.
type OperationType string

// Supported workflow operations.
const (
	OperationTypeListBranches OperationType = OperationType("list-branches")
	OperationTypePull         OperationType = OperationType("pull")
)

// Configuration describes the ordered workflow steps and reusable tool definitions loaded from YAML or JSON.
type Configuration struct {
	Tools []NamedToolConfiguration `yaml:"tools" json:"tools"`
	Steps []StepConfiguration      `yaml:"steps" json:"steps"`
}

// NamedToolConfiguration captures a reusable operation definition along with its reference name.
type NamedToolConfiguration struct {
	Name              string `yaml:"name" json:"name"`
	ToolConfiguration `yaml:",inline" json:",inline"`
}

// ToolConfiguration describes reusable options for a specific operation type.
type ToolConfiguration struct {
	Operation OperationType  `yaml:"operation" json:"operation"`
	Options   map[string]any `yaml:"with" json:"with"`
}

// StepConfiguration associates an operation type with declarative options.
// A step may omit the operation when its options reference a tool.
type StepConfiguration struct {
	Operation OperationType  `yaml:"operation" json:"operation"`
	Options   map[string]any `yaml:"with" json:"with"`
}

// LoadConfiguration reads the workflow definition from disk, accepting both a
// top-level document and one nested under a workflow key.
func LoadConfiguration(filePath string) (Configuration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Configuration{}, errors.New(configurationPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Configuration{}, fmt.Errorf(configurationLoadErrorTemplateConstant, readError)
	}

	return ParseConfiguration(contentBytes)
}

// ParseConfiguration decodes and validates a workflow document.
func ParseConfiguration(contentBytes []byte) (Configuration, error) {
	var configuration Configuration
	if unmarshalError := yaml.Unmarshal(contentBytes, &configuration); unmarshalError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, unmarshalError)
	}

	if len(configuration.Tools) == 0 && len(configuration.Steps) == 0 {
		var wrapper struct {
			Workflow Configuration `yaml:"workflow" json:"workflow"`
		}
		if nestedError := yaml.Unmarshal(contentBytes, &wrapper); nestedError == nil {
			configuration = wrapper.Workflow
		}
	}

	toolLookup, toolsError := buildToolLookup(configuration.Tools)
	if toolsError != nil {
		return Configuration{}, toolsError
	}

	if len(configuration.Steps) == 0 {
		return Configuration{}, errors.New(configurationEmptyStepsMessageConstant)
	}

	for stepIndex := range configuration.Steps {
		step := &configuration.Steps[stepIndex]
		step.Operation = OperationType(strings.TrimSpace(string(step.Operation)))

		toolName, referencesTool := toolReference(step.Options)
		if referencesTool {
			if _, toolExists := toolLookup[toolName]; !toolExists {
				return Configuration{}, fmt.Errorf(configurationUnknownToolTemplateConstant, toolName)
			}
			continue
		}
		if len(step.Operation) == 0 {
			return Configuration{}, errors.New(configurationOperationMissingMessageConstant)
		}
	}

	return configuration, nil
}

func (configuration Configuration) toolLookup() map[string]ToolConfiguration {
	lookup, _ := buildToolLookup(configuration.Tools)
	return lookup
}

func buildToolLookup(tools []NamedToolConfiguration) (map[string]ToolConfiguration, error) {
	lookup := make(map[string]ToolConfiguration, len(tools))
	for toolIndex := range tools {
		trimmedName := strings.TrimSpace(tools[toolIndex].Name)
		if len(trimmedName) == 0 {
			return nil, errors.New(configurationToolNameRequiredMessageConstant)
		}
		if _, exists := lookup[trimmedName]; exists {
			return nil, fmt.Errorf(configurationDuplicateToolNameTemplateConstant, trimmedName)
		}
		trimmedOperation := OperationType(strings.TrimSpace(string(tools[toolIndex].Operation)))
		if len(trimmedOperation) == 0 {
			return nil, fmt.Errorf(configurationToolOperationMissingTemplateConstant, trimmedName)
		}
		lookup[trimmedName] = ToolConfiguration{Operation: trimmedOperation, Options: tools[toolIndex].Options}
	}
	return lookup, nil
}

func toolReference(options map[string]any) (string, bool) {
	for rawKey, rawValue := range options {
		if !strings.EqualFold(strings.TrimSpace(rawKey), optionToolKeyConstant) {
			continue
		}
		toolName, isString := rawValue.(string)
		if !isString {
			return "", false
		}
		trimmedName := strings.TrimSpace(toolName)
		return trimmedName, len(trimmedName) > 0
	}
	return "", false
}
