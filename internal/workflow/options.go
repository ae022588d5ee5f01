package workflow

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

const (
	optionToolKeyConstant               = "tool"
	optionsDecoderErrorTemplateConstant = "unable to prepare step options: %w"
	optionsDecodeErrorTemplateConstant  = "invalid step options: %w"
)

// StepOptions are the recognized keys of a step's with block.
type StepOptions struct {
	Tool     string `mapstructure:"tool"`
	Instance string `mapstructure:"instance"`
	Branch   string `mapstructure:"branch"`
	Output   string `mapstructure:"output"`
}

// mergeOptions overlays step options on top of tool defaults.
func mergeOptions(toolOptions map[string]any, stepOptions map[string]any) map[string]any {
	merged := make(map[string]any, len(toolOptions)+len(stepOptions))
	for key, value := range toolOptions {
		merged[strings.ToLower(strings.TrimSpace(key))] = value
	}
	for key, value := range stepOptions {
		merged[strings.ToLower(strings.TrimSpace(key))] = value
	}
	return merged
}

// decodeStepOptions rejects unknown keys and converts scalar values to strings.
func decodeStepOptions(rawOptions map[string]any) (StepOptions, error) {
	var options StepOptions
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &options,
	})
	if decoderError != nil {
		return StepOptions{}, fmt.Errorf(optionsDecoderErrorTemplateConstant, decoderError)
	}
	if decodeError := decoder.Decode(rawOptions); decodeError != nil {
		return StepOptions{}, fmt.Errorf(optionsDecodeErrorTemplateConstant, decodeError)
	}

	options.Tool = strings.TrimSpace(options.Tool)
	options.Instance = strings.TrimSpace(options.Instance)
	options.Branch = strings.TrimSpace(options.Branch)
	options.Output = strings.ToLower(strings.TrimSpace(options.Output))
	return options, nil
}
