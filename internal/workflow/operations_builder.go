package workflow

import (
	"errors"
	"fmt"

	"github.com/temirov/instancectl/internal/ui"
)

const (
	instanceRequiredTemplateConstant     = "%s step requires an instance"
	branchNotSupportedTemplateConstant   = "%s step does not accept a branch"
	unsupportedOperationTemplateConstant = "unsupported workflow operation: %s"
	stepBuildErrorTemplateConstant       = "workflow step %d: %w"
	unsupportedOutputTemplateConstant    = "output format %s is not supported by %s steps"
	toolOperationMismatchMessageConstant = "workflow step operation conflicts with its tool"
)

var errToolOperationMismatch = errors.New(toolOperationMismatchMessageConstant)

// BuildOperations converts the declarative configuration into executable operations.
func BuildOperations(configuration Configuration) ([]Operation, error) {
	toolLookup := configuration.toolLookup()

	operations := make([]Operation, 0, len(configuration.Steps))
	for stepIndex := range configuration.Steps {
		operation, buildError := buildOperationFromStep(configuration.Steps[stepIndex], toolLookup)
		if buildError != nil {
			return nil, fmt.Errorf(stepBuildErrorTemplateConstant, stepIndex+1, buildError)
		}
		operations = append(operations, operation)
	}
	return operations, nil
}

func buildOperationFromStep(step StepConfiguration, toolLookup map[string]ToolConfiguration) (Operation, error) {
	operationType := step.Operation
	rawOptions := mergeOptions(nil, step.Options)

	if toolName, referencesTool := toolReference(step.Options); referencesTool {
		tool := toolLookup[toolName]
		if len(operationType) > 0 && operationType != tool.Operation {
			return nil, errToolOperationMismatch
		}
		operationType = tool.Operation
		rawOptions = mergeOptions(tool.Options, step.Options)
	}

	options, optionsError := decodeStepOptions(rawOptions)
	if optionsError != nil {
		return nil, optionsError
	}

	switch operationType {
	case OperationTypeListBranches:
		return buildListBranchesOperation(options)
	case OperationTypePull:
		return buildPullOperation(options)
	default:
		return nil, fmt.Errorf(unsupportedOperationTemplateConstant, operationType)
	}
}

func buildListBranchesOperation(options StepOptions) (Operation, error) {
	if len(options.Instance) == 0 {
		return nil, fmt.Errorf(instanceRequiredTemplateConstant, OperationTypeListBranches)
	}
	if len(options.Branch) > 0 {
		return nil, fmt.Errorf(branchNotSupportedTemplateConstant, OperationTypeListBranches)
	}
	outputFormat, formatError := resolveOutputFormat(options.Output, ui.OutputFormatTable)
	if formatError != nil {
		return nil, formatError
	}
	return &ListBranchesOperation{Instance: options.Instance, Output: outputFormat}, nil
}

func buildPullOperation(options StepOptions) (Operation, error) {
	if len(options.Instance) == 0 {
		return nil, fmt.Errorf(instanceRequiredTemplateConstant, OperationTypePull)
	}
	outputFormat, formatError := resolveOutputFormat(options.Output, ui.OutputFormatJSON)
	if formatError != nil {
		return nil, formatError
	}
	if outputFormat == ui.OutputFormatTable {
		return nil, fmt.Errorf(unsupportedOutputTemplateConstant, outputFormat, OperationTypePull)
	}
	return &PullOperation{Instance: options.Instance, Branch: options.Branch, Output: outputFormat}, nil
}

func resolveOutputFormat(value string, defaultFormat ui.OutputFormat) (ui.OutputFormat, error) {
	if len(value) == 0 {
		return defaultFormat, nil
	}
	return ui.ParseOutputFormat(value)
}
