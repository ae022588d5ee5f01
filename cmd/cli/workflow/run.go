package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/instancectl/internal/ui"
	"github.com/temirov/instancectl/internal/workflow"
)

const (
	commandUseConstant                       = "workflow [workflow]"
	commandShortDescriptionConstant          = "Run a workflow configuration file"
	commandLongDescriptionConstant           = "workflow executes the branch listing and pull steps defined in a YAML or JSON configuration file against the instance manager."
	dryRunFlagNameConstant                   = "dry-run"
	dryRunFlagDescriptionConstant            = "List workflow steps without contacting the instance manager"
	configurationPathRequiredMessageConstant = "workflow configuration path required; provide a positional argument"
	clientProviderMissingMessageConstant     = "instance manager client provider not configured"
	loadConfigurationErrorTemplateConstant   = "unable to load workflow configuration: %w"
	buildOperationsErrorTemplateConstant     = "unable to build workflow operations: %w"
	clientResolutionErrorTemplateConstant    = "unable to construct instance manager client: %w"
	plannedStepOutputTemplateConstant        = "%s\n"
)

var (
	errConfigurationPathRequired = errors.New(configurationPathRequiredMessageConstant)
	// ErrClientProviderNotConfigured indicates the command was built without a way to reach the instance manager.
	ErrClientProviderNotConfigured = errors.New(clientProviderMissingMessageConstant)
)

// CommandBuilder assembles the workflow command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ClientProvider        ClientProvider
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the workflow command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configurationPath := ""
	if len(arguments) > 0 {
		configurationPath = strings.TrimSpace(arguments[0])
	}

	if len(configurationPath) == 0 {
		if helpError := displayCommandHelp(command); helpError != nil {
			return helpError
		}
		return errConfigurationPathRequired
	}

	workflowConfiguration, configurationError := workflow.LoadConfiguration(configurationPath)
	if configurationError != nil {
		return fmt.Errorf(loadConfigurationErrorTemplateConstant, configurationError)
	}

	operations, operationsError := workflow.BuildOperations(workflowConfiguration)
	if operationsError != nil {
		return fmt.Errorf(buildOperationsErrorTemplateConstant, operationsError)
	}

	if builder.resolveDryRun(command) {
		return printPlannedSteps(command, operations)
	}

	logger := resolveLogger(builder.LoggerProvider)
	if builder.ClientProvider == nil {
		return ErrClientProviderNotConfigured
	}
	client, clientError := builder.ClientProvider(logger)
	if clientError != nil {
		return fmt.Errorf(clientResolutionErrorTemplateConstant, clientError)
	}

	executor := workflow.NewExecutor(operations, workflow.Dependencies{
		Client: client,
		Logger: logger,
		Output: command.OutOrStdout(),
	})

	return executor.Execute(command.Context())
}

func (builder *CommandBuilder) resolveDryRun(command *cobra.Command) bool {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	if command.Flags().Changed(dryRunFlagNameConstant) {
		dryRunValue, flagError := command.Flags().GetBool(dryRunFlagNameConstant)
		if flagError == nil {
			return dryRunValue
		}
	}

	return configuration.DryRun
}

func printPlannedSteps(command *cobra.Command, operations []workflow.Operation) error {
	formatter := ui.StepEventFormatter{}
	output := command.OutOrStdout()
	for operationIndex, operation := range operations {
		event := operation.Event()
		event.Index = operationIndex + 1
		if _, writeError := fmt.Fprintf(output, plannedStepOutputTemplateConstant, formatter.BuildPlannedMessage(event)); writeError != nil {
			return writeError
		}
	}
	return nil
}
