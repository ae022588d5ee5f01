package branches

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/instancectl/internal/instanceapi"
	"github.com/temirov/instancectl/internal/ui"
	"github.com/temirov/instancectl/internal/utils/flags"
)

const (
	commandUseConstant                    = "branches <instance>"
	commandShortDescriptionConstant       = "List the branches of a managed instance"
	commandLongDescriptionConstant        = "branches queries the instance manager for the branches available to an instance's repository."
	commandExecutionErrorTemplateConstant = "branch listing failed: %w"
	clientResolutionErrorTemplateConstant = "unable to construct instance manager client: %w"
	instanceArgumentMessageConstant       = "branches requires exactly one instance name"
	outputFlagNameConstant                = "output"
	outputFlagDescriptionConstant         = "Output format"
	instanceLogFieldConstant              = "instance"
	branchesListedMessageConstant         = "branches listed"
	clientProviderMissingMessageConstant  = "instance manager client provider not configured"
)

var (
	errInstanceArgument = errors.New(instanceArgumentMessageConstant)
	// ErrClientProviderNotConfigured indicates the command was built without a way to reach the instance manager.
	ErrClientProviderNotConfigured = errors.New(clientProviderMissingMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current branches configuration.
type ConfigurationProvider func() CommandConfiguration

// ClientProvider creates the instance manager client for a run.
type ClientProvider func(logger *zap.Logger) (instanceapi.RepositoryClient, error)

// CommandBuilder assembles the branches command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	ClientProvider        ClientProvider
}

// Build constructs the branches command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	var outputFormat string
	flags.AddChoiceFlag(command.Flags(), &outputFormat, outputFlagNameConstant, string(ui.OutputFormatTable), ui.BranchOutputFormats, outputFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errInstanceArgument
	}
	instanceName := strings.TrimSpace(arguments[0])

	outputFormat, formatError := builder.resolveOutputFormat(command)
	if formatError != nil {
		return formatError
	}

	logger := builder.resolveLogger()
	if builder.ClientProvider == nil {
		return ErrClientProviderNotConfigured
	}
	client, clientError := builder.ClientProvider(logger)
	if clientError != nil {
		return fmt.Errorf(clientResolutionErrorTemplateConstant, clientError)
	}

	result, branchesError := client.GetBranches(command.Context(), instanceName)
	if branchesError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, branchesError)
	}
	logger.Debug(branchesListedMessageConstant, zap.String(instanceLogFieldConstant, instanceName))

	return ui.NewRenderer(command.OutOrStdout()).RenderBranches(instanceName, result, outputFormat)
}

func (builder *CommandBuilder) resolveOutputFormat(command *cobra.Command) (ui.OutputFormat, error) {
	outputValue := builder.resolveConfiguration().Output
	if command.Flags().Changed(outputFlagNameConstant) {
		outputValue = command.Flags().Lookup(outputFlagNameConstant).Value.String()
	}
	return ui.ParseOutputFormat(outputValue)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}
