package pull

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/instancectl/internal/instanceapi"
	"github.com/temirov/instancectl/internal/ui"
	"github.com/temirov/instancectl/internal/utils/flags"
)

const (
	commandUseConstant                    = "pull <instance>"
	commandShortDescriptionConstant       = "Pull the repository of a managed instance"
	commandLongDescriptionConstant        = "pull asks the instance manager to pull an instance's repository, optionally switching to a branch given by --branch or picked interactively with --select."
	commandExecutionErrorTemplateConstant = "pull failed: %w"
	branchLookupErrorTemplateConstant     = "unable to list branches for selection: %w"
	branchSelectionErrorTemplateConstant  = "branch selection failed: %w"
	clientResolutionErrorTemplateConstant = "unable to construct instance manager client: %w"
	instanceArgumentMessageConstant       = "pull requires exactly one instance name"
	conflictingBranchFlagsMessageConstant = "--branch and --select cannot be combined"
	clientProviderMissingMessageConstant  = "instance manager client provider not configured"
	branchFlagNameConstant                = "branch"
	branchFlagDescriptionConstant         = "Branch to pull; omit to keep the instance's current branch"
	selectFlagNameConstant                = "select"
	selectFlagDescriptionConstant         = "Choose the branch interactively from the instance's branch list"
	outputFlagNameConstant                = "output"
	outputFlagDescriptionConstant         = "Output format"
	instanceLogFieldConstant              = "instance"
	branchLogFieldConstant                = "branch"
	branchSelectedMessageConstant         = "branch selected"
	pullCompletedMessageConstant          = "pull completed"
)

var (
	errInstanceArgument       = errors.New(instanceArgumentMessageConstant)
	errConflictingBranchFlags = errors.New(conflictingBranchFlagsMessageConstant)
	// ErrClientProviderNotConfigured indicates the command was built without a way to reach the instance manager.
	ErrClientProviderNotConfigured = errors.New(clientProviderMissingMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current pull configuration.
type ConfigurationProvider func() CommandConfiguration

// ClientProvider creates the instance manager client for a run.
type ClientProvider func(logger *zap.Logger) (instanceapi.RepositoryClient, error)

// BranchSelector lets the user choose one of branchNames.
type BranchSelector func(selectionContext context.Context, instanceName string, branchNames []string, input io.Reader, output io.Writer) (string, error)

// CommandBuilder assembles the pull command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	ClientProvider        ClientProvider
	BranchSelector        BranchSelector
}

// Build constructs the pull command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(branchFlagNameConstant, "", branchFlagDescriptionConstant)
	command.Flags().Bool(selectFlagNameConstant, false, selectFlagDescriptionConstant)

	var outputFormat string
	flags.AddChoiceFlag(command.Flags(), &outputFormat, outputFlagNameConstant, string(ui.OutputFormatJSON), ui.PayloadOutputFormats, outputFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errInstanceArgument
	}
	instanceName := strings.TrimSpace(arguments[0])
	configuration := builder.resolveConfiguration()

	branchName := configuration.Branch
	if command.Flags().Changed(branchFlagNameConstant) {
		branchFlagValue, branchFlagError := command.Flags().GetString(branchFlagNameConstant)
		if branchFlagError != nil {
			return branchFlagError
		}
		branchName = strings.TrimSpace(branchFlagValue)
	}

	selectBranch, selectFlagError := command.Flags().GetBool(selectFlagNameConstant)
	if selectFlagError != nil {
		return selectFlagError
	}
	if selectBranch && command.Flags().Changed(branchFlagNameConstant) {
		return errConflictingBranchFlags
	}

	outputValue := configuration.Output
	if command.Flags().Changed(outputFlagNameConstant) {
		outputValue = command.Flags().Lookup(outputFlagNameConstant).Value.String()
	}
	outputFormat, formatError := ui.ParseOutputFormat(outputValue)
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

	if selectBranch {
		selectedBranch, selectionError := builder.selectBranch(command, client, instanceName)
		if selectionError != nil {
			return selectionError
		}
		branchName = selectedBranch
		logger.Debug(branchSelectedMessageConstant, zap.String(instanceLogFieldConstant, instanceName), zap.String(branchLogFieldConstant, branchName))
	}

	result, pullError := client.Pull(command.Context(), buildPullInput(instanceName, branchName))
	if pullError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, pullError)
	}
	logger.Debug(pullCompletedMessageConstant, zap.String(instanceLogFieldConstant, instanceName), zap.String(branchLogFieldConstant, branchName))

	return ui.NewRenderer(command.OutOrStdout()).RenderPayload(result, outputFormat)
}

func (builder *CommandBuilder) selectBranch(command *cobra.Command, client instanceapi.RepositoryClient, instanceName string) (string, error) {
	branchesResult, branchesError := client.GetBranches(command.Context(), instanceName)
	if branchesError != nil {
		return "", fmt.Errorf(branchLookupErrorTemplateConstant, branchesError)
	}

	branchNames, namesError := branchesResult.Data.Names()
	if namesError != nil {
		return "", fmt.Errorf(branchLookupErrorTemplateConstant, namesError)
	}

	selector := builder.BranchSelector
	if selector == nil {
		selector = ui.SelectBranch
	}

	selectedBranch, selectionError := selector(command.Context(), instanceName, branchNames, command.InOrStdin(), command.ErrOrStderr())
	if selectionError != nil {
		return "", fmt.Errorf(branchSelectionErrorTemplateConstant, selectionError)
	}
	return selectedBranch, nil
}

// buildPullInput keeps the bare instance form when no branch is requested.
func buildPullInput(instanceName string, branchName string) instanceapi.PullInput {
	if len(branchName) == 0 {
		return instanceapi.InstanceName(instanceName)
	}
	return instanceapi.PullRequest{InstanceName: instanceName, Branch: branchName}
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
