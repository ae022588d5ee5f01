package cli

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	workflowcmd "github.com/temirov/instancectl/cmd/cli/workflow"
	"github.com/temirov/instancectl/internal/branches"
	"github.com/temirov/instancectl/internal/connection"
	"github.com/temirov/instancectl/internal/instanceapi"
	"github.com/temirov/instancectl/internal/pull"
	"github.com/temirov/instancectl/internal/utils"
)

const (
	applicationNameConstant                 = "instancectl"
	applicationShortDescriptionConstant     = "Command-line client for the instance manager"
	applicationLongDescriptionConstant      = "instancectl lists branches of managed instances and asks the instance manager to pull their repositories."
	applicationDirectoryNameConstant        = ".instancectl"
	versionTemplateConstant                 = "{{.Name}} version: {{.Version}}\n"
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	baseURLFlagNameConstant                 = "base-url"
	baseURLFlagUsageConstant                = "Instance manager address, either a URL or env:NAME to read it from an environment variable."
	tokenSourceFlagNameConstant             = "token-source"
	tokenSourceFlagUsageConstant            = "Where to read the API token: env:NAME, file:PATH, or ssm:PARAMETER."
	tokenKeyFlagNameConstant                = "token-key"
	tokenKeyFlagUsageConstant               = "Token key: the file name inside a file: source, the parameter name under an ssm: prefix, and the upper-cased variable name for an env: source that names none."
	timeoutFlagNameConstant                 = "timeout"
	timeoutFlagUsageConstant                = "Per-request timeout for instance manager calls."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	toolsConfigurationKeyConstant           = "tools"
	workflowConfigurationKeyConstant        = toolsConfigurationKeyConstant + ".workflow"
	environmentPrefixConstant               = "INSTANCECTL"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationBaseURLFieldConstant       = "base_url"
	configurationTokenSourceFieldConstant   = "token_source"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	rootCommandInfoMessageConstant          = "instancectl CLI executed"
	rootCommandDebugMessageConstant         = "instancectl CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
)

// Version is reported by --version and is overridden at build time through -ldflags.
var Version = "dev"

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common  ApplicationCommonConfiguration `mapstructure:"common"`
	Service connection.Configuration       `mapstructure:"service"`
	Tools   ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds per-command configuration.
type ApplicationToolsConfiguration struct {
	Branches branches.CommandConfiguration    `mapstructure:"branches"`
	Pull     pull.CommandConfiguration        `mapstructure:"pull"`
	Workflow workflowcmd.CommandConfiguration `mapstructure:"workflow"`
}

// Application wires the Cobra root command, configuration loader, structured logger, and client factory.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	clientFactory         connection.ClientFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	baseURLFlagValue      string
	tokenSourceFlagValue  string
	tokenKeyFlagValue     string
	timeoutFlagValue      time.Duration
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		utils.DefaultSearchPaths(applicationDirectoryNameConstant),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetVersionTemplate(versionTemplateConstant)

	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	persistentFlags.StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	persistentFlags.StringVar(&application.baseURLFlagValue, baseURLFlagNameConstant, "", baseURLFlagUsageConstant)
	persistentFlags.StringVar(&application.tokenSourceFlagValue, tokenSourceFlagNameConstant, "", tokenSourceFlagUsageConstant)
	persistentFlags.StringVar(&application.tokenKeyFlagValue, tokenKeyFlagNameConstant, "", tokenKeyFlagUsageConstant)
	persistentFlags.DurationVar(&application.timeoutFlagValue, timeoutFlagNameConstant, 0, timeoutFlagUsageConstant)

	branchesBuilder := branches.CommandBuilder{
		LoggerProvider: application.currentLogger,
		ConfigurationProvider: func() branches.CommandConfiguration {
			return application.configuration.Tools.Branches
		},
		ClientProvider: application.createClient,
	}
	branchesCommand, branchesBuildError := branchesBuilder.Build()
	if branchesBuildError == nil {
		cobraCommand.AddCommand(branchesCommand)
	}

	pullBuilder := pull.CommandBuilder{
		LoggerProvider: application.currentLogger,
		ConfigurationProvider: func() pull.CommandConfiguration {
			return application.configuration.Tools.Pull
		},
		ClientProvider: application.createClient,
	}
	pullCommand, pullBuildError := pullBuilder.Build()
	if pullBuildError == nil {
		cobraCommand.AddCommand(pullCommand)
	}

	workflowBuilder := workflowcmd.CommandBuilder{
		LoggerProvider: application.currentLogger,
		ClientProvider: application.createClient,
		ConfigurationProvider: func() workflowcmd.CommandConfiguration {
			return application.configuration.Tools.Workflow
		},
	}
	workflowCommand, workflowBuildError := workflowBuilder.Build()
	if workflowBuildError == nil {
		cobraCommand.AddCommand(workflowCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) currentLogger() *zap.Logger {
	return application.logger
}

func (application *Application) createClient(logger *zap.Logger) (instanceapi.RepositoryClient, error) {
	client, creationError := application.clientFactory.Create(application.configuration.Service, logger)
	if creationError != nil {
		return nil, creationError
	}
	return client, nil
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}
	for configurationKey, configurationValue := range workflowcmd.DefaultConfigurationValues(workflowConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration
	application.applyFlagOverrides(command)
	application.configuration.Service = application.configuration.Service.Sanitize()

	logLevel, logLevelError := utils.ParseLogLevel(application.configuration.Common.LogLevel)
	if logLevelError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, logLevelError)
	}
	logFormat, logFormatError := utils.ParseLogFormat(application.configuration.Common.LogFormat)
	if logFormatError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, logFormatError)
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(logLevel, logFormat)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, string(logLevel)),
		zap.String(configurationLogFormatFieldConstant, string(logFormat)),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(configurationBaseURLFieldConstant, application.configuration.Service.BaseURL),
		zap.String(configurationTokenSourceFieldConstant, application.configuration.Service.TokenSource),
	)

	return nil
}

func (application *Application) applyFlagOverrides(command *cobra.Command) {
	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}
	if application.persistentFlagChanged(command, baseURLFlagNameConstant) {
		application.configuration.Service.BaseURL = application.baseURLFlagValue
	}
	if application.persistentFlagChanged(command, tokenSourceFlagNameConstant) {
		application.configuration.Service.TokenSource = application.tokenSourceFlagValue
	}
	if application.persistentFlagChanged(command, tokenKeyFlagNameConstant) {
		application.configuration.Service.TokenKey = application.tokenKeyFlagValue
	}
	if application.persistentFlagChanged(command, timeoutFlagNameConstant) {
		application.configuration.Service.Timeout = application.timeoutFlagValue
	}
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	return command.Help()
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
