package workflow

// CommandConfiguration captures configuration values for workflow.
type CommandConfiguration struct {
	DryRun bool `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration provides default workflow command settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{DryRun: false}
}

// DefaultConfigurationValues returns viper defaults rooted at keyPrefix.
func DefaultConfigurationValues(keyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		keyPrefix + ".dry_run": defaults.DryRun,
	}
}
