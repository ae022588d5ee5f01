package pull

import (
	"strings"

	"github.com/temirov/instancectl/internal/ui"
)

// CommandConfiguration captures configuration values for the pull command.
type CommandConfiguration struct {
	Branch string `mapstructure:"branch"`
	Output string `mapstructure:"output"`
}

// DefaultCommandConfiguration pulls the instance's current branch and prints JSON.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{Output: string(ui.OutputFormatJSON)}
}

// Sanitize trims configured values and restores the default output format when blank.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := CommandConfiguration{
		Branch: strings.TrimSpace(configuration.Branch),
		Output: strings.ToLower(strings.TrimSpace(configuration.Output)),
	}
	if len(sanitized.Output) == 0 {
		sanitized.Output = DefaultCommandConfiguration().Output
	}
	return sanitized
}
