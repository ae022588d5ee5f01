package branches

import (
	"strings"

	"github.com/temirov/instancectl/internal/ui"
)

// CommandConfiguration captures configuration values for the branches command.
type CommandConfiguration struct {
	Output string `mapstructure:"output"`
}

// DefaultCommandConfiguration renders branches as a table.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{Output: string(ui.OutputFormatTable)}
}

// Sanitize normalizes configured values, restoring the default output format when blank.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Output = strings.ToLower(strings.TrimSpace(configuration.Output))
	if len(sanitized.Output) == 0 {
		sanitized.Output = DefaultCommandConfiguration().Output
	}
	return sanitized
}
