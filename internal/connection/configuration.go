package connection

import (
	"strings"
	"time"

	"github.com/temirov/instancectl/internal/credentials"
)

const (
	defaultBaseURLConstant     = "http://localhost:5000"
	defaultTokenSourceConstant = "env:INSTANCECTL_TOKEN"
	defaultTimeoutConstant     = 30 * time.Second
)

// Configuration describes how to reach the instance manager.
type Configuration struct {
	BaseURL     string        `mapstructure:"base_url"`
	TokenSource string        `mapstructure:"token_source"`
	TokenKey    string        `mapstructure:"token_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// DefaultConfiguration targets a local instance manager and reads the token from INSTANCECTL_TOKEN.
func DefaultConfiguration() Configuration {
	return Configuration{
		BaseURL:     defaultBaseURLConstant,
		TokenSource: defaultTokenSourceConstant,
		TokenKey:    credentials.DefaultTokenKey,
		Timeout:     defaultTimeoutConstant,
	}
}

// Sanitize trims values and restores defaults for blank or non-positive entries.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := Configuration{
		BaseURL:     strings.TrimSpace(configuration.BaseURL),
		TokenSource: strings.TrimSpace(configuration.TokenSource),
		TokenKey:    strings.TrimSpace(configuration.TokenKey),
		Timeout:     configuration.Timeout,
	}
	if len(sanitized.BaseURL) == 0 {
		sanitized.BaseURL = defaults.BaseURL
	}
	if len(sanitized.TokenSource) == 0 {
		sanitized.TokenSource = defaults.TokenSource
	}
	if len(sanitized.TokenKey) == 0 {
		sanitized.TokenKey = defaults.TokenKey
	}
	if sanitized.Timeout <= 0 {
		sanitized.Timeout = defaults.Timeout
	}
	return sanitized
}
