package credentials

import (
	"errors"
	"fmt"
	"strings"
)

const (
	sourceSeparatorConstant                  = ":"
	environmentSourceTypeValueConstant       = "env"
	fileSourceTypeValueConstant              = "file"
	parameterStoreSourceTypeValueConstant    = "ssm"
	sourceMissingErrorMessageConstant        = "credential source must be provided"
	directoryMissingErrorMessageConstant     = "credential directory must be provided"
	parameterPathMissingErrorMessageConstant = "parameter store path must be provided"
	unsupportedSourceTypeTemplateConstant    = "unsupported credential source type %q"
)

// DefaultTokenKey is the name the bearer token is stored under.
const DefaultTokenKey = "token"

// SourceType enumerates the supported credential backends.
type SourceType string

// Credential source type enumerations.
const (
	SourceTypeEnvironment    SourceType = SourceType(environmentSourceTypeValueConstant)
	SourceTypeFile           SourceType = SourceType(fileSourceTypeValueConstant)
	SourceTypeParameterStore SourceType = SourceType(parameterStoreSourceTypeValueConstant)
)

// SourceConfiguration specifies where the credential lives.
type SourceConfiguration struct {
	Type      SourceType
	Reference string
}

// ParseSource interprets textual source declarations such as
// env:INSTANCECTL_TOKEN, file:~/.instancectl or ssm:/instancectl/prod.
// A value without a type prefix names an environment variable.
func ParseSource(sourceValue string) (SourceConfiguration, error) {
	trimmedValue := strings.TrimSpace(sourceValue)
	if len(trimmedValue) == 0 {
		return SourceConfiguration{}, errors.New(sourceMissingErrorMessageConstant)
	}

	components := strings.SplitN(trimmedValue, sourceSeparatorConstant, 2)
	if len(components) == 1 {
		return SourceConfiguration{Type: SourceTypeEnvironment, Reference: trimmedValue}, nil
	}

	sourceType := strings.ToLower(strings.TrimSpace(components[0]))
	reference := strings.TrimSpace(components[1])

	switch SourceType(sourceType) {
	case SourceTypeEnvironment:
		return SourceConfiguration{Type: SourceTypeEnvironment, Reference: reference}, nil
	case SourceTypeFile:
		if len(reference) == 0 {
			return SourceConfiguration{}, errors.New(directoryMissingErrorMessageConstant)
		}
		return SourceConfiguration{Type: SourceTypeFile, Reference: reference}, nil
	case SourceTypeParameterStore:
		if len(reference) == 0 {
			return SourceConfiguration{}, errors.New(parameterPathMissingErrorMessageConstant)
		}
		return SourceConfiguration{Type: SourceTypeParameterStore, Reference: reference}, nil
	default:
		return SourceConfiguration{}, fmt.Errorf(unsupportedSourceTypeTemplateConstant, sourceType)
	}
}

// String renders the configuration in the form accepted by ParseSource.
func (configuration SourceConfiguration) String() string {
	return string(configuration.Type) + sourceSeparatorConstant + configuration.Reference
}
