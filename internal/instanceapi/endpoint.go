package instanceapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/valyala/fasttemplate"
)

const (
	environmentReferencePrefixConstant      = "env:"
	trailingSlashConstant                   = "/"
	httpSchemeConstant                      = "http"
	httpsSchemeConstant                     = "https"
	templateStartTagConstant                = "{"
	templateEndTagConstant                  = "}"
	instanceNameTagConstant                 = "instance_name"
	branchesEndpointTemplateConstant        = "/api/github/branches/{instance_name}"
	pullEndpointPathConstant                = "/api/github/pull"
	baseURLMissingMessageConstant           = "base url must be provided"
	environmentVariableMissingMessage       = "environment variable name must be provided"
	environmentOriginUnsetTemplateConstant  = "environment variable %s does not define a base url"
	invalidBaseURLTemplateConstant          = "invalid base url %q: %s"
	unsupportedBaseURLSchemeMessageConstant = "scheme must be http or https"
	baseURLHostMissingMessageConstant       = "host must be provided"
	baseURLQueryMessageConstant             = "query and fragment are not allowed"
)

var branchesEndpointTemplate = fasttemplate.New(branchesEndpointTemplateConstant, templateStartTagConstant, templateEndTagConstant)

// BaseURLResolver yields the service base address. It is consulted on every call.
type BaseURLResolver interface {
	ResolveBaseURL(resolutionContext context.Context) (string, error)
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// InvalidBaseURLError reports a base address that cannot be used.
type InvalidBaseURLError struct {
	Value  string
	Reason string
}

// Error describes the invalid base address.
func (invalidError InvalidBaseURLError) Error() string {
	return fmt.Sprintf(invalidBaseURLTemplateConstant, invalidError.Value, invalidError.Reason)
}

// StaticBaseURL is an explicitly configured service address.
type StaticBaseURL string

// ResolveBaseURL validates and returns the configured address.
func (staticBaseURL StaticBaseURL) ResolveBaseURL(resolutionContext context.Context) (string, error) {
	return normalizeBaseURL(string(staticBaseURL))
}

// EnvironmentOriginBaseURL reads the address from the origin published by the
// host environment, for example the web application serving the operator.
type EnvironmentOriginBaseURL struct {
	VariableName string
	Lookup       EnvironmentLookup
}

// ResolveBaseURL reads and validates the origin.
func (originBaseURL EnvironmentOriginBaseURL) ResolveBaseURL(resolutionContext context.Context) (string, error) {
	lookup := originBaseURL.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	originValue, found := lookup(originBaseURL.VariableName)
	if !found || len(strings.TrimSpace(originValue)) == 0 {
		return "", fmt.Errorf(environmentOriginUnsetTemplateConstant, originBaseURL.VariableName)
	}
	return normalizeBaseURL(originValue)
}

// ParseBaseURL interprets a configured base address. Values of the form
// env:NAME resolve from the environment on each call; anything else is a
// literal address validated immediately.
func ParseBaseURL(value string, lookup EnvironmentLookup) (BaseURLResolver, error) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return nil, errors.New(baseURLMissingMessageConstant)
	}

	if strings.HasPrefix(strings.ToLower(trimmedValue), environmentReferencePrefixConstant) {
		variableName := strings.TrimSpace(trimmedValue[len(environmentReferencePrefixConstant):])
		if len(variableName) == 0 {
			return nil, errors.New(environmentVariableMissingMessage)
		}
		return EnvironmentOriginBaseURL{VariableName: variableName, Lookup: lookup}, nil
	}

	if _, validationError := normalizeBaseURL(trimmedValue); validationError != nil {
		return nil, validationError
	}
	return StaticBaseURL(trimmedValue), nil
}

func normalizeBaseURL(value string) (string, error) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return "", errors.New(baseURLMissingMessageConstant)
	}

	parsedURL, parseError := url.Parse(trimmedValue)
	if parseError != nil {
		return "", InvalidBaseURLError{Value: trimmedValue, Reason: parseError.Error()}
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if scheme != httpSchemeConstant && scheme != httpsSchemeConstant {
		return "", InvalidBaseURLError{Value: trimmedValue, Reason: unsupportedBaseURLSchemeMessageConstant}
	}

	if len(parsedURL.Host) == 0 {
		return "", InvalidBaseURLError{Value: trimmedValue, Reason: baseURLHostMissingMessageConstant}
	}

	if len(parsedURL.RawQuery) > 0 || parsedURL.ForceQuery || len(parsedURL.Fragment) > 0 {
		return "", InvalidBaseURLError{Value: trimmedValue, Reason: baseURLQueryMessageConstant}
	}

	return strings.TrimRight(trimmedValue, trailingSlashConstant), nil
}

// endpointURL appends an escaped endpoint path to a validated base address.
func endpointURL(baseURL string, endpointPath string) (string, error) {
	normalizedBaseURL, normalizationError := normalizeBaseURL(baseURL)
	if normalizationError != nil {
		return "", normalizationError
	}
	parsedURL, parseError := url.Parse(normalizedBaseURL)
	if parseError != nil {
		return "", InvalidBaseURLError{Value: normalizedBaseURL, Reason: parseError.Error()}
	}
	return parsedURL.JoinPath(endpointPath).String(), nil
}

func branchesEndpointPath(instanceName string) string {
	return branchesEndpointTemplate.ExecuteString(map[string]any{
		instanceNameTagConstant: url.PathEscape(instanceName),
	})
}
