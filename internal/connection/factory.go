package connection

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/instancectl/internal/credentials"
	"github.com/temirov/instancectl/internal/instanceapi"
)

const (
	baseURLParseErrorTemplateConstant     = "invalid base url: %w"
	tokenSourceParseErrorTemplateConstant = "invalid token source: %w"
	parameterStoreErrorTemplateConstant   = "unable to configure parameter store: %w"
	credentialStoreErrorTemplateConstant  = "unable to configure credential store: %w"
)

// ParameterGetterFactory creates the SSM client used by ssm token sources.
type ParameterGetterFactory func() (credentials.ParameterGetter, error)

// ClientFactory builds instance manager clients. Zero-valued fields fall back
// to the operating system and a default http.Client.
type ClientFactory struct {
	EnvironmentLookup          func(key string) (string, bool)
	FileReader                 credentials.FileReader
	HomeDirectoryProvider      credentials.HomeDirectoryProvider
	ParameterGetterFactory     ParameterGetterFactory
	HTTPClient                 instanceapi.HTTPDoer
	RequestIdentifierGenerator instanceapi.RequestIdentifierGenerator
}

// Create validates configuration and returns a client bound to it.
func (factory ClientFactory) Create(configuration Configuration, logger *zap.Logger) (*instanceapi.Client, error) {
	sanitized := configuration.Sanitize()

	environmentLookup := factory.EnvironmentLookup
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}

	baseURLResolver, baseURLError := instanceapi.ParseBaseURL(sanitized.BaseURL, environmentLookup)
	if baseURLError != nil {
		return nil, fmt.Errorf(baseURLParseErrorTemplateConstant, baseURLError)
	}

	tokenStore, storeError := factory.createStore(sanitized)
	if storeError != nil {
		return nil, storeError
	}

	httpClient := factory.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: sanitized.Timeout}
	}

	return instanceapi.NewClient(instanceapi.ClientOptions{
		BaseURLResolver:            baseURLResolver,
		TokenReader:                tokenStore,
		HTTPClient:                 httpClient,
		Logger:                     logger,
		RequestIdentifierGenerator: factory.RequestIdentifierGenerator,
	})
}

func (factory ClientFactory) createStore(configuration Configuration) (credentials.Store, error) {
	source, sourceError := credentials.ParseSource(configuration.TokenSource)
	if sourceError != nil {
		return nil, fmt.Errorf(tokenSourceParseErrorTemplateConstant, sourceError)
	}

	dependencies := credentials.Dependencies{
		EnvironmentLookup:     factory.EnvironmentLookup,
		FileReader:            factory.FileReader,
		HomeDirectoryProvider: factory.HomeDirectoryProvider,
	}

	if source.Type == credentials.SourceTypeParameterStore {
		parameterGetterFactory := factory.ParameterGetterFactory
		if parameterGetterFactory == nil {
			parameterGetterFactory = credentials.NewParameterGetter
		}
		parameterGetter, getterError := parameterGetterFactory()
		if getterError != nil {
			return nil, fmt.Errorf(parameterStoreErrorTemplateConstant, getterError)
		}
		dependencies.ParameterGetter = parameterGetter
	}

	store, storeError := credentials.NewStore(source, configuration.TokenKey, dependencies)
	if storeError != nil {
		return nil, fmt.Errorf(credentialStoreErrorTemplateConstant, storeError)
	}
	return store, nil
}
