package connection_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/instancectl/internal/connection"
	"github.com/temirov/instancectl/internal/credentials"
)

const (
	testEnvironmentTokenConstant = "environment-token"
	testFileTokenConstant        = "file-token"
	testParameterTokenConstant   = "parameter-token"
	testOriginVariableConstant   = "PANEL_ORIGIN"
	testBranchesResponseConstant = `{"branches":["main"]}`
	testInstanceNameConstant     = "svc1"
)

type authorizationRecorder struct {
	mutex                sync.Mutex
	authorizationHeaders []string
}

func (recorder *authorizationRecorder) handler(responseWriter http.ResponseWriter, request *http.Request) {
	recorder.mutex.Lock()
	recorder.authorizationHeaders = append(recorder.authorizationHeaders, request.Header.Get("Authorization"))
	recorder.mutex.Unlock()
	responseWriter.Header().Set("Content-Type", "application/json")
	_, _ = responseWriter.Write([]byte(testBranchesResponseConstant))
}

func (recorder *authorizationRecorder) headers() []string {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	return append([]string{}, recorder.authorizationHeaders...)
}

type stubParameterGetter struct{}

func (getter stubParameterGetter) GetParameterWithContext(getContext aws.Context, input *ssm.GetParameterInput, options ...request.Option) (*ssm.GetParameterOutput, error) {
	return &ssm.GetParameterOutput{Parameter: &ssm.Parameter{Value: aws.String(testParameterTokenConstant)}}, nil
}

func TestClientFactoryCreate(testInstance *testing.T) {
	recorder := &authorizationRecorder{}
	server := httptest.NewServer(http.HandlerFunc(recorder.handler))
	testInstance.Cleanup(server.Close)

	tokenDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(tokenDirectory, credentials.DefaultTokenKey), []byte(testFileTokenConstant), 0o600))

	environment := map[string]string{
		"INSTANCECTL_TOKEN":        testEnvironmentTokenConstant,
		testOriginVariableConstant: server.URL,
	}
	lookup := func(key string) (string, bool) {
		value, exists := environment[key]
		return value, exists
	}

	testCases := []struct {
		name                  string
		configuration         connection.Configuration
		expectedAuthorization string
	}{
		{
			name:                  "default_environment_source",
			configuration:         connection.Configuration{BaseURL: server.URL},
			expectedAuthorization: "Bearer " + testEnvironmentTokenConstant,
		},
		{
			name:                  "file_source_with_origin",
			configuration:         connection.Configuration{BaseURL: "env:" + testOriginVariableConstant, TokenSource: "file:" + tokenDirectory},
			expectedAuthorization: "Bearer " + testFileTokenConstant,
		},
		{
			name:                  "parameter_store_source",
			configuration:         connection.Configuration{BaseURL: server.URL, TokenSource: "ssm:/instancectl/test"},
			expectedAuthorization: "Bearer " + testParameterTokenConstant,
		},
		{
			name:          "missing_token_still_sends_request",
			configuration: connection.Configuration{BaseURL: server.URL, TokenSource: "env:UNSET_TOKEN"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			factory := connection.ClientFactory{
				EnvironmentLookup: lookup,
				ParameterGetterFactory: func() (credentials.ParameterGetter, error) {
					return stubParameterGetter{}, nil
				},
			}

			client, creationError := factory.Create(testCase.configuration, zap.NewNop())
			require.NoError(testInstance, creationError)

			before := len(recorder.headers())
			result, branchesError := client.GetBranches(context.Background(), testInstanceNameConstant)
			require.NoError(testInstance, branchesError)
			require.JSONEq(testInstance, testBranchesResponseConstant, string(result.Data.Payload))

			headers := recorder.headers()
			require.Len(testInstance, headers, before+1)
			require.Equal(testInstance, testCase.expectedAuthorization, headers[before])
		})
	}
}

func TestClientFactoryCreateFailures(testInstance *testing.T) {
	parameterFailure := errors.New("no aws credentials")

	testCases := []struct {
		name          string
		configuration connection.Configuration
		factory       connection.ClientFactory
		expectedError error
	}{
		{
			name:          "invalid_base_url",
			configuration: connection.Configuration{BaseURL: "ftp://panel"},
		},
		{
			name:          "invalid_token_source",
			configuration: connection.Configuration{TokenSource: "vault:secret"},
		},
		{
			name:          "parameter_getter_failure",
			configuration: connection.Configuration{TokenSource: "ssm:/instancectl"},
			factory: connection.ClientFactory{ParameterGetterFactory: func() (credentials.ParameterGetter, error) {
				return nil, parameterFailure
			}},
			expectedError: parameterFailure,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, creationError := testCase.factory.Create(testCase.configuration, nil)
			require.Error(testInstance, creationError)
			require.Nil(testInstance, client)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, creationError, testCase.expectedError)
			}
		})
	}
}

func TestConfigurationSanitize(testInstance *testing.T) {
	sanitized := connection.Configuration{BaseURL: "  ", TokenKey: " api ", Timeout: -time.Second}.Sanitize()
	defaults := connection.DefaultConfiguration()

	require.Equal(testInstance, defaults.BaseURL, sanitized.BaseURL)
	require.Equal(testInstance, defaults.TokenSource, sanitized.TokenSource)
	require.Equal(testInstance, "api", sanitized.TokenKey)
	require.Equal(testInstance, 30*time.Second, sanitized.Timeout)
}
