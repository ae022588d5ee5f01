package branches_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/instancectl/internal/branches"
	"github.com/temirov/instancectl/internal/instanceapi"
)

const (
	testInstanceNameConstant     = "svc1"
	testBranchesPayloadConstant  = `["main","dev"]`
	testBranchesEnvelopeConstant = `{"data":["main","dev"]}`
)

type fakeRepositoryClient struct {
	branchesPayload   string
	branchesError     error
	requestedInstance []string
}

func (client *fakeRepositoryClient) GetBranches(executionContext context.Context, instanceName string) (instanceapi.Result[instanceapi.BranchList], error) {
	client.requestedInstance = append(client.requestedInstance, instanceName)
	if client.branchesError != nil {
		return instanceapi.Result[instanceapi.BranchList]{}, client.branchesError
	}
	return instanceapi.Result[instanceapi.BranchList]{Data: instanceapi.BranchList{Payload: instanceapi.Payload(client.branchesPayload)}}, nil
}

func (client *fakeRepositoryClient) Pull(executionContext context.Context, input instanceapi.PullInput) (instanceapi.Result[instanceapi.Payload], error) {
	return instanceapi.Result[instanceapi.Payload]{}, errors.New("unexpected pull")
}

func executeBranchesCommand(testInstance *testing.T, builder *branches.CommandBuilder, arguments ...string) (string, error) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(&bytes.Buffer{})
	command.SilenceUsage = true
	command.SilenceErrors = true
	command.SetArgs(arguments)
	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func TestBranchesCommandOutputFormats(testInstance *testing.T) {
	testCases := []struct {
		name             string
		arguments        []string
		configuredOutput string
		verify           func(testInstance *testing.T, output string)
	}{
		{
			name:      "table_by_default",
			arguments: []string{testInstanceNameConstant},
			verify: func(testInstance *testing.T, output string) {
				require.Contains(testInstance, output, "BRANCH")
				require.Contains(testInstance, output, "main")
				require.Contains(testInstance, output, "dev")
			},
		},
		{
			name:             "configuration_selects_json",
			arguments:        []string{testInstanceNameConstant},
			configuredOutput: "json",
			verify: func(testInstance *testing.T, output string) {
				require.JSONEq(testInstance, testBranchesEnvelopeConstant, output)
			},
		},
		{
			name:             "flag_overrides_configuration",
			arguments:        []string{testInstanceNameConstant, "--output", "yaml"},
			configuredOutput: "json",
			verify: func(testInstance *testing.T, output string) {
				require.Contains(testInstance, output, "data:")
				require.Contains(testInstance, output, "- main")
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client := &fakeRepositoryClient{branchesPayload: testBranchesPayloadConstant}
			builder := &branches.CommandBuilder{
				ConfigurationProvider: func() branches.CommandConfiguration {
					return branches.CommandConfiguration{Output: testCase.configuredOutput}
				},
				ClientProvider: func(*zap.Logger) (instanceapi.RepositoryClient, error) {
					return client, nil
				},
			}

			output, executionError := executeBranchesCommand(testInstance, builder, testCase.arguments...)
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, []string{testInstanceNameConstant}, client.requestedInstance)
			testCase.verify(testInstance, output)
		})
	}
}

func TestBranchesCommandFailures(testInstance *testing.T) {
	remoteFailure := errors.New("GetBranches failed with status 404: instance not found")
	clientFailure := errors.New("invalid base url")

	testCases := []struct {
		name          string
		arguments     []string
		builder       *branches.CommandBuilder
		expectedError error
	}{
		{
			name:      "missing_instance",
			arguments: []string{},
			builder:   &branches.CommandBuilder{},
		},
		{
			name:      "unsupported_output",
			arguments: []string{testInstanceNameConstant, "--output", "csv"},
			builder:   &branches.CommandBuilder{},
		},
		{
			name:          "client_provider_missing",
			arguments:     []string{testInstanceNameConstant},
			builder:       &branches.CommandBuilder{},
			expectedError: branches.ErrClientProviderNotConfigured,
		},
		{
			name:      "client_construction_failure",
			arguments: []string{testInstanceNameConstant},
			builder: &branches.CommandBuilder{ClientProvider: func(*zap.Logger) (instanceapi.RepositoryClient, error) {
				return nil, clientFailure
			}},
			expectedError: clientFailure,
		},
		{
			name:      "remote_failure_is_returned",
			arguments: []string{testInstanceNameConstant},
			builder: &branches.CommandBuilder{ClientProvider: func(*zap.Logger) (instanceapi.RepositoryClient, error) {
				return &fakeRepositoryClient{branchesError: remoteFailure}, nil
			}},
			expectedError: remoteFailure,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output, executionError := executeBranchesCommand(testInstance, testCase.builder, testCase.arguments...)
			require.Error(testInstance, executionError)
			require.Empty(testInstance, output)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, executionError, testCase.expectedError)
			}
		})
	}
}
