package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	workflowcmd "github.com/temirov/instancectl/cmd/cli/workflow"
	"github.com/temirov/instancectl/internal/instanceapi"
)

const (
	workflowFileNameConstant       = "workflow.yaml"
	workflowCommandContentConstant = `steps:
  - operation: list-branches
    with:
      instance: svc1
      output: json
  - operation: pull
    with:
      instance: svc1
      branch: main
`
	invalidWorkflowContentConstant = `steps:
  - operation: pull
`
	plannedStepsExpectationConstant = "Planned step 1: list-branches svc1\nPlanned step 2: pull svc1 (branch main)\n"
	clientFailureMessageConstant    = "dial failure"
)

type recordingClient struct {
	calls []string
}

func (client *recordingClient) GetBranches(executionContext context.Context, instanceName string) (instanceapi.Result[instanceapi.BranchList], error) {
	client.calls = append(client.calls, "branches:"+instanceName)
	return instanceapi.Result[instanceapi.BranchList]{Data: instanceapi.BranchList{Payload: instanceapi.Payload(`["main","dev"]`)}}, nil
}

func (client *recordingClient) Pull(executionContext context.Context, input instanceapi.PullInput) (instanceapi.Result[instanceapi.Payload], error) {
	request := instanceapi.NormalizePullInput(input)
	client.calls = append(client.calls, "pull:"+request.InstanceName+"@"+request.Branch)
	return instanceapi.Result[instanceapi.Payload]{Data: instanceapi.Payload(`{"status":"pulled"}`)}, nil
}

func writeWorkflowFile(testInstance *testing.T, content string) string {
	testInstance.Helper()
	workflowPath := filepath.Join(testInstance.TempDir(), workflowFileNameConstant)
	require.NoError(testInstance, os.WriteFile(workflowPath, []byte(content), 0o600))
	return workflowPath
}

func executeWorkflowCommand(testInstance *testing.T, builder *workflowcmd.CommandBuilder, arguments ...string) (string, error) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(&bytes.Buffer{})
	command.SetArgs(arguments)
	command.SilenceUsage = true
	command.SilenceErrors = true
	command.SetContext(context.Background())

	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func TestWorkflowCommandRunsSteps(testInstance *testing.T) {
	client := &recordingClient{}
	builder := &workflowcmd.CommandBuilder{
		LoggerProvider: zap.NewNop,
		ClientProvider: func(logger *zap.Logger) (instanceapi.RepositoryClient, error) {
			return client, nil
		},
	}

	output, executionError := executeWorkflowCommand(testInstance, builder, writeWorkflowFile(testInstance, workflowCommandContentConstant))
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, []string{"branches:svc1", "pull:svc1@main"}, client.calls)
	require.Contains(testInstance, output, `"dev"`)
	require.Contains(testInstance, output, `"status": "pulled"`)
}

func TestWorkflowCommandDryRun(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		configuration workflowcmd.CommandConfiguration
	}{
		{name: "flag", arguments: []string{"--dry-run"}},
		{name: "configuration", configuration: workflowcmd.CommandConfiguration{DryRun: true}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			configuration := testCase.configuration
			builder := &workflowcmd.CommandBuilder{
				ConfigurationProvider: func() workflowcmd.CommandConfiguration { return configuration },
				ClientProvider: func(logger *zap.Logger) (instanceapi.RepositoryClient, error) {
					return nil, errors.New(clientFailureMessageConstant)
				},
			}

			arguments := append([]string{writeWorkflowFile(testInstance, workflowCommandContentConstant)}, testCase.arguments...)
			output, executionError := executeWorkflowCommand(testInstance, builder, arguments...)
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, plannedStepsExpectationConstant, output)
		})
	}
}

func TestWorkflowCommandFailures(testInstance *testing.T) {
	testCases := []struct {
		name           string
		content        string
		omitPath       bool
		clientProvider workflowcmd.ClientProvider
		expectedError  string
	}{
		{
			name:          "missing_path",
			omitPath:      true,
			expectedError: "workflow configuration path required",
		},
		{
			name:          "invalid_steps",
			content:       invalidWorkflowContentConstant,
			expectedError: "unable to build workflow operations",
		},
		{
			name:          "missing_client_provider",
			content:       workflowCommandContentConstant,
			expectedError: workflowcmd.ErrClientProviderNotConfigured.Error(),
		},
		{
			name:    "client_construction_failure",
			content: workflowCommandContentConstant,
			clientProvider: func(logger *zap.Logger) (instanceapi.RepositoryClient, error) {
				return nil, errors.New(clientFailureMessageConstant)
			},
			expectedError: clientFailureMessageConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			builder := &workflowcmd.CommandBuilder{ClientProvider: testCase.clientProvider}

			var arguments []string
			if !testCase.omitPath {
				arguments = append(arguments, writeWorkflowFile(testInstance, testCase.content))
			}

			_, executionError := executeWorkflowCommand(testInstance, builder, arguments...)
			require.Error(testInstance, executionError)
			require.Contains(testInstance, executionError.Error(), testCase.expectedError)
		})
	}
}
