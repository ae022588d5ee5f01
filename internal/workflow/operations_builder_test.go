package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/instancectl/internal/ui"
	"github.com/temirov/instancectl/internal/workflow"
)

func TestBuildOperations(testInstance *testing.T) {
	testCases := []struct {
		name              string
		content           string
		expectedOperation workflow.Operation
	}{
		{
			name:              "list_branches_defaults_to_table",
			content:           "steps:\n  - operation: list-branches\n    with:\n      instance: svc1\n",
			expectedOperation: &workflow.ListBranchesOperation{Instance: "svc1", Output: ui.OutputFormatTable},
		},
		{
			name:              "pull_with_branch_and_yaml",
			content:           "steps:\n  - operation: pull\n    with:\n      instance: svc1\n      branch: release\n      output: YAML\n",
			expectedOperation: &workflow.PullOperation{Instance: "svc1", Branch: "release", Output: ui.OutputFormatYAML},
		},
		{
			name:              "numeric_instance_is_weakly_typed",
			content:           "steps:\n  - operation: pull\n    with:\n      instance: 42\n",
			expectedOperation: &workflow.PullOperation{Instance: "42", Output: ui.OutputFormatJSON},
		},
		{
			name:              "tool_defaults_merged_under_step",
			content:           toolReferenceWorkflowConfiguration,
			expectedOperation: &workflow.PullOperation{Instance: "svc3", Branch: "release", Output: ui.OutputFormatJSON},
		},
		{
			name:              "step_overrides_tool_option",
			content:           "tools:\n  - name: p\n    operation: pull\n    with:\n      branch: release\nsteps:\n  - with:\n      tool: p\n      instance: svc4\n      branch: hotfix\n",
			expectedOperation: &workflow.PullOperation{Instance: "svc4", Branch: "hotfix", Output: ui.OutputFormatJSON},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			configuration, parseError := workflow.ParseConfiguration([]byte(testCase.content))
			require.NoError(testInstance, parseError)

			operations, buildError := workflow.BuildOperations(configuration)
			require.NoError(testInstance, buildError)
			require.Equal(testInstance, []workflow.Operation{testCase.expectedOperation}, operations)
		})
	}
}

func TestBuildOperationsRejectsInvalidSteps(testInstance *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "unknown_operation", content: "steps:\n  - operation: deploy\n    with:\n      instance: svc1\n"},
		{name: "missing_instance", content: "steps:\n  - operation: pull\n    with:\n      branch: main\n"},
		{name: "unknown_option", content: "steps:\n  - operation: pull\n    with:\n      instance: svc1\n      force: true\n"},
		{name: "branch_on_listing", content: "steps:\n  - operation: list-branches\n    with:\n      instance: svc1\n      branch: main\n"},
		{name: "table_for_pull", content: "steps:\n  - operation: pull\n    with:\n      instance: svc1\n      output: table\n"},
		{name: "tool_operation_conflict", content: "tools:\n  - name: p\n    operation: pull\nsteps:\n  - operation: list-branches\n    with:\n      tool: p\n      instance: svc1\n"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			configuration, parseError := workflow.ParseConfiguration([]byte(testCase.content))
			require.NoError(testInstance, parseError)

			_, buildError := workflow.BuildOperations(configuration)
			require.Error(testInstance, buildError)
			require.Contains(testInstance, buildError.Error(), "workflow step 1")
		})
	}
}
