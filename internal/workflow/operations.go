package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/instancectl/internal/instanceapi"
	"github.com/temirov/instancectl/internal/ui"
)

const (
	branchesListedMessageConstant = "workflow branches listed"
	pullCompletedMessageConstant  = "workflow pull completed"
	instanceLogFieldConstant      = "instance"
	branchLogFieldConstant        = "branch"
	branchCountLogFieldConstant   = "branch_count"
)

// ListBranchesOperation lists an instance's branches and renders them.
type ListBranchesOperation struct {
	Instance string
	Output   ui.OutputFormat
}

// Name identifies the operation.
func (operation *ListBranchesOperation) Name() string {
	return string(OperationTypeListBranches)
}

// Event describes the operation for progress reporting.
func (operation *ListBranchesOperation) Event() ui.StepEvent {
	return ui.StepEvent{Operation: operation.Name(), Instance: operation.Instance}
}

// Execute runs the branch listing.
func (operation *ListBranchesOperation) Execute(executionContext context.Context, environment *Environment) error {
	result, branchesError := environment.Client.GetBranches(executionContext, operation.Instance)
	if branchesError != nil {
		return branchesError
	}

	logFields := []zap.Field{zap.String(instanceLogFieldConstant, operation.Instance)}
	if branchNames, namesError := result.Data.Names(); namesError == nil {
		logFields = append(logFields, zap.Int(branchCountLogFieldConstant, len(branchNames)))
	}
	environment.Logger.Debug(branchesListedMessageConstant, logFields...)

	return environment.Renderer.RenderBranches(operation.Instance, result, operation.Output)
}

// PullOperation pulls an instance's repository, optionally on a branch.
type PullOperation struct {
	Instance string
	Branch   string
	Output   ui.OutputFormat
}

// Name identifies the operation.
func (operation *PullOperation) Name() string {
	return string(OperationTypePull)
}

// Event describes the operation for progress reporting.
func (operation *PullOperation) Event() ui.StepEvent {
	return ui.StepEvent{Operation: operation.Name(), Instance: operation.Instance, Branch: operation.Branch}
}

// Execute runs the pull.
func (operation *PullOperation) Execute(executionContext context.Context, environment *Environment) error {
	var input instanceapi.PullInput = instanceapi.InstanceName(operation.Instance)
	if len(operation.Branch) > 0 {
		input = instanceapi.PullRequest{InstanceName: operation.Instance, Branch: operation.Branch}
	}

	result, pullError := environment.Client.Pull(executionContext, input)
	if pullError != nil {
		return pullError
	}
	environment.Logger.Debug(
		pullCompletedMessageConstant,
		zap.String(instanceLogFieldConstant, operation.Instance),
		zap.String(branchLogFieldConstant, operation.Branch),
	)

	return environment.Renderer.RenderPayload(result, operation.Output)
}
