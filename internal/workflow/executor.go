package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/instancectl/internal/instanceapi"
	"github.com/temirov/instancectl/internal/ui"
)

const (
	workflowStepFailureTemplateConstant = "workflow step %d (%s) failed: %w"
	workflowExecutorDependenciesMessage = "workflow executor requires an instance manager client"
)

// ErrExecutorDependenciesMissing indicates the executor was built without a client.
var ErrExecutorDependenciesMissing = errors.New(workflowExecutorDependenciesMessage)

// StepObserver receives step lifecycle notifications.
type StepObserver interface {
	StepStarted(event ui.StepEvent)
	StepCompleted(event ui.StepEvent)
	StepFailed(event ui.StepEvent, failure error)
}

// Dependencies configures shared collaborators for workflow execution.
type Dependencies struct {
	Client   instanceapi.RepositoryClient
	Logger   *zap.Logger
	Output   io.Writer
	Observer StepObserver
}

// Executor runs workflow operations in order.
type Executor struct {
	operations   []Operation
	dependencies Dependencies
}

// NewExecutor constructs an Executor instance.
func NewExecutor(operations []Operation, dependencies Dependencies) *Executor {
	return &Executor{operations: append([]Operation{}, operations...), dependencies: dependencies}
}

// Execute runs every operation sequentially and stops at the first failure.
// Steps are numbered from one in errors and events.
func (executor *Executor) Execute(executionContext context.Context) error {
	if executor.dependencies.Client == nil {
		return ErrExecutorDependenciesMissing
	}

	logger := executor.dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	output := executor.dependencies.Output
	if output == nil {
		output = io.Discard
	}
	observer := executor.dependencies.Observer
	if observer == nil {
		observer = ui.NewConsoleStepEventLogger(logger)
	}

	environment := &Environment{
		Client:   executor.dependencies.Client,
		Renderer: ui.NewRenderer(output),
		Logger:   logger,
	}

	for operationIndex, operation := range executor.operations {
		if operation == nil {
			continue
		}
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}

		event := operation.Event()
		event.Index = operationIndex + 1
		observer.StepStarted(event)

		if executeError := operation.Execute(executionContext, environment); executeError != nil {
			observer.StepFailed(event, executeError)
			return fmt.Errorf(workflowStepFailureTemplateConstant, event.Index, operation.Name(), executeError)
		}
		observer.StepCompleted(event)
	}

	return nil
}
