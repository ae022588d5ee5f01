package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/instancectl/internal/instanceapi"
	"github.com/temirov/instancectl/internal/ui"
)

// Operation performs a single workflow step.
type Operation interface {
	Name() string
	Event() ui.StepEvent
	Execute(executionContext context.Context, environment *Environment) error
}

// Environment exposes shared dependencies for workflow operations.
type Environment struct {
	Client   instanceapi.RepositoryClient
	Renderer *ui.Renderer
	Logger   *zap.Logger
}
