package ui

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	stepStartedMessageTemplateConstant   = "Running %s"
	stepPlannedMessageTemplateConstant   = "Planned %s"
	stepCompletedMessageTemplateConstant = "Completed %s"
	stepFailedMessageTemplateConstant    = "%s failed: %s"
	stepLabelTemplateConstant            = "step %d: %s %s"
	stepBranchSuffixTemplateConstant     = " (branch %s)"
	unknownFailureMessageConstant        = "unknown error"
)

// StepEvent identifies a workflow step for progress reporting.
type StepEvent struct {
	Index     int
	Operation string
	Instance  string
	Branch    string
}

// StepEventFormatter builds human-readable messages for workflow step lifecycle events.
type StepEventFormatter struct{}

// BuildStartedMessage formats the message describing a step about to run.
func (formatter StepEventFormatter) BuildStartedMessage(event StepEvent) string {
	return fmt.Sprintf(stepStartedMessageTemplateConstant, formatter.formatStepLabel(event))
}

// BuildPlannedMessage formats the message describing a step listed without running it.
func (formatter StepEventFormatter) BuildPlannedMessage(event StepEvent) string {
	return fmt.Sprintf(stepPlannedMessageTemplateConstant, formatter.formatStepLabel(event))
}

// BuildSuccessMessage formats the message describing a completed step.
func (formatter StepEventFormatter) BuildSuccessMessage(event StepEvent) string {
	return fmt.Sprintf(stepCompletedMessageTemplateConstant, formatter.formatStepLabel(event))
}

// BuildFailureMessage formats the message describing a failed step.
func (formatter StepEventFormatter) BuildFailureMessage(event StepEvent, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(stepFailedMessageTemplateConstant, formatter.formatStepLabel(event), failureMessage)
}

func (formatter StepEventFormatter) formatStepLabel(event StepEvent) string {
	label := fmt.Sprintf(stepLabelTemplateConstant, event.Index, event.Operation, event.Instance)
	trimmedBranch := strings.TrimSpace(event.Branch)
	if len(trimmedBranch) == 0 {
		return label
	}
	return label + fmt.Sprintf(stepBranchSuffixTemplateConstant, trimmedBranch)
}

// ConsoleStepEventLogger reports step lifecycle events through a zap logger.
type ConsoleStepEventLogger struct {
	logger    *zap.Logger
	formatter StepEventFormatter
}

// NewConsoleStepEventLogger constructs a step event logger backed by the provided zap logger.
func NewConsoleStepEventLogger(logger *zap.Logger) *ConsoleStepEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleStepEventLogger{logger: logger, formatter: StepEventFormatter{}}
}

// StepStarted logs a step start notification.
func (eventLogger *ConsoleStepEventLogger) StepStarted(event StepEvent) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(event))
}

// StepCompleted logs a step completion notification.
func (eventLogger *ConsoleStepEventLogger) StepCompleted(event StepEvent) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(event))
}

// StepFailed logs a step failure at warn level; the failing request has already logged its own error.
func (eventLogger *ConsoleStepEventLogger) StepFailed(event StepEvent, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(event, failure))
}
