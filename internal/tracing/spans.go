package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrSessionID     = "session.id"
	AttrScenarioName  = "scenario.name"
	AttrScenarioSteps = "scenario.steps"
	AttrStepIndex     = "step.index"
	AttrStepOp        = "step.op"
	AttrHandle        = "legend.handle"
	AttrTarget        = "legend.target"
	AttrPosition      = "legend.position"
	AttrGeneration    = "legend.generation"
	AttrErrorMessage  = "error.message"
)

// Span names.
const (
	SpanReplay     = "scenario.replay"
	SpanStepPrefix = "scenario.step."
)

// Event names.
const (
	EventStepRejected = "step.rejected"
)

// RecordError marks span as failed. A nil err leaves the span untouched.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
}
