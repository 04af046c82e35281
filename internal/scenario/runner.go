package scenario

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/legend/internal/legend"
	"github.com/zjrosen/legend/internal/log"
	"github.com/zjrosen/legend/internal/mapsession"
	"github.com/zjrosen/legend/internal/tracing"
)

// ErrUnexpectedOutcome reports steps whose result contradicted their expect field.
var ErrUnexpectedOutcome = errors.New("unexpected step outcome")

// StepResult is the outcome of one replayed step.
type StepResult struct {
	Index      int
	Step       Step
	Handle     legend.Handle // entity the step acted on, engine-assigned for adds
	Err        error         // rejection reported by the legend or engine
	Unexpected bool
	Generation uint64 // tree generation after the step
}

// Report summarizes a replay.
type Report struct {
	Scenario string
	Steps    []StepResult
}

// Rejected counts steps that were rejected.
func (r Report) Rejected() int {
	n := 0
	for _, s := range r.Steps {
		if s.Err != nil {
			n++
		}
	}
	return n
}

// Unexpected returns the steps whose outcome contradicted their expectation.
func (r Report) Unexpected() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if s.Unexpected {
			out = append(out, s)
		}
	}
	return out
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTracer records a replay span and, when perStep is set, one child span per step.
func WithTracer(tracer trace.Tracer, perStep bool) RunnerOption {
	return func(r *Runner) {
		r.tracer = tracer
		r.perStep = perStep
	}
}

// WithStepHook calls fn after every step.
func WithStepHook(fn func(StepResult)) RunnerOption {
	return func(r *Runner) { r.hook = fn }
}

// Runner replays scenarios against sessions.
type Runner struct {
	tracer  trace.Tracer
	perStep bool
	hook    func(StepResult)
}

// NewRunner creates a runner. Without WithTracer spans are not recorded.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{tracer: noop.NewTracerProvider().Tracer("noop")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SessionOptions applies the scenario's root override to base.
func (sc *Scenario) SessionOptions(base mapsession.Options) mapsession.Options {
	if sc.Root != nil {
		base.RootHandle = legend.Handle(*sc.Root)
	}
	return base
}

// Run replays every step in order. Rejected steps do not stop the replay; the
// returned error wraps ErrUnexpectedOutcome when any step contradicted its
// expect field, or carries ctx.Err() when the replay was cancelled.
func (r *Runner) Run(ctx context.Context, s *mapsession.Session, sc *Scenario) (Report, error) {
	ctx, span := r.tracer.Start(ctx, tracing.SpanReplay, trace.WithAttributes(
		attribute.String(tracing.AttrSessionID, s.ID),
		attribute.String(tracing.AttrScenarioName, sc.Name),
		attribute.Int(tracing.AttrScenarioSteps, len(sc.Steps)),
	))
	defer span.End()

	log.Info(log.CatScenario, "Replaying scenario", "name", sc.Name, "steps", len(sc.Steps), "session", s.ID)

	report := Report{Scenario: sc.Name, Steps: make([]StepResult, 0, len(sc.Steps))}
	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			tracing.RecordError(span, err)
			return report, err
		}
		res := r.step(ctx, s, i, st)
		report.Steps = append(report.Steps, res)
		if r.hook != nil {
			r.hook(res)
		}
	}

	if bad := report.Unexpected(); len(bad) > 0 {
		err := fmt.Errorf("%w: %d of %d steps (first: step %d %s)",
			ErrUnexpectedOutcome, len(bad), len(report.Steps), bad[0].Index, bad[0].Step.Op)
		tracing.RecordError(span, err)
		return report, err
	}
	return report, nil
}

func (r *Runner) step(ctx context.Context, s *mapsession.Session, i int, st Step) StepResult {
	var span trace.Span
	if r.perStep {
		_, span = r.tracer.Start(ctx, tracing.SpanStepPrefix+string(st.Op), trace.WithAttributes(
			attribute.Int(tracing.AttrStepIndex, i),
			attribute.String(tracing.AttrStepOp, string(st.Op)),
		))
		defer span.End()
	}

	h, err := apply(s, st)
	res := StepResult{Index: i, Step: st, Handle: h, Err: err, Generation: s.Tree.Generation()}
	switch st.Expect {
	case ExpectOK:
		res.Unexpected = err != nil
	case ExpectRejected:
		res.Unexpected = err == nil
	}

	if err != nil {
		log.Debug(log.CatScenario, "Step rejected", "index", i, "op", st.Op, "handle", h, "error", err)
	}
	if res.Unexpected {
		log.Warn(log.CatScenario, "Unexpected step outcome", "index", i, "op", st.Op, "expect", st.Expect, "error", err)
	}

	if span != nil {
		span.SetAttributes(
			attribute.Int(tracing.AttrHandle, int(h)),
			attribute.Int64(tracing.AttrGeneration, int64(res.Generation)), // #nosec G115 -- generation fits
		)
		if st.Target != nil {
			span.SetAttributes(attribute.Int(tracing.AttrTarget, *st.Target))
		}
		if st.Position != nil {
			span.SetAttributes(attribute.Int(tracing.AttrPosition, *st.Position))
		}
		if err != nil {
			span.AddEvent(tracing.EventStepRejected)
			tracing.RecordError(span, err)
		}
	}
	return res
}

// apply performs one step and returns the handle it acted on.
func apply(s *mapsession.Session, st Step) (legend.Handle, error) {
	h := legend.NoHandle
	if st.Handle != nil {
		h = legend.Handle(*st.Handle)
	}

	switch st.Op {
	case OpAddLayer, OpAddGroup:
		parent := s.Tree.Root()
		if st.Parent != nil {
			parent = legend.Handle(*st.Parent)
		}
		pos := math.MaxInt
		if st.Position != nil {
			pos = *st.Position
		}
		return add(s, st, h, parent, pos)

	case OpRemove:
		if s.Engine.Remove(h) {
			return h, nil
		}
		if h == s.Tree.Root() {
			return h, fmt.Errorf("remove %d: %w", h, legend.ErrRootImmutable)
		}
		return h, &legend.NotFoundError{Kind: "entry", Handle: h}

	case OpMove:
		return h, s.Tree.Move(h, legend.Handle(*st.Target), *st.Position)

	case OpVisible:
		return h, s.Engine.SetVisible(h, *st.Visible)

	case OpRename:
		return h, s.Engine.Rename(h, st.Name)

	case OpReset:
		s.Engine.Clear()
		return s.Tree.Root(), nil
	}
	return h, fmt.Errorf("%w: unknown op %q", ErrInvalidScenario, st.Op)
}

func add(s *mapsession.Session, st Step, h, parent legend.Handle, pos int) (legend.Handle, error) {
	var err error
	switch {
	case st.Op == OpAddGroup && st.Handle == nil:
		h, err = s.Engine.AddGroup(st.Name, parent, pos)
	case st.Op == OpAddGroup:
		err = s.Engine.AddGroupWithHandle(h, st.Name, parent, pos)
	case st.Handle == nil:
		h, err = s.Engine.AddLayer(st.Name, st.Source, parent, pos)
	default:
		err = s.Engine.AddLayerWithHandle(h, st.Name, st.Source, parent, pos)
	}
	if err != nil {
		return h, err
	}
	if st.Hidden {
		err = s.Engine.SetVisible(h, false)
	}
	if err == nil && st.Visible != nil {
		err = s.Engine.SetVisible(h, *st.Visible)
	}
	return h, err
}
