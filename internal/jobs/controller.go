// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/ManuGH/seatkeeper/internal/booking"
	xglog "github.com/ManuGH/seatkeeper/internal/log"
	"github.com/ManuGH/seatkeeper/internal/metrics"
	"github.com/ManuGH/seatkeeper/internal/plan"
	"github.com/ManuGH/seatkeeper/internal/session"
	"github.com/ManuGH/seatkeeper/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Attempt outcomes.
const (
	OutcomeSucceeded      = "succeeded"
	OutcomeRejected       = "rejected"
	OutcomeTransportError = "transport_error"
	OutcomeSchemaMismatch = "schema_mismatch"
)

// Submitter performs one booking attempt.
type Submitter interface {
	Submit(ctx context.Context, p plan.Plan) (booking.Result, error)
}

// Attempt describes one submitted booking request.
type Attempt struct {
	RunID     string
	PlanIndex int
	Room      string
	Number    int
	Outcome   string
	Code      string
	Message   string
	Error     string
	At        time.Time
}

// AttemptRecorder persists attempts.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, a Attempt) error
}

// Outcome is the terminal result of one job.
type Outcome struct {
	PlanIndex int
	Room      string
	State     State
	Attempts  int
	// Last is the last result the service returned, if any.
	Last booking.Result
	// Err is nil on success. Otherwise it wraps booking.ErrRejected, the
	// last transport error or the context error.
	Err error
}

// Controller runs the bounded retry loop for single plans.
type Controller struct {
	submitter Submitter
	params    Params
	recorder  AttemptRecorder
	tracker   *Tracker
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithRecorder reports every attempt to r.
func WithRecorder(r AttemptRecorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithTracker publishes state transitions to t.
func WithTracker(t *Tracker) Option {
	return func(c *Controller) { c.tracker = t }
}

// WithSleeper replaces the pause between attempts.
func WithSleeper(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Controller) { c.sleep = fn }
}

// NewController returns a controller with normalized params.
func NewController(s Submitter, p Params, opts ...Option) *Controller {
	c := &Controller{
		submitter: s,
		params:    p.Normalize(),
		sleep:     sleepWithContext,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Params returns the effective retry parameters.
func (c *Controller) Params() Params { return c.params }

// Run attempts p until the service accepts it or the trials run out.
// Exhaustion is reported in the Outcome, never as a panic.
func (c *Controller) Run(ctx context.Context, p plan.Indexed) Outcome {
	ctx = xglog.ContextWithPlanIndex(ctx, p.Index)
	logger := xglog.WithComponentFromContext(ctx, "jobs").With().
		Str(xglog.FieldRoom, p.Plan.RoomName).
		Logger()

	out := Outcome{PlanIndex: p.Index, Room: p.Plan.RoomName, State: StatePending}
	c.publish(ctx, &out)

	remaining := c.params.MaxTrials
	for {
		if err := ctx.Err(); err != nil {
			out.Err = err
			return c.finish(ctx, logger, out, StateExhausted)
		}
		if out.State != StateAttempting {
			c.transition(ctx, logger, &out, StateAttempting)
		}

		out.Attempts++
		res, err := c.attempt(ctx, logger, p, out.Attempts)
		if err == nil {
			out.Last = res
			if res.OK() {
				out.Err = nil
				return c.finish(ctx, logger, out, StateSucceeded)
			}
			out.Err = res.Err()
		} else {
			out.Err = err
		}
		c.publish(ctx, &out)

		remaining--
		if remaining <= 0 {
			return c.finish(ctx, logger, out, StateExhausted)
		}
		if err := c.sleep(ctx, c.params.Delay); err != nil {
			out.Err = errors.Join(out.Err, err)
			return c.finish(ctx, logger, out, StateExhausted)
		}
	}
}

func (c *Controller) attempt(ctx context.Context, logger zerolog.Logger, p plan.Indexed, n int) (booking.Result, error) {
	ctx, span := telemetry.Tracer("seatkeeper.jobs").Start(ctx, "seatkeeper.jobs.attempt")
	defer span.End()
	span.SetAttributes(telemetry.BookingAttributes(p.Plan.RoomName, p.Index, n, len(p.Plan.SeatsInfo))...)

	res, err := c.submitter.Submit(ctx, p.Plan)
	a := Attempt{
		RunID:     xglog.RunIDFromContext(ctx),
		PlanIndex: p.Index,
		Room:      p.Plan.RoomName,
		Number:    n,
		At:        c.now(),
	}

	switch {
	case err != nil:
		a.Outcome = classify(err)
		a.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, a.Outcome)
		logger.Warn().Err(err).
			Int(xglog.FieldAttempt, n).
			Str(xglog.FieldEvent, "booking."+a.Outcome).
			Msg("booking attempt failed")
	case res.OK():
		a.Outcome = OutcomeSucceeded
		a.Code = res.Code
		a.Message = res.Message
		span.SetStatus(codes.Ok, "")
		logger.Info().
			Int(xglog.FieldAttempt, n).
			Str(xglog.FieldEvent, "booking.succeeded").
			Str(xglog.FieldCode, res.Code).
			Msg("booking accepted")
	default:
		a.Outcome = OutcomeRejected
		a.Code = res.Code
		a.Message = res.Message
		span.SetStatus(codes.Error, a.Outcome)
		logger.Info().
			Int(xglog.FieldAttempt, n).
			Str(xglog.FieldEvent, "booking.rejected").
			Str(xglog.FieldCode, res.Code).
			Str("message", res.Message).
			Msg("booking rejected")
	}
	span.SetAttributes(attribute.String(telemetry.ResultKey, a.Outcome))
	metrics.RecordBookingAttempt(a.Outcome)

	if c.recorder != nil {
		if rerr := c.recorder.RecordAttempt(ctx, a); rerr != nil {
			logger.Warn().Err(rerr).Int(xglog.FieldAttempt, n).Msg("failed to record attempt")
		}
	}
	return res, err
}

func classify(err error) string {
	if errors.Is(err, session.ErrSchemaMismatch) {
		return OutcomeSchemaMismatch
	}
	return OutcomeTransportError
}

func (c *Controller) transition(ctx context.Context, logger zerolog.Logger, out *Outcome, to State) {
	logger.Info().
		Str(xglog.FieldOldState, string(out.State)).
		Str(xglog.FieldNewState, string(to)).
		Int(xglog.FieldAttempt, out.Attempts).
		Msg("job state changed")
	out.State = to
	c.publish(ctx, out)
}

func (c *Controller) finish(ctx context.Context, logger zerolog.Logger, out Outcome, to State) Outcome {
	c.transition(ctx, logger, &out, to)
	metrics.RecordBookingJob(string(to))
	return out
}

func (c *Controller) publish(ctx context.Context, out *Outcome) {
	if c.tracker == nil {
		return
	}
	snap := JobSnapshot{
		RunID:     xglog.RunIDFromContext(ctx),
		PlanIndex: out.PlanIndex,
		Room:      out.Room,
		State:     out.State,
		Attempts:  out.Attempts,
		MaxTrials: c.params.MaxTrials,
		LastCode:  out.Last.Code,
		UpdatedAt: c.now(),
	}
	if out.Err != nil {
		snap.LastError = out.Err.Error()
	}
	c.tracker.Update(snap)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
