// SPDX-License-Identifier: MIT

// Package booking submits reservation plans to the service.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	xglog "github.com/ManuGH/seatkeeper/internal/log"
	"github.com/ManuGH/seatkeeper/internal/plan"
	"github.com/ManuGH/seatkeeper/internal/session"
)

// ErrRejected marks a booking the service answered with a non-ok code.
var ErrRejected = errors.New("booking: rejected by service")

// Poster is the part of the session the executor needs.
type Poster interface {
	PostForm(ctx context.Context, op, rawURL string, form url.Values, v any) error
}

// Result is the service's answer to one booking request. Only Code drives
// control flow; Data and Raw are kept verbatim.
type Result struct {
	Code    string          `json:"CODE"`
	Message string          `json:"MESSAGE,omitempty"`
	Data    json.RawMessage `json:"DATA,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

// OK reports whether the service accepted the booking.
func (r Result) OK() bool { return r.Code == "ok" }

// Err returns nil for an accepted booking and ErrRejected otherwise.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: code=%s message=%q", ErrRejected, r.Code, r.Message)
}

func (r *Result) UnmarshalJSON(b []byte) error {
	var env struct {
		Code    *session.FlexString `json:"CODE"`
		Message string              `json:"MESSAGE"`
		Data    json.RawMessage     `json:"DATA"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	if env.Code == nil {
		return errors.New("missing CODE")
	}
	r.Code = env.Code.String()
	r.Message = env.Message
	r.Data = env.Data
	r.Raw = append(json.RawMessage(nil), b...)
	return nil
}

// Executor performs single booking attempts.
type Executor struct {
	poster   Poster
	endpoint string
}

// NewExecutor returns an executor posting to endpoint.
func NewExecutor(p Poster, endpoint string) *Executor {
	return &Executor{poster: p, endpoint: endpoint}
}

// Submit posts one plan. A rejection is returned as a Result with a nil
// error; transport and decoding failures are errors. Submit never retries.
func (e *Executor) Submit(ctx context.Context, p plan.Plan) (Result, error) {
	var res Result
	if err := e.poster.PostForm(ctx, "book_seat", e.endpoint, plan.ToWireData(p), &res); err != nil {
		return Result{}, fmt.Errorf("submit booking for %q: %w", p.RoomName, err)
	}

	logger := xglog.WithComponentFromContext(ctx, "booking")
	logger.Debug().
		Str(xglog.FieldRoom, p.RoomName).
		Int(xglog.FieldSeats, len(p.SeatsInfo)).
		Str(xglog.FieldCode, res.Code).
		Msg("booking submitted")
	return res, nil
}
