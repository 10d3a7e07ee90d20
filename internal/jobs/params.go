// SPDX-License-Identifier: MIT

// Package jobs drives booking attempts for reservation plans.
package jobs

import "time"

// State is the lifecycle state of one booking job.
type State string

const (
	StatePending    State = "pending"
	StateAttempting State = "attempting"
	StateSucceeded  State = "succeeded"
	StateExhausted  State = "exhausted"
)

// Terminal reports whether no further transitions follow.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateExhausted
}

const (
	DefaultMaxTrials = 10
	// MinDelay is the shortest pause between attempts.
	MinDelay = 2 * time.Second
)

// Params bounds the retry loop.
type Params struct {
	MaxTrials int
	Delay     time.Duration
}

// Normalize applies the default trial count and the delay floor.
func (p Params) Normalize() Params {
	if p.MaxTrials < 1 {
		p.MaxTrials = DefaultMaxTrials
	}
	if p.Delay < MinDelay {
		p.Delay = MinDelay
	}
	return p
}
