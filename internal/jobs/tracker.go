// SPDX-License-Identifier: MIT

package jobs

import (
	"slices"
	"sync"
	"time"
)

// JobSnapshot is the published view of one job.
type JobSnapshot struct {
	RunID     string    `json:"run_id"`
	PlanIndex int       `json:"plan_index"`
	Room      string    `json:"room"`
	State     State     `json:"state"`
	Attempts  int       `json:"attempts"`
	MaxTrials int       `json:"max_trials"`
	LastCode  string    `json:"last_code,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tracker holds the latest snapshot per plan for readers such as the
// status server.
type Tracker struct {
	mu   sync.RWMutex
	jobs map[int]JobSnapshot
}

func NewTracker() *Tracker {
	return &Tracker{jobs: make(map[int]JobSnapshot)}
}

// Update replaces the snapshot for s.PlanIndex.
func (t *Tracker) Update(s JobSnapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[s.PlanIndex] = s
}

// Snapshot returns all jobs ordered by plan index.
func (t *Tracker) Snapshot() []JobSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]JobSnapshot, 0, len(t.jobs))
	for _, s := range t.jobs {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b JobSnapshot) int { return a.PlanIndex - b.PlanIndex })
	return out
}
