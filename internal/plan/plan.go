// SPDX-License-Identifier: MIT

// Package plan builds reservation plans and converts them to booking
// request parameters.
package plan

import (
	"slices"
	"strings"
	"time"

	"github.com/ManuGH/seatkeeper/internal/catalog"
	"github.com/ManuGH/seatkeeper/internal/window"
)

// Plan is one reservation request. Seats and bookers pair positionally.
type Plan struct {
	RoomName    string         `yaml:"roomName" json:"roomName"`
	BeginTime   time.Time      `yaml:"beginTime" json:"beginTime"`
	Duration    int            `yaml:"duration" json:"duration"` // hours
	SeatsInfo   []catalog.Seat `yaml:"seatsInfo" json:"seatsInfo"`
	SeatBookers []string       `yaml:"seatBookers" json:"seatBookers"`
}

// Clone returns a deep copy of the plan's slices.
func (p Plan) Clone() Plan {
	p.SeatsInfo = slices.Clone(p.SeatsInfo)
	p.SeatBookers = slices.Clone(p.SeatBookers)
	return p
}

// Validate checks the invariants that do not need a catalog.
func (p Plan) Validate() error {
	if strings.TrimSpace(p.RoomName) == "" {
		return invalid("roomName", "empty")
	}
	if p.Duration <= 0 {
		return invalid("duration", "must be positive, got %d", p.Duration)
	}
	if len(p.SeatsInfo) == 0 {
		return invalid("seatsInfo", "no seats")
	}
	if len(p.SeatsInfo) != len(p.SeatBookers) {
		return invalid("seatBookers", "%d bookers for %d seats", len(p.SeatBookers), len(p.SeatsInfo))
	}
	for i, s := range p.SeatsInfo {
		if s.ID == "" {
			return invalid("seatsInfo", "seat %d has no seatId", i)
		}
	}
	return nil
}

// Builder validates plans against a discovered catalog.
type Builder struct {
	catalog *catalog.Catalog
	clock   window.Clock
}

// NewBuilder returns a builder; a nil clock uses the system clock.
func NewBuilder(cat *catalog.Catalog, clock window.Clock) *Builder {
	if clock == nil {
		clock = window.RealClock{}
	}
	return &Builder{catalog: cat, clock: clock}
}

// Add validates a new plan and returns plans with it appended. The input
// slices are copied; plans itself is not modified.
func (b *Builder) Add(plans []Plan, room string, begin time.Time, hours int, seats []catalog.Seat, bookers []string) ([]Plan, error) {
	p := Plan{
		RoomName:    room,
		BeginTime:   begin,
		Duration:    hours,
		SeatsInfo:   seats,
		SeatBookers: bookers,
	}.Clone()

	if err := p.Validate(); err != nil {
		return plans, err
	}
	r, ok := b.catalog.Room(room)
	if !ok {
		return plans, invalid("roomName", "room %q not in catalog", room)
	}
	p.RoomName = r.Name
	if !begin.After(b.clock.Now()) {
		return plans, invalid("beginTime", "%s is not in the future", begin.Format(time.RFC3339))
	}

	out := make([]Plan, len(plans), len(plans)+1)
	copy(out, plans)
	return append(out, p), nil
}

// Seats resolves seat ids on a floor of a room, in the given order. The floor
// is matched by name first, then by floor id.
func (b *Builder) Seats(room, floor string, ids []string) ([]catalog.Seat, error) {
	if _, ok := b.catalog.Room(room); !ok {
		return nil, invalid("roomName", "room %q not in catalog", room)
	}
	if _, err := b.catalog.Seats(room, floor); err != nil {
		name, ok := b.catalog.FloorNameByID(room, floor)
		if !ok {
			return nil, invalid("floor", "%v", err)
		}
		floor = name
	}
	seats := make([]catalog.Seat, 0, len(ids))
	for _, id := range ids {
		s, ok := b.catalog.Seat(room, floor, id)
		if !ok {
			return nil, invalid("seatsInfo", "seat %q not on floor %q", id, floor)
		}
		seats = append(seats, s)
	}
	return seats, nil
}
