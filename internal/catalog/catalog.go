// SPDX-License-Identifier: MIT

// Package catalog discovers and models the room → floor → seat hierarchy of
// the reservation service.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var (
	ErrRoomNotFound  = errors.New("catalog: room not found")
	ErrFloorNotFound = errors.New("catalog: floor not found")
)

// SpaceCategory is the opaque key pair required to query a room's seats.
type SpaceCategory struct {
	CategoryID string `json:"category_id"`
	ContentID  string `json:"content_id"`
}

// Room is one bookable room.
type Room struct {
	Name string `json:"name"`
	// Query is the decoded query string of the room's selector link.
	Query         string          `json:"query"`
	SpaceCategory SpaceCategory   `json:"space_category"`
	Preamble      json.RawMessage `json:"preamble,omitempty"`
	Floors        []*Floor        `json:"floors,omitempty"`
}

// Floor is one floor (seat map) of a room.
type Floor struct {
	Name  string `json:"name"`
	ID    string `json:"id"`
	Seats []Seat `json:"seats"`
}

// Catalog is the discovered hierarchy, rooms in listing order.
type Catalog struct {
	Rooms []*Room `json:"rooms"`
	// Target is the instant seat availability was resolved for.
	Target     time.Time `json:"target"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// NormalizeName folds the forms an operator may type a room or floor name in
// (full-width digits/latin, decomposed unicode, surrounding blanks).
func NormalizeName(s string) string {
	return width.Fold.String(norm.NFC.String(strings.TrimSpace(s)))
}

// RoomNames lists room names in listing order.
func (c *Catalog) RoomNames() []string {
	names := make([]string, 0, len(c.Rooms))
	for _, r := range c.Rooms {
		names = append(names, r.Name)
	}
	return names
}

// Room finds a room by name.
func (c *Catalog) Room(name string) (*Room, bool) {
	if c == nil {
		return nil, false
	}
	want := NormalizeName(name)
	for _, r := range c.Rooms {
		if NormalizeName(r.Name) == want {
			return r, true
		}
	}
	return nil, false
}

// Floor finds a floor of the room by name.
func (r *Room) Floor(name string) (*Floor, bool) {
	want := NormalizeName(name)
	for _, f := range r.Floors {
		if NormalizeName(f.Name) == want {
			return f, true
		}
	}
	return nil, false
}

// Seat finds a seat of the floor by id.
func (f *Floor) Seat(id string) (Seat, bool) {
	for _, s := range f.Seats {
		if s.ID == id {
			return s, true
		}
	}
	return Seat{}, false
}

// FloorNames lists the floors of a room.
func (c *Catalog) FloorNames(room string) ([]string, error) {
	r, ok := c.Room(room)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRoomNotFound, room)
	}
	names := make([]string, 0, len(r.Floors))
	for _, f := range r.Floors {
		names = append(names, f.Name)
	}
	return names, nil
}

// FloorNameByID returns the name of the room's floor with the given id.
func (c *Catalog) FloorNameByID(room, id string) (string, bool) {
	r, ok := c.Room(room)
	if !ok {
		return "", false
	}
	for _, f := range r.Floors {
		if f.ID == id {
			return f.Name, true
		}
	}
	return "", false
}

// Seats returns the seats of a floor.
func (c *Catalog) Seats(room, floor string) ([]Seat, error) {
	r, ok := c.Room(room)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRoomNotFound, room)
	}
	f, ok := r.Floor(floor)
	if !ok {
		return nil, fmt.Errorf("%w: %q in %q", ErrFloorNotFound, floor, room)
	}
	return f.Seats, nil
}

// Seat looks up one seat.
func (c *Catalog) Seat(room, floor, seatID string) (Seat, bool) {
	seats, err := c.Seats(room, floor)
	if err != nil {
		return Seat{}, false
	}
	for _, s := range seats {
		if s.ID == seatID {
			return s, true
		}
	}
	return Seat{}, false
}

// RoomDetails maps room name → floor name → floor id.
func (c *Catalog) RoomDetails() map[string]map[string]string {
	out := make(map[string]map[string]string, len(c.Rooms))
	for _, r := range c.Rooms {
		floors := make(map[string]string, len(r.Floors))
		for _, f := range r.Floors {
			floors[f.Name] = f.ID
		}
		out[r.Name] = floors
	}
	return out
}

// Counts returns the number of rooms, floors and seats.
func (c *Catalog) Counts() (rooms, floors, seats int) {
	rooms = len(c.Rooms)
	for _, r := range c.Rooms {
		floors += len(r.Floors)
		for _, f := range r.Floors {
			seats += len(f.Seats)
		}
	}
	return rooms, floors, seats
}

// setFloor inserts or replaces a floor by name, keeping first-seen order.
func (r *Room) setFloor(f *Floor) {
	for i, existing := range r.Floors {
		if existing.Name == f.Name {
			r.Floors[i] = f
			return
		}
	}
	r.Floors = append(r.Floors, f)
}
