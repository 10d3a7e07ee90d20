// SPDX-License-Identifier: MIT

package plan

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestToWireData(t *testing.T) {
	p := Plan{
		RoomName:    "Room 3",
		BeginTime:   time.Unix(1775041200, 0),
		Duration:    2,
		SeatsInfo:   seats("301", "302", "303"),
		SeatBookers: []string{"u1", "u2", "u3"},
	}

	want := url.Values{
		"beginTime":      {"1775041200"},
		"duration":       {"7200"},
		"seats[0]":       {"301"},
		"seats[1]":       {"302"},
		"seats[2]":       {"303"},
		"seatBookers[0]": {"u1"},
		"seatBookers[1]": {"u2"},
		"seatBookers[2]": {"u3"},
	}
	if diff := cmp.Diff(want, ToWireData(p)); diff != "" {
		t.Errorf("ToWireData mismatch (-want +got):\n%s", diff)
	}
}

func TestToWireData_Deterministic(t *testing.T) {
	p := Plan{
		BeginTime:   time.Unix(1775041200, 0),
		Duration:    1,
		SeatsInfo:   seats("9", "1"),
		SeatBookers: []string{"b", "a"},
	}
	first := ToWireData(p).Encode()
	for i := 0; i < 10; i++ {
		if got := ToWireData(p).Encode(); got != first {
			t.Fatalf("encoding changed: %q != %q", got, first)
		}
	}
}
