// SPDX-License-Identifier: MIT

package catalog

import (
	"encoding/json"

	"github.com/ManuGH/seatkeeper/internal/session"
)

// Response shapes of the reservation service. Pointers and nil slices mark
// levels that must be present; a nil level is a schema mismatch.

type roomItem struct {
	Name string `json:"name"`
	Link *struct {
		URL string `json:"url"`
	} `json:"link"`
}

type roomsResponse struct {
	Content *struct {
		Children []struct {
			DefaultItems []roomItem `json:"defaultItems"`
		} `json:"children"`
	} `json:"content"`
}

type preambleResponse struct {
	Data json.RawMessage `json:"data"`
}

type preambleData struct {
	SpaceCategory *struct {
		CategoryID session.FlexString `json:"category_id"`
		ContentID  session.FlexString `json:"content_id"`
	} `json:"space_category"`
}

type seatsResponse struct {
	AllContent *struct {
		Children []json.RawMessage `json:"children"`
	} `json:"allContent"`
}

type floorContainer struct {
	Children *struct {
		Children []floorRecord `json:"children"`
	} `json:"children"`
}

type floorRecord struct {
	RoomName string `json:"roomName"`
	SeatMap  *struct {
		Info *struct {
			ID session.FlexString `json:"id"`
		} `json:"info"`
		POIs []Seat `json:"POIs"`
	} `json:"seatMap"`
}

const (
	roomsChildIndex  = 1
	floorsChildIndex = 2
)
