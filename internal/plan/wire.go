// SPDX-License-Identifier: MIT

package plan

import (
	"net/url"
	"strconv"
)

// ToWireData encodes a plan as booking form parameters. seats[i] and
// seatBookers[i] pair the i-th seat with the i-th occupant.
func ToWireData(p Plan) url.Values {
	v := make(url.Values, 2+2*len(p.SeatsInfo))
	v.Set("beginTime", strconv.FormatInt(p.BeginTime.Unix(), 10))
	v.Set("duration", strconv.Itoa(p.Duration*3600))
	for i, s := range p.SeatsInfo {
		v.Set("seats["+strconv.Itoa(i)+"]", s.ID)
	}
	for i, b := range p.SeatBookers {
		v.Set("seatBookers["+strconv.Itoa(i)+"]", b)
	}
	return v
}
