// SPDX-License-Identifier: MIT

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value
	}
	return m
}

func TestHTTPAttributes(t *testing.T) {
	m := attrMap(HTTPAttributes("POST", "/api.php/spaces_old", "book_seat", 200))
	assert.Equal(t, "POST", m[HTTPMethodKey].AsString())
	assert.Equal(t, "/api.php/spaces_old", m[HTTPRouteKey].AsString())
	assert.Equal(t, "book_seat", m[HTTPOperationKey].AsString())
	assert.EqualValues(t, 200, m[HTTPStatusCodeKey].AsInt64())
}

func TestBookingAttributes_OmitsEmptyRoom(t *testing.T) {
	attrs := BookingAttributes("", 1, 2, 3)
	assert.Len(t, attrs, 3)

	m := attrMap(BookingAttributes("A101", 1, 2, 3))
	assert.Equal(t, "A101", m[RoomKey].AsString())
	assert.EqualValues(t, 2, m[AttemptKey].AsInt64())
	assert.EqualValues(t, 3, m[SeatCountKey].AsInt64())
}

func TestCatalogAttributes(t *testing.T) {
	m := attrMap(CatalogAttributes(4, 9))
	assert.EqualValues(t, 4, m[CatalogRoomsKey].AsInt64())
	assert.EqualValues(t, 9, m[CatalogFloorsKey].AsInt64())
}
