// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPOperationKey  = "http.operation"

	RoomKey      = "booking.room"
	PlanIndexKey = "booking.plan_index"
	AttemptKey   = "booking.attempt"
	SeatCountKey = "booking.seats"
	ResultKey    = "booking.result"

	CatalogRoomsKey  = "catalog.rooms"
	CatalogFloorsKey = "catalog.floors"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, operation string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPOperationKey, operation),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// BookingAttributes describes one booking attempt.
func BookingAttributes(room string, planIndex, attempt, seats int) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 4)
	if room != "" {
		attrs = append(attrs, attribute.String(RoomKey, room))
	}
	return append(attrs,
		attribute.Int(PlanIndexKey, planIndex),
		attribute.Int(AttemptKey, attempt),
		attribute.Int(SeatCountKey, seats),
	)
}

// CatalogAttributes summarises a discovered catalog.
func CatalogAttributes(rooms, floors int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(CatalogRoomsKey, rooms),
		attribute.Int(CatalogFloorsKey, floors),
	}
}
