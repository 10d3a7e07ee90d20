// SPDX-License-Identifier: MIT
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Catalog metrics
	catalogRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seatkeeper_catalog_rooms",
		Help: "Rooms discovered in the last catalog update",
	})
	catalogFloors = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seatkeeper_catalog_floors",
		Help: "Floors resolved in the last catalog update",
	})
	catalogSeats = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seatkeeper_catalog_seats",
		Help: "Seats resolved in the last catalog update",
	})
	catalogDiscoveryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatkeeper_catalog_discovery_errors_total",
		Help: "Catalog discovery failures by stage",
	}, []string{"stage"}) // stage=rooms|preamble|seats

	catalogCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatkeeper_catalog_cache_lookups_total",
		Help: "Catalog cache lookups by backend and result",
	}, []string{"backend", "result"}) // result=hit|miss

	// Booking metrics
	bookingAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatkeeper_booking_attempts_total",
		Help: "Booking attempts by outcome",
	}, []string{"outcome"}) // outcome=succeeded|rejected|transport_error|schema_mismatch

	bookingJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatkeeper_booking_jobs_total",
		Help: "Booking jobs by terminal state",
	}, []string{"state"}) // state=succeeded|exhausted
)

// SetCatalogSize records the size of the last resolved catalog.
func SetCatalogSize(rooms, floors, seats int) {
	catalogRooms.Set(float64(rooms))
	catalogFloors.Set(float64(floors))
	catalogSeats.Set(float64(seats))
}

// IncCatalogDiscoveryError counts a discovery failure at the given stage.
func IncCatalogDiscoveryError(stage string) {
	catalogDiscoveryErrors.WithLabelValues(stage).Inc()
}

// RecordCatalogCacheLookup counts a cache hit or miss.
func RecordCatalogCacheLookup(backend string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	catalogCacheLookups.WithLabelValues(backend, result).Inc()
}

// RecordBookingAttempt counts a single booking attempt.
func RecordBookingAttempt(outcome string) {
	bookingAttempts.WithLabelValues(outcome).Inc()
}

// RecordBookingJob counts a job reaching a terminal state.
func RecordBookingJob(state string) {
	bookingJobs.WithLabelValues(state).Inc()
}
