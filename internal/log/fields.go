// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRunID     = "run_id"
	FieldPlanIndex = "plan_index"
	FieldUID       = "uid"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldAttempt   = "attempt"

	// Catalog fields
	FieldRoom    = "room"
	FieldFloor   = "floor"
	FieldFloorID = "floor_id"
	FieldSeats   = "seats"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Upstream fields
	FieldURL    = "url"
	FieldStatus = "status"
	FieldCode   = "code"
)
