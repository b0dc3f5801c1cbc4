package events

import "time"

const AttendancePunchedTopic = "hr.attendance.punch.v1"

// AttendancePunchedEvent is emitted through the outbox whenever a punch
// is accepted. The consumer keeps the presence board in sync with it.
type AttendancePunchedEvent struct {
	EventType         string    `json:"event_type"`
	RequestID         string    `json:"request_id,omitempty"`
	PunchID           string    `json:"punch_id"`
	EmployeeID        string    `json:"employee_id"`
	CompanyID         string    `json:"company_id"`
	PunchType         string    `json:"punch_type"`
	GeofenceViolation bool      `json:"geofence_violation"`
	OccurredAt        time.Time `json:"occurred_at"`
}
