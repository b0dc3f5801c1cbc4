package attendance

// LocationPayload mirrors the coordinate object the agent sends.
type LocationPayload struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

type UserPayload struct {
	ID string `json:"id" binding:"required"`
}

// PunchRequest is the wire contract of both punch endpoints. Location
// and user are required; the rest is optional enrichment the server
// stores when present.
type PunchRequest struct {
	Location        LocationPayload `json:"location" binding:"required"`
	User            UserPayload     `json:"user" binding:"required"`
	AccuracyM       *float64        `json:"accuracy_m,omitempty"`
	ViolationReason *string         `json:"violation_reason,omitempty"`
	Source          string          `json:"source,omitempty"`
}

type PunchResponse struct {
	ID                string   `json:"id"`
	CompanyID         string   `json:"company_id"`
	EmployeeID        string   `json:"employee_id"`
	Type              string   `json:"type"`
	PunchedAt         string   `json:"punched_at"`
	Latitude          float64  `json:"latitude"`
	Longitude         float64  `json:"longitude"`
	AccuracyM         *float64 `json:"accuracy_m,omitempty"`
	DistanceM         *float64 `json:"distance_m,omitempty"`
	FormattedDistance string   `json:"formatted_distance,omitempty"`
	GeofenceViolation bool     `json:"geofence_violation"`
	ViolationReason   *string  `json:"violation_reason,omitempty"`
	Source            string   `json:"source"`
	Status            string   `json:"status"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
