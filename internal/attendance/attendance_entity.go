package attendance

import (
	"time"

	"github.com/google/uuid"
)

// Punch is one accepted clock event. Attendance state is derived from
// the latest row per employee rather than mutated in place, so the log
// doubles as an audit trail.
type Punch struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID         uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID        uuid.UUID `gorm:"column:employee_id;type:uuid;not null;index"`
	Type              string    `gorm:"column:type;type:varchar(20);not null"`
	PunchedAt         time.Time `gorm:"column:punched_at;type:timestamptz;not null;index"`
	Latitude          float64   `gorm:"column:latitude;not null"`
	Longitude         float64   `gorm:"column:longitude;not null"`
	AccuracyM         *float64  `gorm:"column:accuracy_m"`
	DistanceM         *float64  `gorm:"column:distance_m"`
	GeofenceViolation bool      `gorm:"column:geofence_violation;not null;default:false"`
	ViolationReason   *string   `gorm:"column:violation_reason;type:text"`
	Source            string    `gorm:"column:source;type:varchar(30);not null;default:AGENT"`
	RequestID         *string   `gorm:"column:request_id;type:varchar(100);uniqueIndex:uq_punch_request"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (Punch) TableName() string {
	return "attendance_punches"
}
