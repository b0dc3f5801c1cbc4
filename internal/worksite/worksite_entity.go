package worksite

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Worksite is a company's office location and geofence radius. One row
// per company in this milestone.
type Worksite struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID      `gorm:"column:company_id;type:uuid;not null;uniqueIndex"`
	Name      string         `gorm:"column:name;type:varchar(120);not null"`
	Latitude  float64        `gorm:"column:latitude;not null"`
	Longitude float64        `gorm:"column:longitude;not null"`
	RadiusM   float64        `gorm:"column:radius_m;not null;default:300"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Worksite) TableName() string {
	return "worksites"
}
