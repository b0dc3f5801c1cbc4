package worksite

import (
	"context"

	"geopunch/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=worksite_repo.go -destination=mock/worksite_repo_mock.go -package=mock
type Repository interface {
	FindByCompany(ctx context.Context, companyID string) (*Worksite, error)
	Upsert(ctx context.Context, w *Worksite) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByCompany(ctx context.Context, companyID string) (*Worksite, error) {
	var w Worksite
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *repository) Upsert(ctx context.Context, w *Worksite) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "latitude", "longitude", "radius_m", "updated_at"}),
		}).
		Create(w).Error
}
