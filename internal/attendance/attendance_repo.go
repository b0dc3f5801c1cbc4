package attendance

import (
	"context"
	"database/sql"

	"geopunch/internal/tenant"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) (Repository, error)
	Create(ctx context.Context, p *Punch) error
	FindLatestByEmployee(ctx context.Context, companyID, employeeID string) (*Punch, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]Punch, error)
	FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]Punch, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx rebinds the gorm session onto the open transaction, so the
// punch row commits or rolls back together with the outbox event
// written on the same tx.
func (r *repository) WithTx(tx *sql.Tx) (Repository, error) {
	txDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 r.db.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &repository{db: txDB}, nil
}

func (r *repository) Create(ctx context.Context, p *Punch) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) FindLatestByEmployee(ctx context.Context, companyID, employeeID string) (*Punch, error) {
	var p Punch
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("punched_at DESC").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Punch, error) {
	var rows []Punch
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("punched_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]Punch, error) {
	var rows []Punch
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("punched_at DESC").
		Find(&rows).Error
	return rows, err
}
