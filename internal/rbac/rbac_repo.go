package rbac

import (
	"gorm.io/gorm"
)

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetEmployeeRoles(companyID string) ([]EmployeeRole, error)
	GetRolePermissions(companyID string) ([]RolePermission, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetEmployeeRoles(companyID string) ([]EmployeeRole, error) {
	var rows []EmployeeRole
	err := r.db.Raw(`
		SELECT er.employee_id::text AS employee_id, er.role_id::text AS role_id
		FROM employee_roles er
		JOIN roles ro ON ro.id = er.role_id
		WHERE ro.company_id = ?
	`, companyID).Scan(&rows).Error
	return rows, err
}

func (r *repository) GetRolePermissions(companyID string) ([]RolePermission, error) {
	var rows []RolePermission
	err := r.db.Raw(`
		SELECT rp.role_id::text AS role_id, p.resource, p.action
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		JOIN roles ro ON ro.id = rp.role_id
		WHERE ro.company_id = ?
	`, companyID).Scan(&rows).Error
	return rows, err
}
