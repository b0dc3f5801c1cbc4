package rbac

// EmployeeRole links an employee to a role within a company.
type EmployeeRole struct {
	EmployeeID string
	RoleID     string
}

// RolePermission grants a role one resource/action pair.
type RolePermission struct {
	RoleID   string
	Resource string
	Action   string
}
