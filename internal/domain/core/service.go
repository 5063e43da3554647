package core

import "context"

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) GetEmployee(ctx context.Context, tenantID, employeeID string) (*Employee, error) {
	return s.store.GetEmployee(ctx, tenantID, employeeID)
}

func (s *Service) GetEmployeeByUserID(ctx context.Context, tenantID, userID string) (*Employee, error) {
	return s.store.GetEmployeeByUserID(ctx, tenantID, userID)
}

func (s *Service) EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	return s.store.EmployeeIDByUserID(ctx, tenantID, userID)
}

func (s *Service) UserIDByEmployeeID(ctx context.Context, tenantID, employeeID string) (string, error) {
	return s.store.UserIDByEmployeeID(ctx, tenantID, employeeID)
}

func (s *Service) ManagerIDByEmployeeID(ctx context.Context, tenantID, employeeID string) (string, error) {
	return s.store.ManagerIDByEmployeeID(ctx, tenantID, employeeID)
}

func (s *Service) IsManagerOf(ctx context.Context, tenantID, managerEmployeeID, employeeID string) (bool, error) {
	return s.store.IsManagerOf(ctx, tenantID, managerEmployeeID, employeeID)
}

func (s *Service) TeamEmployeeIDs(ctx context.Context, tenantID, managerEmployeeID string) ([]string, error) {
	return s.store.TeamEmployeeIDs(ctx, tenantID, managerEmployeeID)
}

func (s *Service) UserIDsByRole(ctx context.Context, tenantID, roleName string) ([]string, error) {
	return s.store.UserIDsByRole(ctx, tenantID, roleName)
}

func (s *Service) CountEmployees(ctx context.Context, tenantID string, filter EmployeeFilter) (int, error) {
	return s.store.CountEmployees(ctx, tenantID, filter)
}

func (s *Service) ListEmployees(ctx context.Context, tenantID string, filter EmployeeFilter, limit, offset int) ([]Employee, error) {
	return s.store.ListEmployees(ctx, tenantID, filter, limit, offset)
}

func (s *Service) CreateEmployeeWithUser(ctx context.Context, tenantID string, emp Employee, roleID, password string) (string, string, error) {
	return s.store.CreateEmployeeWithUser(ctx, tenantID, emp, roleID, password)
}

func (s *Service) UpdateEmployee(ctx context.Context, tenantID, employeeID string, emp Employee) error {
	return s.store.UpdateEmployee(ctx, tenantID, employeeID, emp)
}

func (s *Service) TerminateEmployee(ctx context.Context, tenantID, employeeID string) error {
	return s.store.TerminateEmployee(ctx, tenantID, employeeID)
}

func (s *Service) DepartmentCount(ctx context.Context, tenantID string) (int, error) {
	return s.store.DepartmentCount(ctx, tenantID)
}

func (s *Service) ListDepartments(ctx context.Context, tenantID string, limit, offset int) ([]Department, error) {
	return s.store.ListDepartments(ctx, tenantID, limit, offset)
}

func (s *Service) CreateDepartment(ctx context.Context, tenantID string, dep Department) (string, error) {
	return s.store.CreateDepartment(ctx, tenantID, dep)
}

func (s *Service) UpdateDepartment(ctx context.Context, tenantID, departmentID string, dep Department) error {
	return s.store.UpdateDepartment(ctx, tenantID, departmentID, dep)
}

func (s *Service) DepartmentHasEmployees(ctx context.Context, tenantID, departmentID string) (bool, error) {
	return s.store.DepartmentHasEmployees(ctx, tenantID, departmentID)
}

func (s *Service) DeleteDepartment(ctx context.Context, tenantID, departmentID string) error {
	return s.store.DeleteDepartment(ctx, tenantID, departmentID)
}
