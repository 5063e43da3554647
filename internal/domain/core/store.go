package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/auth"
	cryptoutil "github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/crypto"
)

var ErrNotFound = errors.New("not found")

const employeeColumns = `
    id,
    COALESCE(user_id::text, ''),
    COALESCE(employee_number, ''),
    first_name, last_name, email,
    COALESCE(phone, ''),
    national_id_enc,
    COALESCE(position, ''),
    COALESCE(department_id::text, ''),
    COALESCE(manager_id::text, ''),
    hire_date, end_date, status, created_at, updated_at`

type Store struct {
	DB     *pgxpool.Pool
	Crypto *cryptoutil.Service
}

func NewStore(db *pgxpool.Pool, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

func (s *Store) scanEmployee(row pgx.Row) (*Employee, error) {
	var emp Employee
	var nationalEnc []byte
	err := row.Scan(
		&emp.ID, &emp.UserID, &emp.EmployeeNumber, &emp.FirstName, &emp.LastName, &emp.Email,
		&emp.Phone, &nationalEnc, &emp.Position, &emp.DepartmentID, &emp.ManagerID,
		&emp.HireDate, &emp.EndDate, &emp.Status, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if plain, decErr := s.Crypto.DecryptString(nationalEnc); decErr == nil {
		emp.NationalID = plain
	}
	return &emp, nil
}

func (s *Store) GetEmployee(ctx context.Context, tenantID, employeeID string) (*Employee, error) {
	return s.scanEmployee(s.DB.QueryRow(ctx, `
    SELECT`+employeeColumns+`
    FROM employees
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID))
}

func (s *Store) GetEmployeeByUserID(ctx context.Context, tenantID, userID string) (*Employee, error) {
	return s.scanEmployee(s.DB.QueryRow(ctx, `
    SELECT`+employeeColumns+`
    FROM employees
    WHERE tenant_id = $1 AND user_id = $2
  `, tenantID, userID))
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    SELECT id FROM employees WHERE tenant_id = $1 AND user_id = $2
  `, tenantID, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}

func (s *Store) UserIDByEmployeeID(ctx context.Context, tenantID, employeeID string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(user_id::text, '') FROM employees WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return userID, err
}

func (s *Store) ManagerIDByEmployeeID(ctx context.Context, tenantID, employeeID string) (string, error) {
	var managerID string
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(manager_id::text, '') FROM employees WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID).Scan(&managerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return managerID, err
}

func (s *Store) IsManagerOf(ctx context.Context, tenantID, managerEmployeeID, employeeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM employees
    WHERE tenant_id = $1 AND id = $2 AND manager_id = $3
  `, tenantID, employeeID, managerEmployeeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) TeamEmployeeIDs(ctx context.Context, tenantID, managerEmployeeID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id FROM employees
    WHERE tenant_id = $1 AND manager_id = $2 AND status = 'active'
  `, tenantID, managerEmployeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// UserIDsByRole returns the active user accounts holding the given role, the
// recipient list for stage notifications.
func (s *Store) UserIDsByRole(ctx context.Context, tenantID, roleName string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.id
    FROM users u
    JOIN roles r ON u.role_id = r.id
    WHERE u.tenant_id = $1 AND r.name = $2 AND u.status = 'active'
  `, tenantID, roleName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) CountEmployees(ctx context.Context, tenantID string, filter EmployeeFilter) (int, error) {
	query, args := buildEmployeeQuery("SELECT COUNT(1)", tenantID, filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListEmployees(ctx context.Context, tenantID string, filter EmployeeFilter, limit, offset int) ([]Employee, error) {
	query, args := buildEmployeeQuery("SELECT"+employeeColumns, tenantID, filter)
	query += fmt.Sprintf(" ORDER BY last_name, first_name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := s.scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	return out, nil
}

func buildEmployeeQuery(prefix, tenantID string, filter EmployeeFilter) (string, []any) {
	query := prefix + " FROM employees WHERE tenant_id = $1"
	args := []any{tenantID}
	if filter.DepartmentID != "" {
		query += fmt.Sprintf(" AND department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if filter.ManagerID != "" {
		query += fmt.Sprintf(" AND manager_id = $%d", len(args)+1)
		args = append(args, filter.ManagerID)
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1)
		args = append(args, "%"+strings.TrimSpace(filter.Search)+"%")
	}
	return query, args
}

// CreateEmployeeWithUser creates the employee row and its login account in
// one transaction so a half-provisioned person can never log in.
func (s *Store) CreateEmployeeWithUser(ctx context.Context, tenantID string, emp Employee, roleID, password string) (string, string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", "", err
	}
	nationalEnc, err := s.Crypto.EncryptString(emp.NationalID)
	if err != nil {
		return "", "", err
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", "", err
	}
	defer tx.Rollback(ctx)

	var userID string
	if err := tx.QueryRow(ctx, `
    INSERT INTO users (tenant_id, email, password_hash, role_id)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, tenantID, emp.Email, hash, roleID).Scan(&userID); err != nil {
		return "", "", err
	}

	var employeeID string
	if err := tx.QueryRow(ctx, `
    INSERT INTO employees (tenant_id, user_id, employee_number, first_name, last_name, email, phone, national_id_enc, position, department_id, manager_id, hire_date, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,'active')
    RETURNING id
  `, tenantID, userID, emp.EmployeeNumber, emp.FirstName, emp.LastName, emp.Email,
		nullIfEmpty(emp.Phone), nationalEnc, nullIfEmpty(emp.Position),
		nullIfEmpty(emp.DepartmentID), nullIfEmpty(emp.ManagerID), emp.HireDate).Scan(&employeeID); err != nil {
		return "", "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", "", err
	}
	return employeeID, userID, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, tenantID, employeeID string, emp Employee) error {
	nationalEnc, err := s.Crypto.EncryptString(emp.NationalID)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET first_name = $1, last_name = $2, phone = $3, national_id_enc = $4,
        position = $5, department_id = $6, manager_id = $7, hire_date = $8,
        end_date = $9, status = $10, updated_at = now()
    WHERE tenant_id = $11 AND id = $12
  `, emp.FirstName, emp.LastName, nullIfEmpty(emp.Phone), nationalEnc,
		nullIfEmpty(emp.Position), nullIfEmpty(emp.DepartmentID), nullIfEmpty(emp.ManagerID),
		emp.HireDate, emp.EndDate, emp.Status, tenantID, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TerminateEmployee closes the employee row and disables the login account.
func (s *Store) TerminateEmployee(ctx context.Context, tenantID, employeeID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    UPDATE employees
    SET status = 'terminated', end_date = COALESCE(end_date, CURRENT_DATE), updated_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
    UPDATE users SET status = 'disabled'
    WHERE tenant_id = $1 AND id = (SELECT user_id FROM employees WHERE tenant_id = $1 AND id = $2)
  `, tenantID, employeeID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) DepartmentCount(ctx context.Context, tenantID string) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM departments WHERE tenant_id = $1", tenantID).Scan(&total)
	return total, err
}

func (s *Store) ListDepartments(ctx context.Context, tenantID string, limit, offset int) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, COALESCE(manager_id::text, ''), created_at
    FROM departments
    WHERE tenant_id = $1
    ORDER BY name
    LIMIT $2 OFFSET $3
  `, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var dep Department
		if err := rows.Scan(&dep.ID, &dep.Name, &dep.ManagerID, &dep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, dep)
	}
	return out, nil
}

func (s *Store) CreateDepartment(ctx context.Context, tenantID string, dep Department) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (tenant_id, name, manager_id)
    VALUES ($1,$2,$3)
    RETURNING id
  `, tenantID, dep.Name, nullIfEmpty(dep.ManagerID)).Scan(&id)
	return id, err
}

func (s *Store) UpdateDepartment(ctx context.Context, tenantID, departmentID string, dep Department) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE departments SET name = $1, manager_id = $2
    WHERE tenant_id = $3 AND id = $4
  `, dep.Name, nullIfEmpty(dep.ManagerID), tenantID, departmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DepartmentHasEmployees(ctx context.Context, tenantID, departmentID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM employees WHERE tenant_id = $1 AND department_id = $2
  `, tenantID, departmentID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) DeleteDepartment(ctx context.Context, tenantID, departmentID string) error {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM departments WHERE tenant_id = $1 AND id = $2
  `, tenantID, departmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
