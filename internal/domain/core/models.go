package core

import "time"

type Employee struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	EmployeeNumber string     `json:"employeeNumber"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	NationalID     string     `json:"nationalId,omitempty"`
	Position       string     `json:"position"`
	DepartmentID   string     `json:"departmentId"`
	ManagerID      string     `json:"managerId"`
	HireDate       *time.Time `json:"hireDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ManagerID string    `json:"managerId"`
	CreatedAt time.Time `json:"createdAt"`
}

type EmployeeFilter struct {
	DepartmentID string
	Status       string
	ManagerID    string
	Search       string
}
