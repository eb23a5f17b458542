package model

import "gorm.io/gorm"

// Employee 员工 — 对应 employees
type Employee struct {
	EmployeeID     string `gorm:"type:uuid;primaryKey"               json:"employee_id"`
	Name           string `gorm:"type:varchar(150);not null"         json:"name"`
	DocumentNumber string `gorm:"type:varchar(30);not null"          json:"document_number"`
	Position       string `gorm:"type:varchar(100);not null"         json:"position"`
	Email          string `gorm:"type:varchar(255);not null"         json:"email"`
	IsActive       bool   `gorm:"not null;default:true"              json:"is_active"`
	CatalogModel
}

func (Employee) TableName() string { return "employees" }

func (e *Employee) BeforeCreate(_ *gorm.DB) error {
	ensureID(&e.EmployeeID)
	return nil
}
