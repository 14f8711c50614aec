package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles recognized by the access gate
const (
	RoleAdmin   = "admin"
	RoleCompany = "company"
)

// User represents a dashboard login stored in the database
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Email     string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Password  string         `json:"-" gorm:"type:varchar(255)"`
	Role      string         `json:"role" gorm:"type:varchar(20);default:'company'"`
	CompanyID *uint          `json:"company_id,omitempty" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
