package model

import (
	"time"

	"gorm.io/gorm"
)

// Code status values. A code flips from issued to scanned exactly once.
const (
	CodeStatusIssued  = "issued"
	CodeStatusScanned = "scanned"
)

// Code kinds accepted at mint time
const (
	CodeKindAlphanumeric = "alphanumeric"
	CodeKindUUID         = "uuid"
)

// Product represents a registered product that codes are issued for
type Product struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	CompanyID   uint           `json:"company_id" gorm:"index;not null"`
	Company     *Company       `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	SKU         string         `json:"sku" gorm:"type:varchar(100);not null;index"`
	BatchNumber string         `json:"batch_number" gorm:"type:varchar(100)"`
	Description string         `json:"description" gorm:"type:text"`
	Quantity    int            `json:"quantity" gorm:"not null"`
	Codes       []Code         `json:"codes,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// Code represents a single authentication code bound to one physical unit.
// The unique index on Value is the uniqueness authority for the whole system;
// the generator is never trusted to be collision free.
type Code struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Value          string     `json:"value" gorm:"type:varchar(64);not null;uniqueIndex"`
	ProductID      uint       `json:"product_id" gorm:"index;not null"`
	Status         string     `json:"status" gorm:"type:varchar(20);not null;default:'issued'"`
	FirstScanAt    *time.Time `json:"first_scan_at,omitempty"`
	FirstScanLat   *float64   `json:"first_scan_lat,omitempty"`
	FirstScanLng   *float64   `json:"first_scan_lng,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
