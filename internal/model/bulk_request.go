package model

import (
	"time"
)

// BulkRequest status values. Approved and rejected are terminal.
const (
	BulkStatusPending  = "pending"
	BulkStatusApproved = "approved"
	BulkStatusRejected = "rejected"
)

// BulkRequest represents a company-submitted batch of candidate products
// waiting for an admin decision. Rows become products and codes only on
// approval; until then the request owns them.
type BulkRequest struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	CompanyID uint             `json:"company_id" gorm:"index;not null"`
	Company   *Company         `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Filename  string           `json:"filename" gorm:"type:varchar(255)"`
	RowCount  int              `json:"row_count" gorm:"not null"`
	Status    string           `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Rows      []BulkRequestRow `json:"rows,omitempty" gorm:"foreignKey:BulkRequestID"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// BulkRequestRow is one parsed line of an uploaded bulk file
type BulkRequestRow struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	BulkRequestID uint   `json:"bulk_request_id" gorm:"index;not null"`
	Name          string `json:"name" gorm:"type:varchar(255);not null"`
	SKU           string `json:"sku" gorm:"type:varchar(100);not null"`
	BatchNumber   string `json:"batch_number" gorm:"type:varchar(100)"`
	Quantity      int    `json:"quantity" gorm:"not null"`
}
