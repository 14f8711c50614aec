package model

import (
	"time"
)

// Scan outcome values. Everything except genuine is a fraud signal.
const (
	ScanOutcomeGenuine     = "genuine"
	ScanOutcomeRepeat      = "repeat"
	ScanOutcomeUnknownCode = "unknown_code"
)

// Scan is one entry of the append-only scan ledger. Scans reference codes by
// value only, so a scan of a code that was never minted is still recorded.
// IDs are snowflakes so the ledger stays time ordered without a sequence.
type Scan struct {
	ID        int64     `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	CodeValue string    `json:"code_value" gorm:"type:varchar(64);not null;index"`
	Outcome   string    `json:"outcome" gorm:"type:varchar(20);not null;index"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}
