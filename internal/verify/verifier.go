package verify

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/engine"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/model"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/idgen"

	"gorm.io/gorm"
)

// Result is the engine's answer to one verification scan. Product is set only
// for a genuine outcome; fraud outcomes never expose product metadata.
type Result struct {
	Outcome string
	Product *model.Product
}

// Genuine reports whether the scan observed the first valid scan of the code
func (r *Result) Genuine() bool {
	return r.Outcome == model.ScanOutcomeGenuine
}

// Verifier decides genuine or fraud for incoming scans and appends every
// decision to the scan ledger.
type Verifier struct {
	db *gorm.DB
}

// NewVerifier creates a verifier backed by the given database
func NewVerifier(db *gorm.DB) *Verifier {
	return &Verifier{db: db}
}

// Verify classifies one scan of a code at a location. The status flip and the
// ledger write commit together or not at all, and exactly one concurrent scan
// of a fresh code can ever observe a genuine outcome: the transition is a
// guarded UPDATE on the status column, so the database serializes racing
// scanners per code row.
func (v *Verifier) Verify(codeValue string, latitude, longitude float64) (*Result, error) {
	codeValue = strings.TrimSpace(codeValue)
	if codeValue == "" {
		return nil, fmt.Errorf("%w: code is required", engine.ErrValidation)
	}

	result := &Result{}
	err := v.db.Transaction(func(tx *gorm.DB) error {
		var code model.Code
		err := tx.Where("value = ?", codeValue).First(&code).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.Outcome = model.ScanOutcomeUnknownCode
			return appendScan(tx, codeValue, result.Outcome, latitude, longitude)
		}
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		flip := tx.Model(&model.Code{}).
			Where("id = ? AND status = ?", code.ID, model.CodeStatusIssued).
			Updates(map[string]interface{}{
				"status":         model.CodeStatusScanned,
				"first_scan_at":  now,
				"first_scan_lat": latitude,
				"first_scan_lng": longitude,
			})
		if flip.Error != nil {
			return flip.Error
		}

		if flip.RowsAffected == 0 {
			// Someone already claimed the first scan, now or earlier
			result.Outcome = model.ScanOutcomeRepeat
			return appendScan(tx, codeValue, result.Outcome, latitude, longitude)
		}

		result.Outcome = model.ScanOutcomeGenuine
		var product model.Product
		if err := tx.Preload("Company").First(&product, code.ProductID).Error; err != nil {
			return err
		}
		result.Product = &product
		return appendScan(tx, codeValue, result.Outcome, latitude, longitude)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// appendScan writes one ledger entry inside the verification transaction
func appendScan(tx *gorm.DB, codeValue, outcome string, latitude, longitude float64) error {
	scan := model.Scan{
		ID:        idgen.GenerateID(),
		CodeValue: codeValue,
		Outcome:   outcome,
		Latitude:  latitude,
		Longitude: longitude,
	}
	return tx.Create(&scan).Error
}
