package approval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/catalog"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/engine"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/model"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/config"

	"gorm.io/gorm"
)

// Pipeline is the state machine for bulk submission requests. A request is
// created pending by a company, and exactly one admin decision moves it to a
// terminal state. Approval mints products and codes; rejection only flips
// the status.
type Pipeline struct {
	db      *gorm.DB
	catalog *catalog.Store
	cfg     config.CodesConfig
}

// NewPipeline creates an approval pipeline over the given catalog store
func NewPipeline(db *gorm.DB, store *catalog.Store, cfg config.CodesConfig) *Pipeline {
	return &Pipeline{db: db, catalog: store, cfg: cfg}
}

// SubmitRow is one candidate product line from an uploaded bulk file
type SubmitRow struct {
	Name        string
	SKU         string
	BatchNumber string
	Quantity    int
}

func (r SubmitRow) validate(index, maxQuantity int) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: row %d: product name is required", engine.ErrValidation, index+1)
	}
	if strings.TrimSpace(r.SKU) == "" {
		return fmt.Errorf("%w: row %d: product sku is required", engine.ErrValidation, index+1)
	}
	if r.Quantity < 1 || r.Quantity > maxQuantity {
		return fmt.Errorf("%w: row %d: quantity must be between 1 and %d", engine.ErrValidation, index+1, maxQuantity)
	}
	return nil
}

// Submit creates a new pending bulk request for the caller's company. Only
// the owning company (or an admin) may submit, and every row is validated
// before anything is written.
func (p *Pipeline) Submit(identity engine.Identity, companyID uint, filename string, rows []SubmitRow) (*model.BulkRequest, error) {
	if !identity.CanActFor(companyID) {
		return nil, fmt.Errorf("%w: caller may not submit for company %d", engine.ErrForbidden, companyID)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: bulk request needs at least one row", engine.ErrValidation)
	}
	for i, row := range rows {
		if err := row.validate(i, p.cfg.MaxBatchQuantity); err != nil {
			return nil, err
		}
	}

	request := model.BulkRequest{
		CompanyID: companyID,
		Filename:  filename,
		RowCount:  len(rows),
		Status:    model.BulkStatusPending,
	}
	for _, row := range rows {
		request.Rows = append(request.Rows, model.BulkRequestRow{
			Name:        row.Name,
			SKU:         row.SKU,
			BatchNumber: row.BatchNumber,
			Quantity:    row.Quantity,
		})
	}

	if err := p.db.Create(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns bulk requests visible to the caller: all of them for admins,
// only the caller's own for company identities.
func (p *Pipeline) List(identity engine.Identity) ([]model.BulkRequest, error) {
	query := p.db.Preload("Rows").Preload("Company").Order("created_at DESC")
	if !identity.Admin {
		if identity.CompanyID == nil {
			return nil, fmt.Errorf("%w: caller has no company scope", engine.ErrForbidden)
		}
		query = query.Where("company_id = ?", *identity.CompanyID)
	}

	var requests []model.BulkRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// Get returns one bulk request if the caller may see it
func (p *Pipeline) Get(identity engine.Identity, id uint) (*model.BulkRequest, error) {
	var request model.BulkRequest
	err := p.db.Preload("Rows").Preload("Company").First(&request, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: bulk request %d", engine.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if !identity.CanActFor(request.CompanyID) {
		return nil, fmt.Errorf("%w: bulk request %d belongs to another company", engine.ErrForbidden, request.CompanyID)
	}
	return &request, nil
}

// Approve moves a pending request to approved and mints a product plus codes
// for every row, all in one transaction. Any failure, including an exhausted
// collision budget, rolls the whole decision back and leaves the request
// pending so the admin can retry.
func (p *Pipeline) Approve(identity engine.Identity, id uint) (*model.BulkRequest, error) {
	return p.decide(identity, id, model.BulkStatusApproved)
}

// Reject moves a pending request to rejected. No products or codes are
// created; only the status and audit timestamp change.
func (p *Pipeline) Reject(identity engine.Identity, id uint) (*model.BulkRequest, error) {
	return p.decide(identity, id, model.BulkStatusRejected)
}

func (p *Pipeline) decide(identity engine.Identity, id uint, target string) (*model.BulkRequest, error) {
	if !identity.Admin {
		return nil, fmt.Errorf("%w: only admins decide bulk requests", engine.ErrForbidden)
	}

	var request model.BulkRequest
	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Rows").First(&request, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: bulk request %d", engine.ErrNotFound, id)
			}
			return err
		}

		// Compare-and-swap on the status column so two concurrent decisions
		// cannot both win.
		flip := tx.Model(&model.BulkRequest{}).
			Where("id = ? AND status = ?", id, model.BulkStatusPending).
			Update("status", target)
		if flip.Error != nil {
			return flip.Error
		}
		if flip.RowsAffected == 0 {
			return fmt.Errorf("%w: bulk request %d is already %s", engine.ErrInvalidTransition, id, request.Status)
		}

		if target == model.BulkStatusApproved {
			for _, row := range request.Rows {
				// Every approved row becomes a fresh product, even when the
				// SKU already exists for the company
				_, err := p.catalog.MintInTx(tx, catalog.MintSpec{
					CompanyID:   request.CompanyID,
					Name:        row.Name,
					SKU:         row.SKU,
					BatchNumber: row.BatchNumber,
					Quantity:    row.Quantity,
					Kind:        model.CodeKindUUID,
				})
				if err != nil {
					return err
				}
			}
		}

		return tx.First(&request, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}
