package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/codegen"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/engine"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/model"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/config"
	"github.com/singhkevin/ProductCodeScanner2-docker2/prometheus"

	"gorm.io/gorm"
)

// Store owns the durable catalog of companies, products and codes, and the
// uniqueness invariant on code values.
type Store struct {
	db  *gorm.DB
	cfg config.CodesConfig

	// generate produces candidate code values; swapped out in tests
	generate func(kind string) (string, error)
}

// NewStore creates a catalog store backed by the given database
func NewStore(db *gorm.DB, cfg config.CodesConfig) *Store {
	return &Store{db: db, cfg: cfg, generate: codegen.Generate}
}

// MintSpec describes one product and the batch of codes to issue for it
type MintSpec struct {
	CompanyID   uint
	Name        string
	SKU         string
	BatchNumber string
	Description string
	Quantity    int
	Kind        string
}

func (m MintSpec) validate(maxQuantity int) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: product name is required", engine.ErrValidation)
	}
	if strings.TrimSpace(m.SKU) == "" {
		return fmt.Errorf("%w: product sku is required", engine.ErrValidation)
	}
	if m.CompanyID == 0 {
		return fmt.Errorf("%w: company id is required", engine.ErrValidation)
	}
	if m.Quantity < 1 || m.Quantity > maxQuantity {
		return fmt.Errorf("%w: quantity must be between 1 and %d", engine.ErrValidation, maxQuantity)
	}
	if m.Kind != model.CodeKindAlphanumeric && m.Kind != model.CodeKindUUID {
		return fmt.Errorf("%w: unknown code kind %q", engine.ErrValidation, m.Kind)
	}
	return nil
}

// Mint creates the product and its full batch of codes in one transaction.
// The batch is all or nothing: if the collision retry budget runs out the
// product is rolled back too.
func (s *Store) Mint(spec MintSpec) (*model.Product, error) {
	var product *model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		product, txErr = s.MintInTx(tx, spec)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// MintInTx mints inside an already-open transaction. The approval pipeline
// uses this so an entire bulk request commits or rolls back as one unit.
func (s *Store) MintInTx(tx *gorm.DB, spec MintSpec) (*model.Product, error) {
	if err := spec.validate(s.cfg.MaxBatchQuantity); err != nil {
		return nil, err
	}

	var company model.Company
	if err := tx.First(&company, spec.CompanyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: company %d", engine.ErrNotFound, spec.CompanyID)
		}
		return nil, err
	}

	product := model.Product{
		CompanyID:   spec.CompanyID,
		Name:        spec.Name,
		SKU:         spec.SKU,
		BatchNumber: spec.BatchNumber,
		Description: spec.Description,
		Quantity:    spec.Quantity,
	}
	if err := tx.Create(&product).Error; err != nil {
		return nil, err
	}

	for i := 0; i < spec.Quantity; i++ {
		if err := s.mintCode(tx, product.ID, spec.Kind); err != nil {
			return nil, err
		}
	}

	// Insertion order is issuance order
	if err := tx.Where("product_id = ?", product.ID).Order("id").Find(&product.Codes).Error; err != nil {
		return nil, err
	}
	product.Company = &company
	return &product, nil
}

// mintCode inserts one freshly generated code, regenerating on collision with
// the unique index. Each attempt runs in a savepoint so a rejected insert does
// not poison the surrounding transaction.
func (s *Store) mintCode(tx *gorm.DB, productID uint, kind string) error {
	for attempt := 0; attempt <= s.cfg.CollisionRetries; attempt++ {
		value, err := s.generate(kind)
		if err != nil {
			return err
		}

		code := model.Code{
			Value:     value,
			ProductID: productID,
			Status:    model.CodeStatusIssued,
		}
		err = tx.Transaction(func(inner *gorm.DB) error {
			return inner.Create(&code).Error
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if prometheus.CodeCollisionsCounter != nil {
				prometheus.CodeCollisionsCounter.Inc()
			}
			continue
		}
		return err
	}
	return fmt.Errorf("%w: no unique code value after %d attempts", engine.ErrCodeConflict, s.cfg.CollisionRetries+1)
}

// CreateCompany registers a new partner company
func (s *Store) CreateCompany(name string) (*model.Company, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: company name is required", engine.ErrValidation)
	}
	company := model.Company{Name: name}
	if err := s.db.Create(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: company %q already exists", engine.ErrValidation, name)
		}
		return nil, err
	}
	return &company, nil
}

// GetCompany returns a company by ID
func (s *Store) GetCompany(id uint) (*model.Company, error) {
	var company model.Company
	if err := s.db.First(&company, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: company %d", engine.ErrNotFound, id)
		}
		return nil, err
	}
	return &company, nil
}

// ListCompanies returns all registered companies
func (s *Store) ListCompanies() ([]model.Company, error) {
	var companies []model.Company
	if err := s.db.Order("name").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// ListProducts returns a company's products with their codes, newest first
func (s *Store) ListProducts(companyID uint) ([]model.Product, error) {
	var products []model.Product
	err := s.db.Preload("Codes", func(db *gorm.DB) *gorm.DB {
		return db.Order("codes.id")
	}).Where("company_id = ?", companyID).Order("created_at DESC").Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
