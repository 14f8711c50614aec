package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/catalog"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/middleware"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/model"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/logger"
	"github.com/singhkevin/ProductCodeScanner2-docker2/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ProductRequest defines the structure for product creation requests
type ProductRequest struct {
	CompanyID   uint   `json:"company_id"`
	Name        string `json:"name" validate:"required"`
	SKU         string `json:"sku" validate:"required"`
	BatchNumber string `json:"batch_number"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
	CodeType    string `json:"code_type" validate:"required,oneof=alphanumeric uuid"`
}

func mintResponse(c echo.Context, product *model.Product) error {
	codes := make([]string, len(product.Codes))
	for i, code := range product.Codes {
		codes[i] = code.Value
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"product_id": product.ID,
		"product":    product,
		"codes":      codes,
	})
}

// CreateProduct handles a company's manual product add. Codes are minted for
// the caller's own company only.
func CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Product request failed validation", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	// Company callers mint for their own company; admins may name one
	companyID := req.CompanyID
	if !identity.Admin {
		if identity.CompanyID == nil {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "caller has no company scope"})
		}
		companyID = *identity.CompanyID
	}
	if !identity.CanActFor(companyID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "caller may not mint for this company"})
	}

	defer prometheus.TrackDBOperation("mint")(time.Now())
	product, err := catalogStore.Mint(catalog.MintSpec{
		CompanyID:   companyID,
		Name:        req.Name,
		SKU:         req.SKU,
		BatchNumber: req.BatchNumber,
		Description: req.Description,
		Quantity:    req.Quantity,
		Kind:        req.CodeType,
	})
	if err != nil {
		log.Error("Failed to mint product codes",
			zap.String("sku", req.SKU),
			zap.Error(err))
		return engineError(c, err)
	}

	prometheus.RecordMintedCodes(req.CodeType, len(product.Codes))
	log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("sku", product.SKU),
		zap.Int("codes", len(product.Codes)))
	return mintResponse(c, product)
}

// GenerateProducts handles the admin batch-generation action for any company
func GenerateProducts(c echo.Context) error {
	log := logger.FromContext(c)
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}
	if !identity.Admin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.CompanyID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "company_id is required"})
	}

	defer prometheus.TrackDBOperation("mint")(time.Now())
	product, err := catalogStore.Mint(catalog.MintSpec{
		CompanyID:   req.CompanyID,
		Name:        req.Name,
		SKU:         req.SKU,
		BatchNumber: req.BatchNumber,
		Description: req.Description,
		Quantity:    req.Quantity,
		Kind:        req.CodeType,
	})
	if err != nil {
		log.Error("Failed to generate products",
			zap.Uint("company_id", req.CompanyID),
			zap.Error(err))
		return engineError(c, err)
	}

	prometheus.RecordMintedCodes(req.CodeType, len(product.Codes))
	log.Info("Products generated",
		zap.Uint("product_id", product.ID),
		zap.Uint("company_id", req.CompanyID),
		zap.Int("codes", len(product.Codes)))
	return mintResponse(c, product)
}

// ListCompanyProducts returns the caller's products with their codes. Admins
// may inspect any company via the company_id query parameter.
func ListCompanyProducts(c echo.Context) error {
	log := logger.FromContext(c)
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}

	var companyID uint
	if identity.Admin {
		param := c.QueryParam("company_id")
		if param == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "company_id is required"})
		}
		parsed, err := strconv.ParseUint(param, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid company_id"})
		}
		companyID = uint(parsed)
	} else {
		companyID = *identity.CompanyID
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	products, err := catalogStore.ListProducts(companyID)
	if err != nil {
		log.Error("Failed to list products",
			zap.Uint("company_id", companyID),
			zap.Error(err))
		return engineError(c, err)
	}

	log.Info("Products retrieved successfully", zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, products)
}
