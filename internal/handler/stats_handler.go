package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/middleware"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/logger"
	"github.com/singhkevin/ProductCodeScanner2-docker2/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CompanyRequest is the admin company creation payload
type CompanyRequest struct {
	Name string `json:"name" validate:"required"`
}

// GetOverview returns the dashboard counters. Company callers always get
// their own scope; admins get the global view or any company via query param.
func GetOverview(c echo.Context) error {
	log := logger.FromContext(c)
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}

	var companyID *uint
	if identity.Admin {
		if param := c.QueryParam("company_id"); param != "" {
			parsed, err := strconv.ParseUint(param, 10, 32)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid company_id"})
			}
			id := uint(parsed)
			companyID = &id
		}
	} else {
		companyID = identity.CompanyID
	}

	defer prometheus.TrackDBOperation("aggregate")(time.Now())
	overview, err := aggregator.Overview(companyID)
	if err != nil {
		log.Error("Failed to compute overview", zap.Error(err))
		return engineError(c, err)
	}

	return c.JSON(http.StatusOK, overview)
}

// GetActivity returns the most recent scan ledger entries
func GetActivity(c echo.Context) error {
	log := logger.FromContext(c)

	limit := 0
	if param := c.QueryParam("limit"); param != "" {
		limit, _ = strconv.Atoi(param)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	scans, err := aggregator.Activity(limit)
	if err != nil {
		log.Error("Failed to load scan activity", zap.Error(err))
		return engineError(c, err)
	}

	log.Info("Scan activity retrieved", zap.Int("count", len(scans)))
	return c.JSON(http.StatusOK, scans)
}

// ListCompanies returns all registered companies (admin)
func ListCompanies(c echo.Context) error {
	log := logger.FromContext(c)
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}
	if !identity.Admin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	companies, err := catalogStore.ListCompanies()
	if err != nil {
		log.Error("Failed to list companies", zap.Error(err))
		return engineError(c, err)
	}

	return c.JSON(http.StatusOK, companies)
}

// CreateCompany registers a new partner company (admin)
func CreateCompany(c echo.Context) error {
	log := logger.FromContext(c)
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}
	if !identity.Admin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
	}

	var req CompanyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	company, err := catalogStore.CreateCompany(req.Name)
	if err != nil {
		log.Error("Failed to create company", zap.String("name", req.Name), zap.Error(err))
		return engineError(c, err)
	}

	log.Info("Company created",
		zap.Uint("company_id", company.ID),
		zap.String("name", company.Name))
	return c.JSON(http.StatusCreated, company)
}
