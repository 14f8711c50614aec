package handler

import (
	"errors"
	"net/http"

	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/approval"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/catalog"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/engine"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/stats"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/verify"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/config"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Engine singletons used by the handlers, set up once at startup
var (
	db           *gorm.DB
	catalogStore *catalog.Store
	pipeline     *approval.Pipeline
	verifier     *verify.Verifier
	aggregator   *stats.Aggregator
)

// Init wires the handlers to a database and configuration
func Init(database *gorm.DB, cfg *config.Config) {
	db = database
	catalogStore = catalog.NewStore(database, cfg.Codes)
	pipeline = approval.NewPipeline(database, catalogStore, cfg.Codes)
	verifier = verify.NewVerifier(database)
	aggregator = stats.NewAggregator(database)
}

// Validator adapts go-playground/validator to echo's Validator interface
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates the request payload validator
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate implements echo.Validator
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// engineError translates an engine error into the matching HTTP response.
// Anything outside the engine taxonomy is an infrastructure failure the
// caller should retry, reported without internal detail.
func engineError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, engine.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrCodeConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable, please retry"})
	}
}

// HealthCheck handles the health check endpoint
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": "guardhub",
	})
}
