package handler

import (
	"net/http"
	"time"

	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/model"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/logger"
	"github.com/singhkevin/ProductCodeScanner2-docker2/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// VerifyRequest is the public verification payload sent by the scanner app
type VerifyRequest struct {
	Code      string  `json:"code" validate:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Caller-facing verification messages
const (
	msgGenuine = "Genuine Item. This code was verified for the first time."
	msgRepeat  = "This code has already been scanned. The item may be a counterfeit copy."
	msgUnknown = "This code is not recognized. The item could not be verified."
)

// VerifyScan handles a public verification scan. Every call appends to the
// scan ledger; only the first scan of a code ever reports success.
func VerifyScan(c echo.Context) error {
	log := logger.FromContext(c)

	var req VerifyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}

	defer prometheus.TrackDBOperation("verify")(time.Now())
	result, err := verifier.Verify(req.Code, req.Latitude, req.Longitude)
	if err != nil {
		log.Error("Verification failed", zap.Error(err))
		return engineError(c, err)
	}

	prometheus.RecordScanOutcome(result.Outcome)
	log.Info("Scan verified",
		zap.String("outcome", result.Outcome),
		zap.Float64("latitude", req.Latitude),
		zap.Float64("longitude", req.Longitude))

	switch result.Outcome {
	case model.ScanOutcomeGenuine:
		var companyName string
		if result.Product.Company != nil {
			companyName = result.Product.Company.Name
		}
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": msgGenuine,
			"product": echo.Map{
				"name":        result.Product.Name,
				"company":     companyName,
				"batchNumber": result.Product.BatchNumber,
			},
		})
	case model.ScanOutcomeRepeat:
		return c.JSON(http.StatusOK, echo.Map{
			"success": false,
			"message": msgRepeat,
		})
	default:
		// Unknown codes reveal nothing about any product
		return c.JSON(http.StatusOK, echo.Map{
			"success": false,
			"message": msgUnknown,
		})
	}
}

// Hotspots returns every geolocated fraud signal for the map
func Hotspots(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	hotspots, err := aggregator.Hotspots()
	if err != nil {
		log.Error("Failed to aggregate hotspots", zap.Error(err))
		return engineError(c, err)
	}

	log.Info("Hotspots retrieved", zap.Int("count", len(hotspots)))
	return c.JSON(http.StatusOK, hotspots)
}
