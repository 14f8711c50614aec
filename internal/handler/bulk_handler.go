package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/bulkfile"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/middleware"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/logger"
	"github.com/singhkevin/ProductCodeScanner2-docker2/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// BulkDecisionRequest is the admin approve/reject payload
type BulkDecisionRequest struct {
	Action string `json:"action" validate:"required,oneof=APPROVE REJECT"`
}

// UploadBulk accepts an xlsx upload of candidate products and files a pending
// bulk request for the caller's company.
func UploadBulk(c echo.Context) error {
	log := logger.FromContext(c)
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}
	if identity.CompanyID == nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "bulk uploads need a company scope"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Warn("Bulk upload without file", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not read uploaded file"})
	}
	defer file.Close()

	rows, err := bulkfile.Parse(file)
	if err != nil {
		log.Warn("Bulk file rejected",
			zap.String("filename", fileHeader.Filename),
			zap.Error(err))
		return engineError(c, err)
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	request, err := pipeline.Submit(identity, *identity.CompanyID, fileHeader.Filename, rows)
	if err != nil {
		log.Error("Failed to file bulk request", zap.Error(err))
		return engineError(c, err)
	}

	prometheus.RecordBulkRequest(request.Status)
	log.Info("Bulk request filed",
		zap.Uint("request_id", request.ID),
		zap.Uint("company_id", request.CompanyID),
		zap.Int("rows", request.RowCount))

	return c.JSON(http.StatusCreated, echo.Map{
		"id":      request.ID,
		"status":  request.Status,
		"message": strconv.Itoa(request.RowCount) + " products submitted for approval.",
	})
}

// ListBulkRequests returns the requests visible to the caller
func ListBulkRequests(c echo.Context) error {
	log := logger.FromContext(c)
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	requests, err := pipeline.List(identity)
	if err != nil {
		log.Error("Failed to list bulk requests", zap.Error(err))
		return engineError(c, err)
	}

	log.Info("Bulk requests retrieved", zap.Int("count", len(requests)))
	return c.JSON(http.StatusOK, requests)
}

// GetBulkRequest returns one request with its rows, if the caller may see it
func GetBulkRequest(c echo.Context) error {
	log := logger.FromContext(c)
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	request, err := pipeline.Get(identity, uint(id))
	if err != nil {
		log.Error("Failed to load bulk request",
			zap.Uint64("request_id", id),
			zap.Error(err))
		return engineError(c, err)
	}

	return c.JSON(http.StatusOK, request)
}

// HandleBulkRequest applies an admin decision to one pending request
func HandleBulkRequest(c echo.Context) error {
	log := logger.FromContext(c)
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	var req BulkDecisionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "action must be APPROVE or REJECT"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	decide := pipeline.Reject
	if strings.EqualFold(req.Action, "APPROVE") {
		decide = pipeline.Approve
	}

	decided, err := decide(identity, uint(id))
	if err != nil {
		log.Error("Bulk request decision failed",
			zap.Uint64("request_id", id),
			zap.String("action", req.Action),
			zap.Error(err))
		return engineError(c, err)
	}

	prometheus.RecordBulkRequest(decided.Status)
	log.Info("Bulk request decided",
		zap.Uint("request_id", decided.ID),
		zap.String("status", decided.Status))

	return c.JSON(http.StatusOK, echo.Map{
		"id":     decided.ID,
		"status": decided.Status,
	})
}
