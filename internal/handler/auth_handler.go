package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/middleware"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/model"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/jwtutil"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/logger"
	"github.com/singhkevin/ProductCodeScanner2-docker2/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a company account. The company is created on the
// fly when the name is new.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	CompanyName string `json:"company_name" validate:"required"`
}

// Login authenticates a user and hands out the access gate token
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.AuthAttemptsCounter.Inc()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	// Find user in database - track DB operation duration
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := db.Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Error("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Resolve company name for company-scoped callers
	var companyName string
	if user.CompanyID != nil {
		if company, err := catalogStore.GetCompany(*user.CompanyID); err == nil {
			companyName = company.Name
		}
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID, user.Role, user.CompanyID, companyName)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("role", user.Role))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": echo.Map{
			"id":           user.ID,
			"email":        user.Email,
			"role":         user.Role,
			"company_id":   user.CompanyID,
			"company_name": companyName,
		},
	})
}

// Register creates a company-scoped dashboard account
func Register(c echo.Context) error {
	log := logger.FromContext(c)

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse register request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and company name are required"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	var user model.User
	err = db.Transaction(func(tx *gorm.DB) error {
		// Reuse the company when the name is already registered
		var company model.Company
		err := tx.Where("name = ?", req.CompanyName).First(&company).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			company = model.Company{Name: req.CompanyName}
			err = tx.Create(&company).Error
		}
		if err != nil {
			return err
		}

		user = model.User{
			Email:     req.Email,
			Password:  string(hashed),
			Role:      model.RoleCompany,
			CompanyID: &company.ID,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Warn("Email already registered", zap.String("email", req.Email))
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		log.Error("Failed to create user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("User registered",
		zap.String("email", user.Email),
		zap.Uint("company_id", *user.CompanyID))

	return c.JSON(http.StatusCreated, echo.Map{
		"id":         user.ID,
		"email":      user.Email,
		"role":       user.Role,
		"company_id": user.CompanyID,
	})
}

// VerifyToken echoes the identity behind a valid bearer token. The dashboard
// uses it to restore a session.
func VerifyToken(c echo.Context) error {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user_id":    identity.UserID,
		"admin":      identity.Admin,
		"company_id": identity.CompanyID,
		"email":      c.Get("email"),
	})
}
