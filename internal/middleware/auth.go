package middleware

import (
	"net/http"
	"strings"

	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/engine"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/model"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/jwtutil"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const identityKey = "identity"

// AuthMiddleware validates the JWT token and resolves the caller's identity
// once at the boundary. Handlers and engine code read the typed identity from
// the context and never look at the token again.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		identity := engine.Identity{
			UserID:    claims.UserID,
			Admin:     claims.Role == model.RoleAdmin,
			CompanyID: claims.CompanyID,
		}

		// Company callers must actually carry a company scope
		if !identity.Admin && identity.CompanyID == nil {
			log.Warn("JWT token does not contain company_id", zap.Uint("user_id", claims.UserID))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "caller has no company scope"})
		}

		c.Set(identityKey, identity)
		c.Set("email", claims.Email)

		log.Info("Request authenticated",
			zap.Uint("user_id", claims.UserID),
			zap.Bool("admin", identity.Admin))

		// Token is valid, proceed with the request
		return next(c)
	}
}

// IdentityFromContext retrieves the resolved caller identity from the context
func IdentityFromContext(c echo.Context) (engine.Identity, bool) {
	identity, ok := c.Get(identityKey).(engine.Identity)
	return identity, ok
}
