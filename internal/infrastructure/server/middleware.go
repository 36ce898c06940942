// internal/infrastructure/server/middleware.go
package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/gptdir/core/internal/application/services"
	"github.com/gptdir/core/internal/ports"
)

// authMiddleware validates JWT tokens and requires the admin role
func (s *Server) authMiddleware(authService *services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			claims, err := authService.ValidateToken(tokenString)
			if err != nil {
				s.logger.LogSecurityEvent("invalid_token", c.RealIP(), map[string]interface{}{
					"error": err.Error(),
				})
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			if !claims.IsAdmin() {
				s.logger.LogSecurityEvent("insufficient_permissions", c.RealIP(), map[string]interface{}{
					"role":     claims.Role,
					"endpoint": c.Request().URL.Path,
				})
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}

			c.Set("user_role", claims.Role)

			return next(c)
		}
	}
}

// submitRateLimiter throttles the anonymous submission endpoints per client IP
func (s *Server) submitRateLimiter() echo.MiddlewareFunc {
	requests := s.config.Security.RateLimitRequests
	window := s.config.Security.RateLimitWindow

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(requests) / window.Seconds()),
			Burst:     requests,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, ports.ErrorResponse{Message: "Unable to identify client"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			s.logger.LogSecurityEvent("rate_limit_exceeded", identifier, map[string]interface{}{
				"endpoint": c.Request().URL.Path,
			})
			return c.JSON(http.StatusTooManyRequests, ports.ErrorResponse{Message: "Too many requests, slow down"})
		},
	})
}

// getRoleFromContext extracts the authenticated role from context
func getRoleFromContext(c echo.Context) string {
	role, ok := c.Get("user_role").(string)
	if !ok {
		return ""
	}

	return role
}
