package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gptdir/core/internal/application/services"
	"github.com/gptdir/core/internal/domain/entities"
	"github.com/gptdir/core/internal/infrastructure/logger"
	"github.com/gptdir/core/internal/ports"
)

// AuthHandler handles admin authentication requests
type AuthHandler struct {
	authService *services.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login exchanges the admin PIN for a bearer token
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidPIN) {
			h.logger.LogSecurityEvent("admin_login_failed", c.RealIP(), nil)
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid PIN")
		}
		h.logger.Errorw("Login failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Login failed")
	}

	return c.JSON(http.StatusOK, response)
}

// LeadHandler handles lead capture requests
type LeadHandler struct {
	leadService *services.LeadService
	logger      *logger.Logger
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadService *services.LeadService, logger *logger.Logger) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		logger:      logger,
	}
}

// SubmitLead records a visitor contact (public, rate limited)
func (h *LeadHandler) SubmitLead(c echo.Context) error {
	var req ports.SubmitLeadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	req.UserAgent = c.Request().UserAgent()

	lead, err := h.leadService.SubmitLead(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Submit lead failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not save lead")
	}

	return c.JSON(http.StatusCreated, lead)
}

// ListLeads returns every captured lead, newest first (admin)
func (h *LeadHandler) ListLeads(c echo.Context) error {
	leads, err := h.leadService.ListLeads(c.Request().Context())
	if err != nil {
		h.logger.Errorw("List leads failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not load leads")
	}

	return c.JSON(http.StatusOK, ports.LeadListResponse{Leads: leads, Total: len(leads)})
}

// domainHTTPError maps service errors onto transport codes: rejected input
// is 400, a missing item 404, everything else a server-side failure
// (usually a failed persist).
func domainHTTPError(err error, fallback string) *echo.HTTPError {
	switch {
	case errors.Is(err, entities.ErrItemNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Item not found")
	case errors.Is(err, entities.ErrInvalidItemURL):
		return echo.NewHTTPError(http.StatusBadRequest, "Item URL must be an absolute http(s) URL")
	case errors.Is(err, entities.ErrInvalidStatus):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid item status")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, fallback)
	}
}
