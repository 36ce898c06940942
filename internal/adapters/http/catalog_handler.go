package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gptdir/core/internal/application/services"
	"github.com/gptdir/core/internal/domain/entities"
	"github.com/gptdir/core/internal/infrastructure/logger"
	"github.com/gptdir/core/internal/ports"
)

// CatalogHandler handles catalog requests, public and admin
type CatalogHandler struct {
	catalogService *services.CatalogService
	logger         *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *services.CatalogService, logger *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// GetCatalog returns the public catalog: display settings plus the live
// items, newest first
func (h *CatalogHandler) GetCatalog(c echo.Context) error {
	catalog, err := h.catalogService.GetCatalog(c.Request().Context())
	if err != nil {
		h.logger.Errorw("Get catalog failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not load catalog")
	}

	return c.JSON(http.StatusOK, catalog)
}

// ListPublicItems returns the live items, optionally filtered by query
func (h *CatalogHandler) ListPublicItems(c echo.Context) error {
	filter := itemFilterFromQuery(c)
	// The public listing never exposes hidden or pending items.
	live := entities.StatusLive
	filter.Status = &live

	items, err := h.catalogService.ListItems(c.Request().Context(), filter)
	if err != nil {
		h.logger.Errorw("List public items failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not load items")
	}

	return c.JSON(http.StatusOK, items)
}

// SubmitItem accepts a visitor submission; it lands in the catalog as a
// pending item awaiting review (public, rate limited)
func (h *CatalogHandler) SubmitItem(c echo.Context) error {
	var req ports.SubmitItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.catalogService.SubmitItem(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Submit item failed", "error", err)
		return domainHTTPError(err, "Could not submit item")
	}

	return c.JSON(http.StatusCreated, item)
}

// ListItems returns items across all statuses with filters (admin)
func (h *CatalogHandler) ListItems(c echo.Context) error {
	filter := itemFilterFromQuery(c)
	if raw := c.QueryParam("status"); raw != "" {
		status := entities.ItemStatus(raw)
		if !status.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid status filter")
		}
		filter.Status = &status
	}

	ctx := c.Request().Context()
	items, err := h.catalogService.ListItems(ctx, filter)
	if err != nil {
		h.logger.Errorw("List items failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not load items")
	}

	total := len(items)
	if filter.Limit > 0 || filter.Offset > 0 {
		countFilter := filter
		countFilter.Limit = 0
		countFilter.Offset = 0
		total, err = h.catalogService.CountItems(ctx, countFilter)
		if err != nil {
			h.logger.Errorw("Count items failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Could not load items")
		}
	}

	return c.JSON(http.StatusOK, ports.ItemListResponse{Items: items, Total: total})
}

// CreateItem creates a catalog item directly (admin)
func (h *CatalogHandler) CreateItem(c echo.Context) error {
	var req ports.CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.catalogService.CreateItem(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Create item failed", "error", err)
		return domainHTTPError(err, "Could not create item")
	}

	return c.JSON(http.StatusCreated, item)
}

// GetItem returns a single item by ID (admin)
func (h *CatalogHandler) GetItem(c echo.Context) error {
	id := c.Param("id")

	item, err := h.catalogService.GetItem(c.Request().Context(), id)
	if err != nil {
		return domainHTTPError(err, "Could not load item")
	}

	return c.JSON(http.StatusOK, item)
}

// UpdateItem applies a partial update to an item (admin)
func (h *CatalogHandler) UpdateItem(c echo.Context) error {
	id := c.Param("id")

	var req ports.UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.catalogService.UpdateItem(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Errorw("Update item failed", "error", err, "item_id", id)
		return domainHTTPError(err, "Could not update item")
	}

	return c.JSON(http.StatusOK, item)
}

// DeleteItem removes an item from the catalog (admin)
func (h *CatalogHandler) DeleteItem(c echo.Context) error {
	id := c.Param("id")

	if err := h.catalogService.DeleteItem(c.Request().Context(), id); err != nil {
		h.logger.Errorw("Delete item failed", "error", err, "item_id", id)
		return domainHTTPError(err, "Could not delete item")
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Item deleted"})
}

// GetSettings returns the catalog settings (admin)
func (h *CatalogHandler) GetSettings(c echo.Context) error {
	settings, err := h.catalogService.GetSettings(c.Request().Context())
	if err != nil {
		h.logger.Errorw("Get settings failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not load settings")
	}

	return c.JSON(http.StatusOK, settings)
}

// UpdateSettings replaces the catalog settings (admin)
func (h *CatalogHandler) UpdateSettings(c echo.Context) error {
	var req ports.UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	settings, err := h.catalogService.UpdateSettings(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Update settings failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not update settings")
	}

	return c.JSON(http.StatusOK, settings)
}

// itemFilterFromQuery reads the shared listing filters from the query
// string. Unparseable numbers are ignored rather than rejected.
func itemFilterFromQuery(c echo.Context) ports.ItemFilter {
	var filter ports.ItemFilter
	if v := c.QueryParam("category"); v != "" {
		filter.Category = &v
	}
	if v := c.QueryParam("tag"); v != "" {
		filter.Tag = &v
	}
	if v := c.QueryParam("q"); v != "" {
		filter.Search = &v
	}
	if c.QueryParam("featured") == "true" {
		filter.FeaturedOnly = true
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Offset = n
		}
	}
	return filter
}
