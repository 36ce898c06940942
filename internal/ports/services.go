package ports

import (
	"context"

	"github.com/gptdir/core/internal/domain/entities"
)

// AuthService interface for admin authentication operations
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// CatalogService interface for catalog and settings operations
type CatalogService interface {
	GetCatalog(ctx context.Context) (*CatalogResponse, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]entities.Item, error)
	CountItems(ctx context.Context, filter ItemFilter) (int, error)
	GetItem(ctx context.Context, id string) (*entities.Item, error)
	CreateItem(ctx context.Context, req CreateItemRequest) (*entities.Item, error)
	SubmitItem(ctx context.Context, req SubmitItemRequest) (*entities.Item, error)
	UpdateItem(ctx context.Context, id string, req UpdateItemRequest) (*entities.Item, error)
	DeleteItem(ctx context.Context, id string) error
	GetSettings(ctx context.Context) (entities.Settings, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (entities.Settings, error)
}

// LeadService interface for lead capture operations
type LeadService interface {
	SubmitLead(ctx context.Context, req SubmitLeadRequest) (*entities.Lead, error)
	ListLeads(ctx context.Context) ([]entities.Lead, error)
}

// Request/Response Types

// Auth related types
type LoginRequest struct {
	PIN string `json:"pin" validate:"required,min=4,max=64"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type Claims struct {
	Role string `json:"role"`
}

// IsAdmin reports whether the token grants access to the admin surface.
func (c *Claims) IsAdmin() bool {
	return c.Role == "admin"
}

// Item related types
type CreateItemRequest struct {
	Title      string              `json:"title" validate:"required,max=200"`
	URL        string              `json:"url" validate:"required,url,max=2048"`
	Icon       string              `json:"icon" validate:"omitempty,max=16"`
	Desc       string              `json:"desc" validate:"omitempty,max=500"`
	Categories []string            `json:"categories" validate:"omitempty,max=10,dive,max=50"`
	Tags       []string            `json:"tags" validate:"omitempty,max=10,dive,max=50"`
	Status     entities.ItemStatus `json:"status" validate:"omitempty,oneof=live hidden pending"`
	Featured   bool                `json:"featured"`
}

// SubmitItemRequest is the public submission payload. Status and featured
// are not accepted from visitors; submissions always land as pending.
type SubmitItemRequest struct {
	Title      string   `json:"title" validate:"required,max=200"`
	URL        string   `json:"url" validate:"required,url,max=2048"`
	Icon       string   `json:"icon" validate:"omitempty,max=16"`
	Desc       string   `json:"desc" validate:"omitempty,max=500"`
	Categories []string `json:"categories" validate:"omitempty,max=10,dive,max=50"`
	Tags       []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
}

// UpdateItemRequest carries a partial item update. Nil fields keep their
// stored value; id and createdAt cannot be changed.
type UpdateItemRequest struct {
	Title      *string              `json:"title" validate:"omitempty,max=200"`
	URL        *string              `json:"url" validate:"omitempty,url,max=2048"`
	Icon       *string              `json:"icon" validate:"omitempty,max=16"`
	Desc       *string              `json:"desc" validate:"omitempty,max=500"`
	Categories []string             `json:"categories" validate:"omitempty,max=10,dive,max=50"`
	Tags       []string             `json:"tags" validate:"omitempty,max=10,dive,max=50"`
	Status     *entities.ItemStatus `json:"status" validate:"omitempty,oneof=live hidden pending"`
	Featured   *bool                `json:"featured"`
}

// Settings related types
type UpdateSettingsRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

// Lead related types
type SubmitLeadRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"omitempty,max=200"`
	Message  string `json:"message" validate:"omitempty,max=2000"`
	Timezone string `json:"timezone" validate:"omitempty,max=64"`

	// UserAgent is taken from the request headers, never from the body.
	UserAgent string `json:"-"`
}

// Response types

// CatalogResponse is the public catalog payload: the display settings plus
// the live items in catalog order.
type CatalogResponse struct {
	Settings entities.Settings `json:"settings"`
	Items    []entities.Item   `json:"items"`
}

type ItemListResponse struct {
	Items []entities.Item `json:"items"`
	Total int             `json:"total"`
}

type LeadListResponse struct {
	Leads []entities.Lead `json:"leads"`
	Total int             `json:"total"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
