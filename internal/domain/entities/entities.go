package entities

import (
	"errors"
	"net/url"
)

// Common errors
var (
	ErrItemNotFound   = errors.New("item not found")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrInvalidPIN     = errors.New("invalid pin")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidItemURL = errors.New("invalid item url")
)

// DefaultTitle is the display title a fresh catalog starts with.
const DefaultTitle = "GPT Directory"

// ItemStatus controls whether an item is publicly visible.
type ItemStatus string

const (
	// StatusLive items appear in the public directory.
	StatusLive ItemStatus = "live"
	// StatusHidden items exist in the catalog but are not listed publicly.
	StatusHidden ItemStatus = "hidden"
	// StatusPending items were submitted by visitors and await review.
	StatusPending ItemStatus = "pending"
)

// Settings holds catalog-wide configuration persisted alongside the items.
type Settings struct {
	Title string `json:"title"`
}

// Item is one catalog entry: a link to a third-party GPT.
//
// ID and CreatedAt are assigned at creation and never change. Categories and
// Tags are free-text labels; duplicates are tolerated, not deduplicated.
type Item struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	Icon       string     `json:"icon"`
	Desc       string     `json:"desc"`
	Categories []string   `json:"categories"`
	Tags       []string   `json:"tags"`
	Status     ItemStatus `json:"status"`
	Featured   bool       `json:"featured"`
	CreatedAt  int64      `json:"createdAt"`
}

// Document is the full persisted catalog state: settings plus the ordered
// item list. Items are kept newest-first; inserts go to the head.
type Document struct {
	Settings Settings `json:"settings"`
	Items    []Item   `json:"items"`
}

// Lead is one user-submitted contact record. Leads are append-only; there
// are no update or delete operations.
type Lead struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Message   string `json:"message"`
	UserAgent string `json:"userAgent"`
	Timezone  string `json:"timezone"`
	CreatedAt int64  `json:"createdAt"`
}

// Leads is the full persisted lead state, serialized as a bare JSON array.
type Leads []Lead

// NewDocument returns the catalog state a fresh install starts with.
func NewDocument() Document {
	return Document{
		Settings: Settings{Title: DefaultTitle},
		Items:    []Item{},
	}
}

// NewLeads returns the lead state a fresh install starts with.
func NewLeads() Leads {
	return Leads{}
}

// Business logic methods for Item

// IsVisible reports whether the item appears in the public directory.
func (i *Item) IsVisible() bool {
	return i.Status == StatusLive
}

// Clone returns a deep copy of the item. Callers that hold an item outside
// the store's critical section must not share slice memory with the live
// document, so every read path copies.
func (i Item) Clone() Item {
	c := i
	c.Categories = append([]string(nil), i.Categories...)
	c.Tags = append([]string(nil), i.Tags...)
	return c
}

// Business logic methods for Document

// ItemIndex returns the position of the item with the given id, or -1.
func (d *Document) ItemIndex(id string) int {
	for i := range d.Items {
		if d.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// InsertItem places a new item at the head of the list (newest-first).
func (d *Document) InsertItem(item Item) {
	d.Items = append([]Item{item}, d.Items...)
}

// RemoveItem deletes the item with the given id. Returns false if absent.
func (d *Document) RemoveItem(id string) bool {
	idx := d.ItemIndex(id)
	if idx < 0 {
		return false
	}
	d.Items = append(d.Items[:idx], d.Items[idx+1:]...)
	return true
}

// VisibleItems returns deep copies of the items with live status, in
// catalog order (newest first).
func (d *Document) VisibleItems() []Item {
	out := make([]Item, 0, len(d.Items))
	for i := range d.Items {
		if d.Items[i].IsVisible() {
			out = append(out, d.Items[i].Clone())
		}
	}
	return out
}

// Clone returns a deep copy of the whole document.
func (d *Document) Clone() Document {
	c := Document{Settings: d.Settings, Items: make([]Item, 0, len(d.Items))}
	for i := range d.Items {
		c.Items = append(c.Items, d.Items[i].Clone())
	}
	return c
}

// Clone returns a deep copy of the lead list.
func (l Leads) Clone() Leads {
	return append(Leads{}, l...)
}

// Utility methods

// IsValid reports whether the status is one of live, hidden, pending.
func (s ItemStatus) IsValid() bool {
	switch s {
	case StatusLive, StatusHidden, StatusPending:
		return true
	default:
		return false
	}
}

// ValidateItemURL checks that a submitted link is an absolute http(s) URL
// with a host. Anything else is rejected before a mutation is built.
func ValidateItemURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidItemURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidItemURL
	}
	return nil
}
