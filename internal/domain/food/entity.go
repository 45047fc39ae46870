package food

import "time"

// FoodItem is a catalog record. Slug is derived from Name once, at creation.
type FoodItem struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Price         int       `json:"price"`
	Description   *string   `json:"description,omitempty"`
	Slug          string    `json:"slug"`
	EstimatedTime int       `json:"estimatedTime"`
	Image         *string   `json:"image,omitempty"`
	Stars         *float64  `json:"stars,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HasDescription reports whether the item carries a non-empty description.
func (f *FoodItem) HasDescription() bool {
	return f.Description != nil && *f.Description != ""
}

// YesNo is the tri-state used by the description filter.
type YesNo string

const (
	Yes YesNo = "YES"
	No  YesNo = "NO"
)

// ListFilter narrows List. The zero value matches everything.
type ListFilter struct {
	HasDescription YesNo `json:"hasDescription"`
}

// Query is the store-level filter. Empty fields are ignored; set fields are
// combined with AND.
type Query struct {
	Name           string
	Slug           string
	Type           string
	Slugs          []string
	HasDescription *bool
}
