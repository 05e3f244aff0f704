package model

import "time"

// Item represents a garment listing. Ownership is mutable: a completed
// exchange reassigns OwnerID, a completed point swap consumes the item.
type Item struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	Size        string     `json:"size"`
	ImageURL    string     `json:"image_url,omitempty"`
	PointsCost  int        `json:"points_cost"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`

	// Joined field (not always populated).
	OwnerName string `json:"owner_name,omitempty"`
}

// Item categories.
const (
	CategoryMale   = "male"
	CategoryFemale = "female"
	CategoryKids   = "kids"
)

// Item sizes.
const (
	SizeS  = "S"
	SizeM  = "M"
	SizeL  = "L"
	SizeXL = "XL"
)

// ValidCategory reports whether c is a known item category.
func ValidCategory(c string) bool {
	return c == CategoryMale || c == CategoryFemale || c == CategoryKids
}

// ValidSize reports whether s is a known item size.
func ValidSize(s string) bool {
	return s == SizeS || s == SizeM || s == SizeL || s == SizeXL
}
