package model

import "time"

// Category groups tours for browsing.  The slug is derived from the
// name at creation time and is unique alongside the name itself.
type Category struct {
	ID          uint64    // categories.id
	Name        string    // categories.name
	Slug        string    // categories.slug
	Description *string   // categories.description (nullable)
	CreatedAt   time.Time // categories.created_at
	UpdatedAt   time.Time // categories.updated_at
}
