package domain

import "time"

// Category is a node of the two-level category tree
type Category struct {
	ID            int64
	Name          string
	ParentID      *int64
	Subcategories []Category
	CreatedAt     time.Time
}
