package domain

import "time"

// Category categories table; ParentID builds a tree.
type Category struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	ParentID  *string   `json:"parent_id" db:"parent_id"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CategoryNode a category with its children, for the tree endpoint.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}
