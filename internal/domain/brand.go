package domain

import "time"

// Brand brands table, ordered by SortOrder in the admin table.
type Brand struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Code      *string   `json:"code,omitempty" db:"code"`
	Website   *string   `json:"website,omitempty" db:"website"`
	LogoURL   *string   `json:"logo_url,omitempty" db:"logo_url"`
	ERPCode   *string   `json:"erp_code,omitempty" db:"erp_code"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
