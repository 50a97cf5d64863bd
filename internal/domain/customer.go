package domain

import "time"

// Customer customers table. ERPCode references the customer (TRDR) in the ERP.
type Customer struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	AFM       *string   `json:"afm,omitempty" db:"afm"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Address   *string   `json:"address,omitempty" db:"address"`
	City      *string   `json:"city,omitempty" db:"city"`
	Zip       *string   `json:"zip,omitempty" db:"zip"`
	ERPCode   *string   `json:"erp_code,omitempty" db:"erp_code"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CustomerFilter struct {
	Search string
	Active *bool
}
