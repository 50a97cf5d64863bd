package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LeadStatus string

const (
	LeadNew       LeadStatus = "NEW"
	LeadContacted LeadStatus = "CONTACTED"
	LeadQualified LeadStatus = "QUALIFIED"
	LeadProposal  LeadStatus = "PROPOSAL"
	LeadWon       LeadStatus = "WON"
	LeadLost      LeadStatus = "LOST"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadQualified, LeadProposal, LeadWon, LeadLost:
		return true
	}
	return false
}

// Closed reports whether the lead reached a terminal status.
func (s LeadStatus) Closed() bool { return s == LeadWon || s == LeadLost }

// Lead leads table. LeadNumber is assigned by the database on insert.
type Lead struct {
	ID             string              `json:"id" db:"id"`
	LeadNumber     string              `json:"lead_number" db:"lead_number"`
	Title          string              `json:"title" db:"title"`
	CustomerID     *string             `json:"customer_id,omitempty" db:"customer_id"`
	ContactName    *string             `json:"contact_name,omitempty" db:"contact_name"`
	ContactEmail   *string             `json:"contact_email,omitempty" db:"contact_email"`
	ContactPhone   *string             `json:"contact_phone,omitempty" db:"contact_phone"`
	Source         *string             `json:"source,omitempty" db:"source"`
	Status         LeadStatus          `json:"status" db:"status"`
	OwnerID        *string             `json:"owner_id,omitempty" db:"owner_id"`
	Notes          *string             `json:"notes,omitempty" db:"notes"`
	EstimatedValue decimal.NullDecimal `json:"estimated_value" db:"estimated_value"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" db:"updated_at"`
}

type LeadFilter struct {
	Search     string
	Status     LeadStatus
	OwnerID    string
	CustomerID string
}
