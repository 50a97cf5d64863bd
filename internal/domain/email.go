package domain

import "time"

type EmailDirection string

const (
	EmailOutbound EmailDirection = "OUTBOUND"
	EmailInbound  EmailDirection = "INBOUND"
)

// Email emails table: a record of mail sent (or imported) through Microsoft Graph.
type Email struct {
	ID         string         `json:"id" db:"id"`
	Direction  EmailDirection `json:"direction" db:"direction"`
	FromAddr   string         `json:"from" db:"from_addr"`
	To         []string       `json:"to" db:"to_addrs"`
	Cc         []string       `json:"cc" db:"cc_addrs"`
	Subject    string         `json:"subject" db:"subject"`
	Body       string         `json:"body" db:"body"`
	LeadID     *string        `json:"lead_id,omitempty" db:"lead_id"`
	CustomerID *string        `json:"customer_id,omitempty" db:"customer_id"`
	SentBy     *string        `json:"sent_by,omitempty" db:"sent_by"`
	SentAt     time.Time      `json:"sent_at" db:"sent_at"`
}

type EmailFilter struct {
	LeadID     string
	CustomerID string
	Search     string
}
