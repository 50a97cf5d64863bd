package domain

import (
	"encoding/json"
	"time"
)

type SurveyType string

const (
	SurveyVOIP    SurveyType = "VOIP"
	SurveyCabling SurveyType = "CABLING"
	SurveyWiFi    SurveyType = "WIFI"
	SurveyNetwork SurveyType = "NETWORK"
	SurveyCCTV    SurveyType = "CCTV"
	SurveyOther   SurveyType = "OTHER"
)

func (t SurveyType) Valid() bool {
	switch t {
	case SurveyVOIP, SurveyCabling, SurveyWiFi, SurveyNetwork, SurveyCCTV, SurveyOther:
		return true
	}
	return false
}

type SurveyStatus string

const (
	SurveyDraft      SurveyStatus = "DRAFT"
	SurveyInProgress SurveyStatus = "IN_PROGRESS"
	SurveyCompleted  SurveyStatus = "COMPLETED"
	SurveyCancelled  SurveyStatus = "CANCELLED"
)

func (s SurveyStatus) Valid() bool {
	switch s {
	case SurveyDraft, SurveyInProgress, SurveyCompleted, SurveyCancelled:
		return true
	}
	return false
}

// SiteSurvey site_surveys table. Details holds the per-type form answers.
type SiteSurvey struct {
	ID          string          `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Description *string         `json:"description,omitempty" db:"description"`
	Type        SurveyType      `json:"type" db:"type"`
	Status      SurveyStatus    `json:"status" db:"status"`
	CustomerID  string          `json:"customer_id" db:"customer_id"`
	LeadID      *string         `json:"lead_id,omitempty" db:"lead_id"`
	AssigneeID  *string         `json:"assignee_id,omitempty" db:"assignee_id"`
	Address     *string         `json:"address,omitempty" db:"address"`
	ScheduledAt *time.Time      `json:"scheduled_at,omitempty" db:"scheduled_at"`
	Details     json.RawMessage `json:"details,omitempty" db:"details"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`

	// joined, read-only
	CustomerName *string `json:"customer_name,omitempty" db:"-"`
}

type SiteSurveyFilter struct {
	Search     string
	Type       SurveyType
	Status     SurveyStatus
	CustomerID string
	AssigneeID string
	LeadID     string
}
