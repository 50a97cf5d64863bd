package domain

import "time"

type DocumentKind string

const (
	DocumentProposal DocumentKind = "PROPOSAL"
	DocumentBOM      DocumentKind = "BOM"
)

// Document generated file published to the CDN for a site survey.
type Document struct {
	ID        string       `json:"id" db:"id"`
	SurveyID  string       `json:"survey_id" db:"survey_id"`
	Kind      DocumentKind `json:"kind" db:"kind"`
	FileName  string       `json:"file_name" db:"file_name"`
	URL       string       `json:"url" db:"url"`
	Size      int64        `json:"size" db:"size"`
	CreatedBy *string      `json:"created_by,omitempty" db:"created_by"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// StoredFile upload recorded after a successful CDN PUT.
type StoredFile struct {
	ID          string    `json:"id" db:"id"`
	Path        string    `json:"path" db:"path"`
	URL         string    `json:"url" db:"url"`
	FileName    string    `json:"file_name" db:"file_name"`
	ContentType string    `json:"content_type" db:"content_type"`
	Size        int64     `json:"size" db:"size"`
	UploadedBy  *string   `json:"uploaded_by,omitempty" db:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
