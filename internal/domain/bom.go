package domain

import "github.com/shopspring/decimal"

// BOMLine one grouped line of a bill of materials. Free-text devices (no
// product) are grouped by brand, model and type and carry no price.
type BOMLine struct {
	ProductID *string         `json:"product_id,omitempty"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand"`
	Model     string          `json:"model"`
	Type      string          `json:"type"`
	Unit      string          `json:"unit"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// BOM bill of materials of a site survey.
type BOM struct {
	SurveyID    string          `json:"survey_id"`
	SurveyTitle string          `json:"survey_title"`
	Customer    string          `json:"customer"`
	Lines       []BOMLine       `json:"lines"`
	TotalQty    int             `json:"total_quantity"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}
