// internal/models/payout.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payout records cash moving from the owner to an investor. Rows only
// accumulate; they are never edited or deleted. No balance cap is enforced,
// an overpayment simply drives the investor's due balance negative.
type Payout struct {
	BaseModel
	InvestorID uuid.UUID       `json:"investor_id" gorm:"type:uuid;not null;index"`
	RecordedBy uuid.UUID       `json:"recorded_by" gorm:"type:uuid;not null"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	ProofURL   string          `json:"proof_url,omitempty" gorm:"size:512"`
	Notes      string          `json:"notes,omitempty" gorm:"type:text"`

	// Relationships
	Investor User `json:"investor,omitempty" gorm:"foreignKey:InvestorID"`
}
