// internal/models/change_request.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChangeRequest is a proposed product creation or edit submitted by a
// non-owner. It carries a full snapshot of the proposed field values; an EDIT
// additionally references the target product. Pending requests resolve to
// approved or rejected exactly once, and only approval touches live product
// state.
type ChangeRequest struct {
	BaseModel
	RequesterID uuid.UUID     `json:"requester_id" gorm:"type:uuid;not null;index"`
	RequestType RequestType   `json:"request_type" gorm:"type:varchar(10);not null"`
	Status      RequestStatus `json:"status" gorm:"type:varchar(10);not null;default:'pending';index"`
	ProductID   *uuid.UUID    `json:"product_id" gorm:"type:uuid;index"`

	// Proposed field snapshot. Split percentages are deliberately absent:
	// products created from an approved NEW request get the default split.
	Name              string          `json:"name" gorm:"size:200;not null"`
	Quantity          int             `json:"quantity" gorm:"not null;default:0"`
	BuyingPrice       decimal.Decimal `json:"buying_price" gorm:"type:decimal(12,2);not null"`
	SellingPrice      decimal.Decimal `json:"selling_price" gorm:"type:decimal(12,2);not null"`
	LowStockThreshold int             `json:"low_stock_threshold" gorm:"not null;default:5"`

	ResolvedAt *time.Time `json:"resolved_at"`
	ResolvedBy *uuid.UUID `json:"resolved_by" gorm:"type:uuid"`

	// Relationships
	Requester User     `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// Resolved reports whether the request has left the pending state.
func (r *ChangeRequest) Resolved() bool {
	return r.Status != RequestStatusPending
}
