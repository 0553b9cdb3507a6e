// internal/models/sale.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is one line item of a checkout. The monetary fields are computed once
// from the product's price and split at creation time and are never
// recalculated, so later price or split edits leave history untouched.
type Sale struct {
	BaseModel
	TransactionID        uuid.UUID       `json:"transaction_id" gorm:"type:uuid;not null;index"`
	ProductID            uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;index"`
	SoldByID             uuid.UUID       `json:"sold_by_id" gorm:"type:uuid;not null;index"`
	CustomerID           *uuid.UUID      `json:"customer_id" gorm:"type:uuid;index"`
	Quantity             int             `json:"quantity" gorm:"not null"`
	DiscountPercent      decimal.Decimal `json:"discount_percent" gorm:"type:decimal(5,2);not null;default:0"`
	TotalAmount          decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	OwnerProfitAmount    decimal.Decimal `json:"owner_profit_amount" gorm:"type:decimal(12,2);not null;default:0"`
	InvestorProfitAmount decimal.Decimal `json:"investor_profit_amount" gorm:"type:decimal(12,2);not null;default:0"`
	PaymentMethod        PaymentMethod   `json:"payment_method" gorm:"type:varchar(10);not null;default:'cash'"`

	// Relationships
	Product  Product   `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	SoldBy   User      `json:"sold_by,omitempty" gorm:"foreignKey:SoldByID"`
	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
}

// Customer is created lazily on the first sale referencing its mobile number.
// The name is refreshed on repeat sightings (last write wins).
type Customer struct {
	BaseModel
	Name   string `json:"name" gorm:"size:200"`
	Mobile string `json:"mobile" gorm:"size:20;uniqueIndex;not null"`
	Email  string `json:"email" gorm:"size:255"`

	// Relationships
	Sales []Sale `json:"sales,omitempty" gorm:"foreignKey:CustomerID"`
}
