// internal/models/product.go
package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	InvestorID           uuid.UUID       `json:"investor_id" gorm:"type:uuid;not null;index"`
	Name                 string          `json:"name" gorm:"size:200;not null"`
	Code                 string          `json:"code" gorm:"size:20;uniqueIndex;not null"`
	Quantity             int             `json:"quantity" gorm:"not null;default:0"`
	BuyingPrice          decimal.Decimal `json:"buying_price" gorm:"type:decimal(12,2);not null"`
	SellingPrice         decimal.Decimal `json:"selling_price" gorm:"type:decimal(12,2);not null"`
	OwnerSplitPercent    int             `json:"owner_split_percent" gorm:"not null;default:30"`
	InvestorSplitPercent int             `json:"investor_split_percent" gorm:"not null;default:70"`
	LowStockThreshold    int             `json:"low_stock_threshold" gorm:"not null;default:5"`
	Tags                 pq.StringArray  `json:"tags" gorm:"type:text[]"`

	// Relationships
	Investor User   `json:"investor,omitempty" gorm:"foreignKey:InvestorID"`
	Sales    []Sale `json:"sales,omitempty" gorm:"foreignKey:ProductID"`
}

// Default net-profit split applied when a product is created from an approved
// change request (the request snapshot carries no split percentages).
const (
	DefaultOwnerSplitPercent    = 30
	DefaultInvestorSplitPercent = 70
)

// LowStock reports whether the product is at or below its restock threshold.
func (p *Product) LowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}

// GenerateProductCode builds the human-readable product code: the first three
// letters of the investor's username uppercased plus four random digits,
// e.g. "ALI1234". Generated once at creation and never mutated. Callers are
// responsible for retrying on the rare unique-index collision.
func GenerateProductCode(username string) string {
	prefix := strings.ToUpper(username)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	suffix := uuid.New().ID() % 10000
	return fmt.Sprintf("%s%04d", prefix, suffix)
}
