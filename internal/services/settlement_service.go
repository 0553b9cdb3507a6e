// internal/services/settlement_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stocksplit/stocksplit-backend/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

// SettlementService turns a cart into immutable sale records. The monetary
// breakdown is computed as an explicit pure step (ComputeSettlement) and then
// persisted together with the stock decrement in a single database
// transaction, never as a side effect of a save hook.
type SettlementService struct {
	db                   *gorm.DB
	authorizationService *AuthorizationService
	customerService      *CustomerService
	notificationService  *NotificationService
}

func NewSettlementService(db *gorm.DB, authorizationService *AuthorizationService, customerService *CustomerService, notificationService *NotificationService) *SettlementService {
	return &SettlementService{
		db:                   db,
		authorizationService: authorizationService,
		customerService:      customerService,
		notificationService:  notificationService,
	}
}

// Settlement is the monetary breakdown of one sale line, frozen at creation
// time from the product's current price and split.
type Settlement struct {
	Gross          decimal.Decimal `json:"gross"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	NetProfit      decimal.Decimal `json:"net_profit"`
	OwnerAmount    decimal.Decimal `json:"owner_amount"`
	InvestorAmount decimal.Decimal `json:"investor_amount"`
}

// ComputeSettlement derives the full breakdown for quantity units of p sold
// at discountPercent. Profit is split after the discount; the investor
// always recovers the full buying cost on top of their profit share, the
// owner receives a profit share only. That capital-first policy is the
// store's accounting rule, independent of the split percentages.
func ComputeSettlement(p *models.Product, quantity int, discountPercent decimal.Decimal) Settlement {
	qty := decimal.NewFromInt(int64(quantity))

	gross := p.SellingPrice.Mul(qty)
	discountAmount := gross.Mul(discountPercent).Div(oneHundred)
	totalAmount := gross.Sub(discountAmount)
	totalCost := p.BuyingPrice.Mul(qty)
	netProfit := totalAmount.Sub(totalCost)

	ownerAmount := netProfit.Mul(decimal.NewFromInt(int64(p.OwnerSplitPercent))).Div(oneHundred)
	investorAmount := netProfit.Mul(decimal.NewFromInt(int64(p.InvestorSplitPercent))).Div(oneHundred).Add(totalCost)

	return Settlement{
		Gross:          gross,
		DiscountAmount: discountAmount,
		TotalAmount:    totalAmount,
		TotalCost:      totalCost,
		NetProfit:      netProfit,
		OwnerAmount:    ownerAmount,
		InvestorAmount: investorAmount,
	}
}

type CartLine struct {
	ProductCode string `json:"product_code" validate:"required"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
}

type CheckoutRequest struct {
	TransactionID   uuid.UUID            `json:"transaction_id,omitempty"`
	Lines           []CartLine           `json:"lines" validate:"required,min=1,dive"`
	DiscountPercent decimal.Decimal      `json:"discount_percent"`
	PaymentMethod   models.PaymentMethod `json:"payment_method" validate:"required"`
	CustomerName    string               `json:"customer_name,omitempty"`
	CustomerMobile  string               `json:"customer_mobile,omitempty"`
}

type CheckoutResult struct {
	TransactionID uuid.UUID     `json:"transaction_id"`
	Sales         []models.Sale `json:"sales"`
	Customer      *models.Customer
}

// SettleCart settles every line of one checkout atomically. All lines share
// the transaction id, payment method, discount and customer. If any line
// fails (unknown code, insufficient stock) the whole cart rolls back and no
// sale or decrement is persisted.
func (s *SettlementService) SettleCart(actorID uuid.UUID, req *CheckoutRequest) (*CheckoutResult, error) {
	actor, err := s.authorizationService.LoadActor(actorID)
	if err != nil {
		return nil, err
	}
	if s.authorizationService.Authorize(actor, OpProductSell) != Allow {
		return nil, ErrPermissionDenied
	}

	if err := s.validate(req); err != nil {
		return nil, err
	}

	result := &CheckoutResult{TransactionID: req.TransactionID}
	if result.TransactionID == uuid.Nil {
		result.TransactionID = uuid.New()
	}

	var touched []uuid.UUID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.CustomerMobile != "" {
			customer, err := s.customerService.UpsertTx(tx, req.CustomerName, req.CustomerMobile)
			if err != nil {
				return fmt.Errorf("failed to upsert customer: %w", err)
			}
			result.Customer = customer
		}

		for _, line := range req.Lines {
			var product models.Product
			if err := tx.Where("LOWER(code) = LOWER(?)", line.ProductCode).First(&product).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductCode)
				}
				return fmt.Errorf("database error: %w", err)
			}

			// Guarded decrement: the WHERE clause re-checks stock at
			// commit time, so two racing carts can never both pass the
			// check and drive quantity below zero.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND quantity >= ?", product.ID, line.Quantity).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", line.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to decrement stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				var current models.Product
				if err := tx.Select("quantity").First(&current, product.ID).Error; err != nil {
					return fmt.Errorf("database error: %w", err)
				}
				return &InsufficientStockError{ProductName: product.Name, Available: current.Quantity}
			}

			settlement := ComputeSettlement(&product, line.Quantity, req.DiscountPercent)

			sale := models.Sale{
				TransactionID:        result.TransactionID,
				ProductID:            product.ID,
				SoldByID:             actor.ID,
				Quantity:             line.Quantity,
				DiscountPercent:      req.DiscountPercent,
				TotalAmount:          settlement.TotalAmount,
				OwnerProfitAmount:    settlement.OwnerAmount,
				InvestorProfitAmount: settlement.InvestorAmount,
				PaymentMethod:        req.PaymentMethod,
			}
			if result.Customer != nil {
				sale.CustomerID = &result.Customer.ID
			}

			if err := tx.Create(&sale).Error; err != nil {
				return fmt.Errorf("failed to create sale: %w", err)
			}

			result.Sales = append(result.Sales, sale)
			touched = append(touched, product.ID)
		}

		return nil
	})

	if err != nil {
		if isSerializationFailure(err) {
			return nil, ErrConcurrencyConflict
		}
		return nil, err
	}

	// Low-stock alerts go out after commit; they must never affect the sale.
	go s.notifyLowStock(touched)

	return result, nil
}

func (s *SettlementService) validate(req *CheckoutRequest) error {
	if len(req.Lines) == 0 {
		return &ValidationError{Field: "lines", Message: "cart is empty"}
	}
	for _, line := range req.Lines {
		if line.ProductCode == "" {
			return &ValidationError{Field: "product_code", Message: "is required"}
		}
		if line.Quantity < 1 {
			return &ValidationError{Field: "quantity", Message: "must be at least 1"}
		}
	}
	if req.DiscountPercent.IsNegative() || req.DiscountPercent.GreaterThan(oneHundred) {
		return &ValidationError{Field: "discount_percent", Message: "must be between 0 and 100"}
	}
	switch req.PaymentMethod {
	case models.PaymentMethodCash, models.PaymentMethodCard, models.PaymentMethodOnline:
	default:
		return &ValidationError{Field: "payment_method", Message: "must be cash, card or online"}
	}
	if req.CustomerMobile == "" && req.CustomerName != "" {
		return &ValidationError{Field: "customer_mobile", Message: "is required when a customer name is given"}
	}
	return nil
}

func (s *SettlementService) notifyLowStock(productIDs []uuid.UUID) {
	if s.notificationService == nil || len(productIDs) == 0 {
		return
	}

	var products []models.Product
	if err := s.db.Preload("Investor").
		Where("id IN ? AND quantity <= low_stock_threshold", productIDs).
		Find(&products).Error; err != nil {
		return
	}

	for i := range products {
		s.notificationService.SendLowStockAlert(&products[i])
	}
}
