// internal/services/finance_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stocksplit/stocksplit-backend/internal/models"
	"github.com/stocksplit/stocksplit-backend/internal/utils"
)

// FinanceService aggregates the sale and payout history into balances. The
// aggregates are recomputed from the ledger on every read rather than stored,
// so they can never go stale relative to the sales they summarize.
type FinanceService struct {
	db                   *gorm.DB
	authorizationService *AuthorizationService
	notificationService  *NotificationService
}

func NewFinanceService(db *gorm.DB, authorizationService *AuthorizationService, notificationService *NotificationService) *FinanceService {
	return &FinanceService{
		db:                   db,
		authorizationService: authorizationService,
		notificationService:  notificationService,
	}
}

type InvestorBalance struct {
	InvestorID uuid.UUID       `json:"investor_id"`
	Earned     decimal.Decimal `json:"earned"`
	Paid       decimal.Decimal `json:"paid"`
	Due        decimal.Decimal `json:"due"`
}

type InvestorFinancials struct {
	Investor models.User `json:"investor"`
	InvestorBalance
}

// GetInvestorBalance recomputes earned/paid/due for one investor. An
// investor may read their own balance; the owner may read anyone's.
func (s *FinanceService) GetInvestorBalance(actorID, investorID uuid.UUID) (*InvestorBalance, error) {
	actor, err := s.authorizationService.LoadActor(actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsOwner() {
		if s.authorizationService.Authorize(actor, OpReportRead) != Allow || actor.ID != investorID {
			return nil, ErrPermissionDenied
		}
	}

	return s.balanceFor(investorID)
}

func (s *FinanceService) balanceFor(investorID uuid.UUID) (*InvestorBalance, error) {
	var earned decimal.Decimal
	err := s.db.Model(&models.Sale{}).
		Joins("JOIN products ON products.id = sales.product_id").
		Where("products.investor_id = ?", investorID).
		Select("COALESCE(SUM(sales.investor_profit_amount), 0)").
		Scan(&earned).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum investor earnings: %w", err)
	}

	var paid decimal.Decimal
	err = s.db.Model(&models.Payout{}).
		Where("investor_id = ?", investorID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&paid).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum payouts: %w", err)
	}

	return &InvestorBalance{
		InvestorID: investorID,
		Earned:     earned,
		Paid:       paid,
		Due:        earned.Sub(paid),
	}, nil
}

// GetOwnerNetIncome sums the owner's profit cut across every sale in the
// store; the owner's take is store-wide, not per product.
func (s *FinanceService) GetOwnerNetIncome(actorID uuid.UUID) (decimal.Decimal, error) {
	if _, err := s.authorizationService.RequireOwner(actorID); err != nil {
		return decimal.Zero, err
	}

	var income decimal.Decimal
	err := s.db.Model(&models.Sale{}).
		Select("COALESCE(SUM(owner_profit_amount), 0)").
		Scan(&income).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum owner income: %w", err)
	}

	return income, nil
}

// GetInvestorFinancials builds the owner's payables table: one
// earned/paid/due row per investor.
func (s *FinanceService) GetInvestorFinancials(actorID uuid.UUID) ([]InvestorFinancials, error) {
	if _, err := s.authorizationService.RequireOwner(actorID); err != nil {
		return nil, err
	}

	var investors []models.User
	if err := s.db.Where("role = ?", models.UserRoleInvestor).
		Order("username ASC").
		Find(&investors).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch investors: %w", err)
	}

	financials := make([]InvestorFinancials, 0, len(investors))
	for _, inv := range investors {
		balance, err := s.balanceFor(inv.ID)
		if err != nil {
			return nil, err
		}
		financials = append(financials, InvestorFinancials{
			Investor:        inv,
			InvestorBalance: *balance,
		})
	}

	return financials, nil
}

type RecordPayoutInput struct {
	InvestorID uuid.UUID       `json:"investor_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount"`
	ProofURL   string          `json:"proof_url,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// RecordPayout writes an owner-to-investor cash record. No balance cap is
// enforced: overpaying simply drives the due balance negative.
func (s *FinanceService) RecordPayout(actorID uuid.UUID, input *RecordPayoutInput) (*models.Payout, error) {
	actor, err := s.authorizationService.LoadActor(actorID)
	if err != nil {
		return nil, err
	}
	if s.authorizationService.Authorize(actor, OpPayoutRecord) != Allow {
		return nil, ErrPermissionDenied
	}

	if err := utils.ValidateStruct(input); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !input.Amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Message: "must be positive"}
	}

	var investor models.User
	if err := s.db.First(&investor, input.InvestorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if investor.Role != models.UserRoleInvestor {
		return nil, &ValidationError{Field: "investor_id", Message: "user is not an investor"}
	}

	payout := &models.Payout{
		InvestorID: investor.ID,
		RecordedBy: actor.ID,
		Amount:     input.Amount,
		ProofURL:   input.ProofURL,
		Notes:      input.Notes,
	}

	if err := s.db.Create(payout).Error; err != nil {
		return nil, fmt.Errorf("failed to record payout: %w", err)
	}

	if s.notificationService != nil {
		go s.notificationService.SendPayoutRecordedNotification(&investor, payout)
	}

	return payout, nil
}

func (s *FinanceService) GetPayouts(actorID uuid.UUID, investorID *uuid.UUID, params utils.PaginationParams) ([]models.Payout, int64, error) {
	actor, err := s.authorizationService.LoadActor(actorID)
	if err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.Payout{}).Preload("Investor")
	if actor.IsOwner() {
		if investorID != nil {
			query = query.Where("investor_id = ?", *investorID)
		}
	} else {
		// Non-owners only ever see their own payout history.
		query = query.Where("investor_id = ?", actor.ID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payouts: %w", err)
	}

	allowedSortFields := []string{"created_at", "amount"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var payouts []models.Payout
	if err := query.Find(&payouts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payouts: %w", err)
	}

	return payouts, total, nil
}

// GetRecentSales returns the latest sales, scoped to the investor's own
// products for non-owner callers.
func (s *FinanceService) GetRecentSales(actorID uuid.UUID, limit int) ([]models.Sale, error) {
	actor, err := s.authorizationService.LoadActor(actorID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&models.Sale{}).
		Preload("Product").Preload("SoldBy").Preload("Customer")
	if actor.Role == models.UserRoleInvestor {
		query = query.Joins("JOIN products ON products.id = sales.product_id").
			Where("products.investor_id = ?", actor.ID)
	}

	var sales []models.Sale
	if err := query.Order("sales.created_at DESC").Limit(limit).Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}

	return sales, nil
}

// GetTopProduct names the investor's best selling product over the trailing
// 30 days by units sold, or "" when there is no recent history.
func (s *FinanceService) GetTopProduct(investorID uuid.UUID) (string, error) {
	since := time.Now().AddDate(0, 0, -30)

	var row struct {
		Name  string
		Units int64
	}
	err := s.db.Model(&models.Sale{}).
		Joins("JOIN products ON products.id = sales.product_id").
		Where("products.investor_id = ? AND sales.created_at >= ?", investorID, since).
		Select("products.name AS name, SUM(sales.quantity) AS units").
		Group("products.name").
		Order("units DESC").
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return "", fmt.Errorf("failed to compute top product: %w", err)
	}

	return row.Name, nil
}

type DashboardData struct {
	IsOwner     bool                 `json:"is_owner"`
	Products    []models.Product     `json:"products"`
	RecentSales []models.Sale        `json:"recent_sales"`
	Financials  []InvestorFinancials `json:"financials,omitempty"`
	NetIncome   *decimal.Decimal     `json:"net_income,omitempty"`
	Balance     *InvestorBalance     `json:"balance,omitempty"`
	TopProduct  string               `json:"top_product,omitempty"`
}

// GetDashboard shapes the landing payload per role: the owner gets the whole
// store plus the payables table, an investor gets their own slice plus
// balance and top product.
func (s *FinanceService) GetDashboard(actorID uuid.UUID) (*DashboardData, error) {
	actor, err := s.authorizationService.LoadActor(actorID)
	if err != nil {
		return nil, err
	}

	data := &DashboardData{IsOwner: actor.IsOwner()}

	productQuery := s.db.Model(&models.Product{}).Preload("Investor").Order("created_at DESC")
	if !actor.IsOwner() {
		productQuery = productQuery.Where("investor_id = ?", actor.ID)
	}
	if err := productQuery.Find(&data.Products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	if data.RecentSales, err = s.GetRecentSales(actorID, 20); err != nil {
		return nil, err
	}

	if actor.IsOwner() {
		if data.Financials, err = s.GetInvestorFinancials(actorID); err != nil {
			return nil, err
		}
		income, err := s.GetOwnerNetIncome(actorID)
		if err != nil {
			return nil, err
		}
		data.NetIncome = &income
	} else if actor.Role == models.UserRoleInvestor {
		if data.Balance, err = s.balanceFor(actor.ID); err != nil {
			return nil, err
		}
		if data.TopProduct, err = s.GetTopProduct(actor.ID); err != nil {
			return nil, err
		}
	}

	return data, nil
}
