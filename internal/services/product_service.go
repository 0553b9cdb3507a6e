// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stocksplit/stocksplit-backend/internal/models"
	"github.com/stocksplit/stocksplit-backend/internal/utils"
)

type ProductService struct {
	db                   *gorm.DB
	authorizationService *AuthorizationService
}

func NewProductService(db *gorm.DB, authorizationService *AuthorizationService) *ProductService {
	return &ProductService{
		db:                   db,
		authorizationService: authorizationService,
	}
}

type ProductInput struct {
	InvestorID           *uuid.UUID      `json:"investor_id,omitempty"`
	Name                 string          `json:"name" validate:"required,max=200"`
	Quantity             int             `json:"quantity" validate:"min=0"`
	BuyingPrice          decimal.Decimal `json:"buying_price"`
	SellingPrice         decimal.Decimal `json:"selling_price"`
	OwnerSplitPercent    int             `json:"owner_split_percent" validate:"min=0,max=100"`
	InvestorSplitPercent int             `json:"investor_split_percent" validate:"min=0,max=100"`
	LowStockThreshold    int             `json:"low_stock_threshold" validate:"min=0"`
	Tags                 []string        `json:"tags,omitempty"`
}

// Create inserts a product directly, which only the owner may do; investors
// reach product creation through the change-request workflow instead (the
// handler routes a RequireApproval decision there).
func (s *ProductService) Create(actorID uuid.UUID, input *ProductInput) (*models.Product, error) {
	actor, err := s.authorizationService.LoadActor(actorID)
	if err != nil {
		return nil, err
	}
	if s.authorizationService.Authorize(actor, OpProductCreate) != Allow {
		return nil, ErrPermissionDenied
	}

	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	// The owner may register goods on behalf of an investor; with no
	// investor given the product is owner-held.
	investor := actor
	if input.InvestorID != nil && *input.InvestorID != actor.ID {
		investor, err = s.authorizationService.LoadActor(*input.InvestorID)
		if err != nil {
			return nil, err
		}
	}

	product := &models.Product{
		InvestorID:           investor.ID,
		Name:                 input.Name,
		Quantity:             input.Quantity,
		BuyingPrice:          input.BuyingPrice,
		SellingPrice:         input.SellingPrice,
		OwnerSplitPercent:    input.OwnerSplitPercent,
		InvestorSplitPercent: input.InvestorSplitPercent,
		LowStockThreshold:    input.LowStockThreshold,
		Tags:                 pq.StringArray(input.Tags),
	}

	if err := createProductWithCode(s.db, product, investor.Username); err != nil {
		return nil, err
	}

	return product, nil
}

// Update edits a product in place, owner only. The code, ownership and
// creation time are immutable; everything else follows the input. Historical
// sales keep their frozen amounts regardless of price or split changes.
func (s *ProductService) Update(actorID, productID uuid.UUID, input *ProductInput) (*models.Product, error) {
	actor, err := s.authorizationService.LoadActor(actorID)
	if err != nil {
		return nil, err
	}
	if s.authorizationService.Authorize(actor, OpProductUpdate) != Allow {
		return nil, ErrPermissionDenied
	}

	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := map[string]interface{}{
		"name":                   input.Name,
		"quantity":               input.Quantity,
		"buying_price":           input.BuyingPrice,
		"selling_price":          input.SellingPrice,
		"owner_split_percent":    input.OwnerSplitPercent,
		"investor_split_percent": input.InvestorSplitPercent,
		"low_stock_threshold":    input.LowStockThreshold,
	}
	if input.Tags != nil {
		updates["tags"] = pq.StringArray(input.Tags)
	}

	if err := s.db.Model(&product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &product, nil
}

// Find resolves the seller's free-text query: a case-insensitive exact match
// on the product code, or failing that a case-insensitive substring match on
// the name. Returns the first hit or ErrProductNotFound.
func (s *ProductService) Find(query string) (*models.Product, error) {
	if query == "" {
		return nil, ErrProductNotFound
	}

	var product models.Product
	err := s.db.
		Where("LOWER(code) = LOWER(?) OR LOWER(name) LIKE LOWER(?)", query, "%"+query+"%").
		Order("created_at ASC").
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &product, nil
}

func (s *ProductService) GetProduct(productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Investor").First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

// GetProducts lists inventory scoped by role: the owner and staff see the
// whole store, an investor sees only their own goods.
func (s *ProductService) GetProducts(actorID uuid.UUID, params utils.PaginationParams) ([]models.Product, int64, error) {
	actor, err := s.authorizationService.LoadActor(actorID)
	if err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.Product{}).Preload("Investor")
	if actor.Role == models.UserRoleInvestor {
		query = query.Where("investor_id = ?", actor.ID)
	}

	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(code) LIKE LOWER(?)", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "code", "quantity", "selling_price"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *ProductService) validateInput(input *ProductInput) error {
	if err := utils.ValidateStruct(input); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if input.BuyingPrice.IsNegative() || input.SellingPrice.IsNegative() {
		return &ValidationError{Field: "price", Message: "must not be negative"}
	}
	if input.OwnerSplitPercent+input.InvestorSplitPercent != 100 {
		return &ValidationError{Field: "split_percent", Message: "owner and investor splits must sum to 100"}
	}
	return nil
}

// createProductWithCode generates the product code and inserts, retrying on
// the rare collision of the random suffix.
func createProductWithCode(tx *gorm.DB, product *models.Product, username string) error {
	const maxAttempts = 5
	for attempt := 0; attempt < maxAttempts; attempt++ {
		product.Code = models.GenerateProductCode(username)
		err := tx.Create(product).Error
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return fmt.Errorf("failed to create product: %w", err)
		}
		product.ID = uuid.Nil
	}
	return fmt.Errorf("failed to allocate a unique product code for %q", username)
}
