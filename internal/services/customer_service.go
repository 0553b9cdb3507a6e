// internal/services/customer_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stocksplit/stocksplit-backend/internal/models"
	"github.com/stocksplit/stocksplit-backend/internal/utils"
)

type CustomerService struct {
	db                   *gorm.DB
	authorizationService *AuthorizationService
}

func NewCustomerService(db *gorm.DB, authorizationService *AuthorizationService) *CustomerService {
	return &CustomerService{
		db:                   db,
		authorizationService: authorizationService,
	}
}

// UpsertTx performs the atomic get-or-insert keyed on the unique mobile
// column. Two first-time sales racing on the same number end up with a single
// row; the name reflects the most recent sighting.
func (s *CustomerService) UpsertTx(tx *gorm.DB, name, mobile string) (*models.Customer, error) {
	customer := models.Customer{Name: name, Mobile: mobile}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mobile"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(&customer).Error; err != nil {
		return nil, err
	}

	// Re-read to pick up the surviving row's id when the insert hit the
	// conflict path.
	if err := tx.Where("mobile = ?", mobile).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *CustomerService) GetCustomers(actorID uuid.UUID, params utils.PaginationParams) ([]models.Customer, int64, error) {
	actor, err := s.authorizationService.LoadActor(actorID)
	if err != nil {
		return nil, 0, err
	}
	if s.authorizationService.Authorize(actor, OpCustomerRead) != Allow {
		return nil, 0, ErrPermissionDenied
	}

	query := s.db.Model(&models.Customer{})
	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR mobile LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "mobile"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var customers []models.Customer
	if err := query.Find(&customers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch customers: %w", err)
	}

	return customers, total, nil
}

// GetCustomerProfile returns the customer and their full purchase history,
// newest first.
func (s *CustomerService) GetCustomerProfile(actorID, customerID uuid.UUID) (*models.Customer, []models.Sale, error) {
	actor, err := s.authorizationService.LoadActor(actorID)
	if err != nil {
		return nil, nil, err
	}
	if s.authorizationService.Authorize(actor, OpCustomerRead) != Allow {
		return nil, nil, ErrPermissionDenied
	}

	var customer models.Customer
	if err := s.db.First(&customer, customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCustomerNotFound
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	var sales []models.Sale
	if err := s.db.Preload("Product").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&sales).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to fetch purchase history: %w", err)
	}

	return &customer, sales, nil
}
