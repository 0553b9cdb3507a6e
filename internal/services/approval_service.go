// internal/services/approval_service.go
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

// ApprovalService runs the change-request state machine. Investors propose
// inventory writes here; the owner resolves them. Pending is the only state
// that can transition, and only approval ever touches live product state.
type ApprovalService struct {
	db                   *gorm.DB
	authorizationService *AuthorizationService
}

func NewApprovalService(db *gorm.DB, authorizationService *AuthorizationService) *ApprovalService {
	return &ApprovalService{
		db:                   db,
		authorizationService: authorizationService,
	}
}

type SubmitRequestInput struct {
	RequestType       models.RequestType `json:"request_type" validate:"required"`
	ProductID         *uuid.UUID         `json:"product_id,omitempty"`
	Name              string             `json:"name" validate:"required,max=200"`
	Quantity          int                `json:"quantity" validate:"min=0"`
	BuyingPrice       decimal.Decimal    `json:"buying_price"`
	SellingPrice      decimal.Decimal    `json:"selling_price"`
	LowStockThreshold int                `json:"low_stock_threshold" validate:"min=0"`
}

// Submit creates a pending request. Only non-owner roles may submit; the
// owner edits and creates products directly, bypassing the workflow.
func (s *ApprovalService) Submit(requesterID uuid.UUID, input *SubmitRequestInput) (*models.ChangeRequest, error) {
	requester, err := s.authorizationService.LoadActor(requesterID)
	if err != nil {
		return nil, err
	}
	if s.authorizationService.Authorize(requester, OpRequestSubmit) != Allow {
		return nil, ErrPermissionDenied
	}

	if err := utils.ValidateStruct(input); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if input.BuyingPrice.IsNegative() || input.SellingPrice.IsNegative() {
		return nil, &ValidationError{Field: "price", Message: "must not be negative"}
	}

	request := &models.ChangeRequest{
		RequesterID:       requester.ID,
		RequestType:       input.RequestType,
		Status:            models.RequestStatusPending,
		Name:              input.Name,
		Quantity:          input.Quantity,
		BuyingPrice:       input.BuyingPrice,
		SellingPrice:      input.SellingPrice,
		LowStockThreshold: input.LowStockThreshold,
	}

	switch input.RequestType {
	case models.RequestTypeNew:
		// No target product for a creation request.
	case models.RequestTypeEdit:
		if input.ProductID == nil {
			return nil, &ValidationError{Field: "product_id", Message: "is required for edit requests"}
		}
		var product models.Product
		if err := s.db.First(&product, *input.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		if product.InvestorID != requester.ID {
			return nil, ErrPermissionDenied
		}
		request.ProductID = input.ProductID
	default:
		return nil, &ValidationError{Field: "request_type", Message: "must be new or edit"}
	}

	if err := s.db.Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create change request: %w", err)
	}

	return request, nil
}

// Approve resolves a pending request and applies the proposed change. Status
// flip and product mutation commit together. Re-invoking on an already
// resolved request is a no-op: the request is returned unchanged and no
// product state is touched.
func (s *ApprovalService) Approve(actorID, requestID uuid.UUID) (*models.ChangeRequest, error) {
	actor, err := s.authorizationService.RequireOwner(actorID)
	if err != nil {
		return nil, err
	}

	var request models.ChangeRequest
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if request.Resolved() {
			return nil
		}

		if err := s.process(tx, &request); err != nil {
			return err
		}

		now := time.Now()
		request.Status = models.RequestStatusApproved
		request.ResolvedAt = &now
		request.ResolvedBy = &actor.ID

		if err := tx.Save(&request).Error; err != nil {
			return fmt.Errorf("failed to update change request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &request, nil
}

// Reject resolves a pending request without touching product state. Like
// Approve it is a no-op on an already resolved request.
func (s *ApprovalService) Reject(actorID, requestID uuid.UUID) (*models.ChangeRequest, error) {
	actor, err := s.authorizationService.RequireOwner(actorID)
	if err != nil {
		return nil, err
	}

	var request models.ChangeRequest
	if err := s.db.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if request.Resolved() {
		return &request, nil
	}

	now := time.Now()
	request.Status = models.RequestStatusRejected
	request.ResolvedAt = &now
	request.ResolvedBy = &actor.ID

	if err := s.db.Save(&request).Error; err != nil {
		return nil, fmt.Errorf("failed to update change request: %w", err)
	}

	return &request, nil
}

// ApproveAll approves every currently pending request one by one, so each
// item gets process() applied under the single-item transition rule. Returns
// the number of requests that were actually approved.
func (s *ApprovalService) ApproveAll(actorID uuid.UUID) (int, error) {
	if _, err := s.authorizationService.RequireOwner(actorID); err != nil {
		return 0, err
	}

	var pending []models.ChangeRequest
	if err := s.db.Where("status = ?", models.RequestStatusPending).
		Order("created_at ASC").
		Find(&pending).Error; err != nil {
		return 0, fmt.Errorf("failed to fetch pending requests: %w", err)
	}

	approved := 0
	for i := range pending {
		if _, err := s.Approve(actorID, pending[i].ID); err != nil {
			return approved, err
		}
		approved++
	}

	return approved, nil
}

// RejectAll flips every pending request to rejected with one bulk update.
// Unlike ApproveAll there is no per-item work to apply, so the direct status
// update is safe; the asymmetry between the two bulk paths is intentional.
func (s *ApprovalService) RejectAll(actorID uuid.UUID) (int, error) {
	actor, err := s.authorizationService.RequireOwner(actorID)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	res := s.db.Model(&models.ChangeRequest{}).
		Where("status = ?", models.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":      models.RequestStatusRejected,
			"resolved_at": now,
			"resolved_by": actor.ID,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to reject pending requests: %w", res.Error)
	}

	return int(res.RowsAffected), nil
}

// GetPendingRequests is the owner's approval queue.
func (s *ApprovalService) GetPendingRequests(actorID uuid.UUID, params utils.PaginationParams) ([]models.ChangeRequest, int64, error) {
	if _, err := s.authorizationService.RequireOwner(actorID); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.ChangeRequest{}).
		Preload("Requester").Preload("Product").
		Where("status = ?", models.RequestStatusPending)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count pending requests: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "request_type"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var requests []models.ChangeRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch pending requests: %w", err)
	}

	return requests, total, nil
}

// GetMyRequests returns the requester's own submission history across all
// states.
func (s *ApprovalService) GetMyRequests(requesterID uuid.UUID, params utils.PaginationParams) ([]models.ChangeRequest, int64, error) {
	query := s.db.Model(&models.ChangeRequest{}).
		Preload("Product").
		Where("requester_id = ?", requesterID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "status", "request_type"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var requests []models.ChangeRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch requests: %w", err)
	}

	return requests, total, nil
}

// process applies the proposed change to live product state. NEW creates a
// product owned by the requester with the default split; EDIT overwrites the
// snapshot fields in place and never touches ownership, code or splits.
func (s *ApprovalService) process(tx *gorm.DB, request *models.ChangeRequest) error {
	switch request.RequestType {
	case models.RequestTypeNew:
		var requester models.User
		if err := tx.First(&requester, request.RequesterID).Error; err != nil {
			return fmt.Errorf("requester not found: %w", err)
		}

		product := models.Product{
			InvestorID:           request.RequesterID,
			Name:                 request.Name,
			Quantity:             request.Quantity,
			BuyingPrice:          request.BuyingPrice,
			SellingPrice:         request.SellingPrice,
			OwnerSplitPercent:    models.DefaultOwnerSplitPercent,
			InvestorSplitPercent: models.DefaultInvestorSplitPercent,
			LowStockThreshold:    request.LowStockThreshold,
		}

		if err := createProductWithCode(tx, &product, requester.Username); err != nil {
			return err
		}
		request.ProductID = &product.ID
		return nil

	case models.RequestTypeEdit:
		if request.ProductID == nil {
			return &ValidationError{Field: "product_id", Message: "edit request has no target product"}
		}
		res := tx.Model(&models.Product{}).
			Where("id = ?", *request.ProductID).
			Updates(map[string]interface{}{
				"name":                request.Name,
				"quantity":            request.Quantity,
				"buying_price":        request.BuyingPrice,
				"selling_price":       request.SellingPrice,
				"low_stock_threshold": request.LowStockThreshold,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to apply edit: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return nil

	default:
		return &ValidationError{Field: "request_type", Message: "unknown request type"}
	}
}
