// internal/services/authorization_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocksplit/stocksplit-backend/internal/models"
)

// Operation names an action a user is attempting at a use-case boundary.
type Operation string

const (
	OpProductCreate  Operation = "product.create"
	OpProductUpdate  Operation = "product.update"
	OpProductSell    Operation = "product.sell"
	OpRequestSubmit  Operation = "request.submit"
	OpRequestResolve Operation = "request.resolve"
	OpPayoutRecord   Operation = "payout.record"
	OpCustomerRead   Operation = "customer.read"
	OpReportRead     Operation = "report.read"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	Deny Decision = iota
	Allow
	RequireApproval
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RequireApproval:
		return "require_approval"
	default:
		return "deny"
	}
}

// AuthorizationService is the single role gate for the whole service layer.
// Every use case asks it for a decision instead of comparing roles inline:
// the owner operates on live state directly, investors go through the
// approval workflow for inventory writes, staff can only sell and look up
// customers.
type AuthorizationService struct {
	db *gorm.DB
}

func NewAuthorizationService(db *gorm.DB) *AuthorizationService {
	return &AuthorizationService{db: db}
}

func (s *AuthorizationService) Authorize(actor *models.User, op Operation) Decision {
	if actor == nil || actor.Status != models.UserStatusActive {
		return Deny
	}

	if actor.Role == models.UserRoleOwner {
		// The owner bypasses the approval workflow entirely, including
		// request submission: owner edits never need approving.
		if op == OpRequestSubmit {
			return Deny
		}
		return Allow
	}

	switch op {
	case OpProductCreate, OpProductUpdate:
		if actor.Role == models.UserRoleInvestor {
			return RequireApproval
		}
		return Deny
	case OpRequestSubmit:
		return Allow
	case OpProductSell, OpCustomerRead:
		return Allow
	case OpReportRead:
		if actor.Role == models.UserRoleInvestor {
			return Allow
		}
		return Deny
	default:
		// request.resolve, payout.record and anything unlisted are
		// owner-only.
		return Deny
	}
}

// RequireOwner loads the actor and fails with ErrPermissionDenied unless the
// user holds the owner role. The check runs before any mutation so denial
// never has side effects.
func (s *AuthorizationService) RequireOwner(actorID uuid.UUID) (*models.User, error) {
	actor, err := s.LoadActor(actorID)
	if err != nil {
		return nil, err
	}
	if s.Authorize(actor, OpRequestResolve) != Allow {
		return nil, ErrPermissionDenied
	}
	return actor, nil
}

func (s *AuthorizationService) LoadActor(actorID uuid.UUID) (*models.User, error) {
	var actor models.User
	if err := s.db.First(&actor, actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &actor, nil
}
