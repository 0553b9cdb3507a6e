// internal/handlers/common.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stocksplit/stocksplit-backend/internal/i18n"
	"github.com/stocksplit/stocksplit-backend/internal/services"
	"github.com/stocksplit/stocksplit-backend/internal/utils"
)

// actorID pulls the authenticated user out of the request context. A missing
// or malformed id means the auth middleware did not run for this route.
func actorID(c *gin.Context) (uuid.UUID, bool) {
	idStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	return id, true
}

// handleServiceError maps the service error taxonomy onto HTTP statuses:
// validation 400, permission 403, not-found 404, stock and concurrency
// conflicts 409, everything else an opaque 500.
func handleServiceError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var stockErr *services.InsufficientStockError
	var validationErr *services.ValidationError

	switch {
	case errors.As(err, &stockErr):
		utils.ConflictResponse(c, "INSUFFICIENT_STOCK",
			i18n.T(lang, i18n.KeyStockInsufficient, stockErr.ProductName, stockErr.Available),
			gin.H{
				"product_name": stockErr.ProductName,
				"available":    stockErr.Available,
			})
	case errors.Is(err, services.ErrConcurrencyConflict):
		utils.ConflictResponse(c, "CONCURRENCY_CONFLICT",
			i18n.T(lang, i18n.KeySaleConcurrencyConflict), nil)
	case errors.Is(err, services.ErrPermissionDenied):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, "product")
	case errors.Is(err, services.ErrRequestNotFound):
		utils.NotFoundResponse(c, "request")
	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, "user")
	case errors.Is(err, services.ErrCustomerNotFound):
		utils.NotFoundResponse(c, "customer")
	case errors.As(err, &validationErr):
		utils.BadRequestResponse(c, validationErr.Error(), gin.H{"field": validationErr.Field})
	default:
		utils.InternalErrorResponse(c, "")
	}
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, name), nil)
		return uuid.Nil, false
	}

	return id, true
}
