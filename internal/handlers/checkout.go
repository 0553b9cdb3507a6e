// internal/handlers/checkout.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stocksplit/stocksplit-backend/internal/i18n"
	"github.com/stocksplit/stocksplit-backend/internal/services"
	"github.com/stocksplit/stocksplit-backend/internal/utils"
)

type CheckoutHandler struct {
	settlementService *services.SettlementService
}

func NewCheckoutHandler(settlementService *services.SettlementService) *CheckoutHandler {
	return &CheckoutHandler{
		settlementService: settlementService,
	}
}

// POST /checkout
//
// Settles the whole cart in one transaction: every line either sells or the
// cart fails as a unit with the stock untouched.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	result, err := h.settlementService.SettleCart(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":        i18n.T(lang, i18n.KeySaleCompleted),
		"transaction_id": result.TransactionID,
		"sales":          result.Sales,
		"customer":       result.Customer,
	})
}
