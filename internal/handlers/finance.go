// internal/handlers/finance.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocksplit/stocksplit-backend/internal/i18n"
	"github.com/stocksplit/stocksplit-backend/internal/services"
	"github.com/stocksplit/stocksplit-backend/internal/utils"
)

type FinanceHandler struct {
	financeService *services.FinanceService
	storageService *services.StorageService
}

func NewFinanceHandler(financeService *services.FinanceService, storageService *services.StorageService) *FinanceHandler {
	return &FinanceHandler{
		financeService: financeService,
		storageService: storageService,
	}
}

// GET /finance/balance/:investorID
func (h *FinanceHandler) GetInvestorBalance(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	investorID, ok := parseUUIDParam(c, "investorID")
	if !ok {
		return
	}

	balance, err := h.financeService.GetInvestorBalance(userID, investorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"investor_id": balance.InvestorID,
		"earned":      balance.Earned.StringFixed(2),
		"paid":        balance.Paid.StringFixed(2),
		"due":         balance.Due.StringFixed(2),
	})
}

// GET /finance/owner-income (owner)
func (h *FinanceHandler) GetOwnerIncome(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	income, err := h.financeService.GetOwnerNetIncome(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"net_income": income.StringFixed(2),
	})
}

// POST /payouts (owner)
//
// Accepts multipart form data so a proof image (bank slip, transfer
// screenshot) can be attached alongside the amount.
func (h *FinanceHandler) RecordPayout(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return
	}

	investorID, err := uuid.Parse(c.PostForm("investor_id"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "investor_id"), nil)
		return
	}

	amount, err := decimal.NewFromString(c.PostForm("amount"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyPayoutInvalidAmount), nil)
		return
	}

	input := &services.RecordPayoutInput{
		InvestorID: investorID,
		Amount:     amount,
		Notes:      c.PostForm("notes"),
	}

	if file, header, err := c.Request.FormFile("proof"); err == nil {
		defer file.Close()

		options := h.storageService.GetDefaultUploadOptions("payout_proofs")
		result, err := h.storageService.UploadFile(file, header, options)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
			return
		}
		input.ProofURL = result.URL
	}

	payout, err := h.financeService.RecordPayout(userID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPayoutRecorded),
		"payout":  payout,
	})
}

// GET /payouts?investor_id=
func (h *FinanceHandler) GetPayouts(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return
	}

	var investorID *uuid.UUID
	if raw := c.Query("investor_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "investor_id"), nil)
			return
		}
		investorID = &parsed
	}

	params := utils.GetPaginationParams(c)

	payouts, total, err := h.financeService.GetPayouts(userID, investorID, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(payouts, total, params))
}

// GET /dashboard
func (h *FinanceHandler) GetDashboard(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	data, err := h.financeService.GetDashboard(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, data)
}
