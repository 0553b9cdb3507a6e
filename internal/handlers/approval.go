// internal/handlers/approval.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stocksplit/stocksplit-backend/internal/i18n"
	"github.com/stocksplit/stocksplit-backend/internal/services"
	"github.com/stocksplit/stocksplit-backend/internal/utils"
)

type ApprovalHandler struct {
	approvalService *services.ApprovalService
}

func NewApprovalHandler(approvalService *services.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{
		approvalService: approvalService,
	}
}

// POST /change-requests
func (h *ApprovalHandler) SubmitRequest(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return
	}

	var input services.SubmitRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.approvalService.Submit(userID, &input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestSubmitted),
		"request": request,
	})
}

// GET /change-requests/mine
func (h *ApprovalHandler) GetMyRequests(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	requests, total, err := h.approvalService.GetMyRequests(userID, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(requests, total, params))
}

// GET /change-requests/pending (owner)
func (h *ApprovalHandler) GetPendingRequests(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	requests, total, err := h.approvalService.GetPendingRequests(userID, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(requests, total, params))
}

// PUT /change-requests/:id/approve (owner)
func (h *ApprovalHandler) ApproveRequest(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return
	}

	requestID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.approvalService.Approve(userID, requestID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestApproved),
		"request": request,
	})
}

// PUT /change-requests/:id/reject (owner)
func (h *ApprovalHandler) RejectRequest(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return
	}

	requestID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.approvalService.Reject(userID, requestID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestRejected),
		"request": request,
	})
}

// POST /change-requests/approve-all (owner)
func (h *ApprovalHandler) ApproveAllRequests(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	count, err := h.approvalService.ApproveAll(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"approved": count,
	})
}

// POST /change-requests/reject-all (owner)
func (h *ApprovalHandler) RejectAllRequests(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	count, err := h.approvalService.RejectAll(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"rejected": count,
	})
}
