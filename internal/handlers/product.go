// internal/handlers/product.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stocksplit/stocksplit-backend/internal/i18n"
	"github.com/stocksplit/stocksplit-backend/internal/models"
	"github.com/stocksplit/stocksplit-backend/internal/services"
	"github.com/stocksplit/stocksplit-backend/internal/utils"
)

type ProductHandler struct {
	productService       *services.ProductService
	approvalService      *services.ApprovalService
	authorizationService *services.AuthorizationService
}

func NewProductHandler(productService *services.ProductService, approvalService *services.ApprovalService, authorizationService *services.AuthorizationService) *ProductHandler {
	return &ProductHandler{
		productService:       productService,
		approvalService:      approvalService,
		authorizationService: authorizationService,
	}
}

// POST /products
//
// The owner creates directly. An investor's create is not rejected but
// converted into a pending change request for the owner to approve.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return
	}

	var input services.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	actor, err := h.authorizationService.LoadActor(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	switch h.authorizationService.Authorize(actor, services.OpProductCreate) {
	case services.Allow:
		product, err := h.productService.Create(userID, &input)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		utils.CreatedResponse(c, gin.H{
			"message": i18n.T(lang, i18n.KeyProductCreated),
			"product": product,
		})
	case services.RequireApproval:
		request, err := h.approvalService.Submit(userID, &services.SubmitRequestInput{
			RequestType:       models.RequestTypeNew,
			Name:              input.Name,
			Quantity:          input.Quantity,
			BuyingPrice:       input.BuyingPrice,
			SellingPrice:      input.SellingPrice,
			LowStockThreshold: input.LowStockThreshold,
		})
		if err != nil {
			handleServiceError(c, err)
			return
		}
		utils.CreatedResponse(c, gin.H{
			"message": i18n.T(lang, i18n.KeyRequestSubmitted),
			"request": request,
		})
	default:
		utils.ForbiddenResponse(c, "")
	}
}

// PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return
	}

	productID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input services.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	actor, err := h.authorizationService.LoadActor(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	switch h.authorizationService.Authorize(actor, services.OpProductUpdate) {
	case services.Allow:
		product, err := h.productService.Update(userID, productID, &input)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		utils.SuccessResponse(c, gin.H{
			"message": i18n.T(lang, i18n.KeyProductUpdated),
			"product": product,
		})
	case services.RequireApproval:
		request, err := h.approvalService.Submit(userID, &services.SubmitRequestInput{
			RequestType:       models.RequestTypeEdit,
			ProductID:         &productID,
			Name:              input.Name,
			Quantity:          input.Quantity,
			BuyingPrice:       input.BuyingPrice,
			SellingPrice:      input.SellingPrice,
			LowStockThreshold: input.LowStockThreshold,
		})
		if err != nil {
			handleServiceError(c, err)
			return
		}
		utils.CreatedResponse(c, gin.H{
			"message": i18n.T(lang, i18n.KeyRequestSubmitted),
			"request": request,
		})
	default:
		utils.ForbiddenResponse(c, "")
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	products, total, err := h.productService.GetProducts(userID, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, params))
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	if _, ok := actorID(c); !ok {
		return
	}

	productID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(productID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product": product,
	})
}

// GET /products/lookup?q=
//
// Point-of-sale lookup: exact code match first, then name substring, both
// case-insensitive.
func (h *ProductHandler) LookupProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	if _, ok := actorID(c); !ok {
		return
	}

	query := c.Query("q")
	if query == "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "q"), nil)
		return
	}

	product, err := h.productService.Find(query)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product": product,
	})
}
