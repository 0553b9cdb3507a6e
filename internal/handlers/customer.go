// internal/handlers/customer.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stocksplit/stocksplit-backend/internal/services"
	"github.com/stocksplit/stocksplit-backend/internal/utils"
)

type CustomerHandler struct {
	customerService *services.CustomerService
}

func NewCustomerHandler(customerService *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// GET /customers
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	customers, total, err := h.customerService.GetCustomers(userID, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(customers, total, params))
}

// GET /customers/:id
func (h *CustomerHandler) GetCustomerProfile(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	customerID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	customer, sales, err := h.customerService.GetCustomerProfile(userID, customerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"customer": customer,
		"sales":    sales,
	})
}
