// internal/handlers/testutil_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stocksplit/stocksplit-backend/internal/models"
	"github.com/stocksplit/stocksplit-backend/internal/services"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Customer{},
		&models.Sale{},
		&models.Payout{},
		&models.ChangeRequest{},
		&models.AuditLog{},
	))

	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("Sup3rSecret!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createProduct(t *testing.T, db *gorm.DB, investor *models.User, name string, quantity int) *models.Product {
	t.Helper()

	product := &models.Product{
		InvestorID:           investor.ID,
		Name:                 name,
		Code:                 models.GenerateProductCode(investor.Username),
		Quantity:             quantity,
		BuyingPrice:          decimal.NewFromInt(60),
		SellingPrice:         decimal.NewFromInt(100),
		OwnerSplitPercent:    models.DefaultOwnerSplitPercent,
		InvestorSplitPercent: models.DefaultInvestorSplitPercent,
		LowStockThreshold:    5,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// asUser stands in for the auth middleware, injecting the identity the JWT
// would carry.
func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", user.ID.String())
		c.Set("username", user.Username)
		c.Set("role", string(user.Role))
		c.Next()
	}
}

type testEnv struct {
	db *gorm.DB

	authorizationService *services.AuthorizationService
	productService       *services.ProductService
	approvalService      *services.ApprovalService
	customerService      *services.CustomerService
	settlementService    *services.SettlementService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	authorization := services.NewAuthorizationService(db)
	customers := services.NewCustomerService(db, authorization)

	return &testEnv{
		db:                   db,
		authorizationService: authorization,
		productService:       services.NewProductService(db, authorization),
		approvalService:      services.NewApprovalService(db, authorization),
		customerService:      customers,
		settlementService:    services.NewSettlementService(db, authorization, customers, nil),
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
