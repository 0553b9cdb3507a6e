// internal/services/testutil_test.go
package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stocksplit/stocksplit-backend/internal/models"
)

// newTestDB opens an isolated in-memory sqlite database with the full schema
// migrated. The database lives as long as the test's connections do.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
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

type productOpts struct {
	name         string
	quantity     int
	buyingPrice  string
	sellingPrice string
	ownerSplit   int
	threshold    int
}

func createProduct(t *testing.T, db *gorm.DB, investor *models.User, opts productOpts) *models.Product {
	t.Helper()

	if opts.name == "" {
		opts.name = "Widget"
	}
	if opts.buyingPrice == "" {
		opts.buyingPrice = "60"
	}
	if opts.sellingPrice == "" {
		opts.sellingPrice = "100"
	}
	if opts.ownerSplit == 0 {
		opts.ownerSplit = models.DefaultOwnerSplitPercent
	}
	if opts.threshold == 0 {
		opts.threshold = 5
	}

	product := &models.Product{
		InvestorID:           investor.ID,
		Name:                 opts.name,
		Code:                 models.GenerateProductCode(investor.Username),
		Quantity:             opts.quantity,
		BuyingPrice:          mustDecimal(t, opts.buyingPrice),
		SellingPrice:         mustDecimal(t, opts.sellingPrice),
		OwnerSplitPercent:    opts.ownerSplit,
		InvestorSplitPercent: 100 - opts.ownerSplit,
		LowStockThreshold:    opts.threshold,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func reloadProduct(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Product {
	t.Helper()

	var product models.Product
	require.NoError(t, db.First(&product, id).Error)
	return &product
}
