// internal/services/product_service_test.go
package services

import (
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksplit/stocksplit-backend/internal/models"
	"github.com/stocksplit/stocksplit-backend/internal/utils"
)

func newProductInput() *ProductInput {
	return &ProductInput{
		Name:                 "Widget",
		Quantity:             10,
		BuyingPrice:          decimal.NewFromInt(60),
		SellingPrice:         decimal.NewFromInt(100),
		OwnerSplitPercent:    30,
		InvestorSplitPercent: 70,
		LowStockThreshold:    5,
	}
}

func TestProductCreate(t *testing.T) {
	t.Run("owner creates with a generated code", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewProductService(db, NewAuthorizationService(db))

		owner := createUser(t, db, "boss", models.UserRoleOwner)

		product, err := svc.Create(owner.ID, newProductInput())
		require.NoError(t, err)

		assert.Equal(t, owner.ID, product.InvestorID)
		assert.Regexp(t, regexp.MustCompile(`^BOS\d{4}$`), product.Code)
		assert.Equal(t, 30, product.OwnerSplitPercent)
	})

	t.Run("owner registers goods on behalf of an investor", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewProductService(db, NewAuthorizationService(db))

		owner := createUser(t, db, "boss", models.UserRoleOwner)
		alice := createUser(t, db, "alice", models.UserRoleInvestor)

		input := newProductInput()
		input.InvestorID = &alice.ID

		product, err := svc.Create(owner.ID, input)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, product.InvestorID)
		assert.Regexp(t, regexp.MustCompile(`^ALI\d{4}$`), product.Code)
	})

	t.Run("investor cannot create directly", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewProductService(db, NewAuthorizationService(db))

		alice := createUser(t, db, "alice", models.UserRoleInvestor)

		_, err := svc.Create(alice.ID, newProductInput())
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("splits must sum to one hundred", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewProductService(db, NewAuthorizationService(db))

		owner := createUser(t, db, "boss", models.UserRoleOwner)

		input := newProductInput()
		input.OwnerSplitPercent = 40

		_, err := svc.Create(owner.ID, input)
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestProductUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db, NewAuthorizationService(db))

	owner := createUser(t, db, "boss", models.UserRoleOwner)
	alice := createUser(t, db, "alice", models.UserRoleInvestor)
	product := createProduct(t, db, alice, productOpts{quantity: 5})

	t.Run("owner edits keep code and ownership", func(t *testing.T) {
		input := newProductInput()
		input.Name = "Widget Mk2"
		input.Quantity = 25

		updated, err := svc.Update(owner.ID, product.ID, input)
		require.NoError(t, err)
		assert.Equal(t, "Widget Mk2", updated.Name)

		reloaded := reloadProduct(t, db, product.ID)
		assert.Equal(t, 25, reloaded.Quantity)
		assert.Equal(t, product.Code, reloaded.Code)
		assert.Equal(t, alice.ID, reloaded.InvestorID)
	})

	t.Run("investor update is routed through approval instead", func(t *testing.T) {
		_, err := svc.Update(alice.ID, product.ID, newProductInput())
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestProductFind(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db, NewAuthorizationService(db))

	alice := createUser(t, db, "alice", models.UserRoleInvestor)
	widget := createProduct(t, db, alice, productOpts{name: "Blue Widget", quantity: 5})
	createProduct(t, db, alice, productOpts{name: "Gadget", quantity: 5})

	t.Run("exact code match ignores case", func(t *testing.T) {
		found, err := svc.Find(widget.Code)
		require.NoError(t, err)
		assert.Equal(t, widget.ID, found.ID)
	})

	t.Run("name substring match ignores case", func(t *testing.T) {
		found, err := svc.Find("blue wid")
		require.NoError(t, err)
		assert.Equal(t, widget.ID, found.ID)
	})

	t.Run("no hit returns not found", func(t *testing.T) {
		_, err := svc.Find("doohickey")
		assert.ErrorIs(t, err, ErrProductNotFound)

		_, err = svc.Find("")
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestGetProducts(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db, NewAuthorizationService(db))

	owner := createUser(t, db, "boss", models.UserRoleOwner)
	alice := createUser(t, db, "alice", models.UserRoleInvestor)
	carol := createUser(t, db, "carol", models.UserRoleInvestor)
	staff := createUser(t, db, "bob", models.UserRoleStaff)

	createProduct(t, db, alice, productOpts{name: "Widget", quantity: 5})
	createProduct(t, db, carol, productOpts{name: "Gadget", quantity: 5})

	params := utils.PaginationParams{Page: 1, Limit: 10, Sort: "created_at", Order: "desc"}

	t.Run("owner and staff see the whole store", func(t *testing.T) {
		for _, actor := range []*models.User{owner, staff} {
			_, total, err := svc.GetProducts(actor.ID, params)
			require.NoError(t, err)
			assert.EqualValues(t, 2, total)
		}
	})

	t.Run("investor sees only their own goods", func(t *testing.T) {
		products, total, err := svc.GetProducts(alice.ID, params)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, products, 1)
		assert.Equal(t, "Widget", products[0].Name)
	})

	t.Run("search narrows by name", func(t *testing.T) {
		search := params
		search.Search = "gadg"

		products, total, err := svc.GetProducts(owner.ID, search)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, products, 1)
		assert.Equal(t, "Gadget", products[0].Name)
	})
}
