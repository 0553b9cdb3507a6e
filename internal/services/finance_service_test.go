// internal/services/finance_service_test.go
package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stocksplit/stocksplit-backend/internal/models"
	"github.com/stocksplit/stocksplit-backend/internal/utils"
)

// seedSale inserts a sale with frozen amounts directly, the way the
// settlement path would have written it.
func seedSale(t *testing.T, db *gorm.DB, product *models.Product, soldBy *models.User, quantity int, total, ownerCut, investorCut string) *models.Sale {
	t.Helper()

	sale := &models.Sale{
		ProductID:            product.ID,
		SoldByID:             soldBy.ID,
		Quantity:             quantity,
		TotalAmount:          mustDecimal(t, total),
		OwnerProfitAmount:    mustDecimal(t, ownerCut),
		InvestorProfitAmount: mustDecimal(t, investorCut),
		PaymentMethod:        models.PaymentMethodCash,
	}
	require.NoError(t, db.Create(sale).Error)
	return sale
}

func TestInvestorBalance(t *testing.T) {
	db := newTestDB(t)
	svc := NewFinanceService(db, NewAuthorizationService(db), nil)

	owner := createUser(t, db, "boss", models.UserRoleOwner)
	alice := createUser(t, db, "alice", models.UserRoleInvestor)
	carol := createUser(t, db, "carol", models.UserRoleInvestor)
	staff := createUser(t, db, "bob", models.UserRoleStaff)

	aliceProduct := createProduct(t, db, alice, productOpts{quantity: 50})
	carolProduct := createProduct(t, db, carol, productOpts{name: "Gadget", quantity: 50})

	seedSale(t, db, aliceProduct, staff, 2, "180", "18", "162")
	seedSale(t, db, aliceProduct, staff, 1, "100", "12", "88")
	seedSale(t, db, carolProduct, staff, 1, "100", "12", "88")

	require.NoError(t, db.Create(&models.Payout{
		InvestorID: alice.ID,
		RecordedBy: owner.ID,
		Amount:     mustDecimal(t, "100"),
	}).Error)

	t.Run("due is earned minus paid", func(t *testing.T) {
		balance, err := svc.GetInvestorBalance(owner.ID, alice.ID)
		require.NoError(t, err)

		assert.True(t, balance.Earned.Equal(mustDecimal(t, "250")), "earned = %s", balance.Earned)
		assert.True(t, balance.Paid.Equal(mustDecimal(t, "100")))
		assert.True(t, balance.Due.Equal(mustDecimal(t, "150")))
	})

	t.Run("overpayment drives due negative", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Payout{
			InvestorID: carol.ID,
			RecordedBy: owner.ID,
			Amount:     mustDecimal(t, "120"),
		}).Error)

		balance, err := svc.GetInvestorBalance(owner.ID, carol.ID)
		require.NoError(t, err)
		assert.True(t, balance.Due.Equal(mustDecimal(t, "-32")), "due = %s", balance.Due)
	})

	t.Run("investor reads own balance only", func(t *testing.T) {
		balance, err := svc.GetInvestorBalance(alice.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, balance.InvestorID)

		_, err = svc.GetInvestorBalance(alice.ID, carol.ID)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("staff cannot read balances", func(t *testing.T) {
		_, err := svc.GetInvestorBalance(staff.ID, staff.ID)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("investor with no history has zero balance", func(t *testing.T) {
		dave := createUser(t, db, "dave", models.UserRoleInvestor)

		balance, err := svc.GetInvestorBalance(owner.ID, dave.ID)
		require.NoError(t, err)
		assert.True(t, balance.Earned.IsZero())
		assert.True(t, balance.Paid.IsZero())
		assert.True(t, balance.Due.IsZero())
	})
}

func TestOwnerNetIncome(t *testing.T) {
	db := newTestDB(t)
	svc := NewFinanceService(db, NewAuthorizationService(db), nil)

	owner := createUser(t, db, "boss", models.UserRoleOwner)
	alice := createUser(t, db, "alice", models.UserRoleInvestor)
	product := createProduct(t, db, alice, productOpts{quantity: 50})

	seedSale(t, db, product, alice, 2, "180", "18", "162")
	seedSale(t, db, product, alice, 1, "90", "9", "81")

	income, err := svc.GetOwnerNetIncome(owner.ID)
	require.NoError(t, err)
	assert.True(t, income.Equal(mustDecimal(t, "27")), "income = %s", income)

	_, err = svc.GetOwnerNetIncome(alice.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestRecordPayout(t *testing.T) {
	db := newTestDB(t)
	svc := NewFinanceService(db, NewAuthorizationService(db), nil)

	owner := createUser(t, db, "boss", models.UserRoleOwner)
	alice := createUser(t, db, "alice", models.UserRoleInvestor)
	staff := createUser(t, db, "bob", models.UserRoleStaff)

	t.Run("owner records a payout", func(t *testing.T) {
		payout, err := svc.RecordPayout(owner.ID, &RecordPayoutInput{
			InvestorID: alice.ID,
			Amount:     mustDecimal(t, "500"),
			Notes:      "June settlement",
		})
		require.NoError(t, err)
		assert.Equal(t, alice.ID, payout.InvestorID)
		assert.Equal(t, owner.ID, payout.RecordedBy)
		assert.True(t, payout.Amount.Equal(mustDecimal(t, "500")))
	})

	t.Run("only the owner records payouts", func(t *testing.T) {
		_, err := svc.RecordPayout(alice.ID, &RecordPayoutInput{InvestorID: alice.ID, Amount: decimal.NewFromInt(10)})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("amount must be positive", func(t *testing.T) {
		for _, amount := range []string{"0", "-5"} {
			_, err := svc.RecordPayout(owner.ID, &RecordPayoutInput{
				InvestorID: alice.ID,
				Amount:     mustDecimal(t, amount),
			})
			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr, "amount %s", amount)
		}
	})

	t.Run("target must hold the investor role", func(t *testing.T) {
		_, err := svc.RecordPayout(owner.ID, &RecordPayoutInput{
			InvestorID: staff.ID,
			Amount:     decimal.NewFromInt(10),
		})
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestGetPayouts(t *testing.T) {
	db := newTestDB(t)
	svc := NewFinanceService(db, NewAuthorizationService(db), nil)

	owner := createUser(t, db, "boss", models.UserRoleOwner)
	alice := createUser(t, db, "alice", models.UserRoleInvestor)
	carol := createUser(t, db, "carol", models.UserRoleInvestor)

	for _, investor := range []*models.User{alice, alice, carol} {
		require.NoError(t, db.Create(&models.Payout{
			InvestorID: investor.ID,
			RecordedBy: owner.ID,
			Amount:     mustDecimal(t, "50"),
		}).Error)
	}

	params := utils.PaginationParams{Page: 1, Limit: 10, Sort: "created_at", Order: "desc"}

	t.Run("owner sees everything and can filter", func(t *testing.T) {
		_, total, err := svc.GetPayouts(owner.ID, nil, params)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)

		payouts, total, err := svc.GetPayouts(owner.ID, &carol.ID, params)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, payouts, 1)
		assert.Equal(t, carol.ID, payouts[0].InvestorID)
	})

	t.Run("investor is scoped to own history regardless of filter", func(t *testing.T) {
		payouts, total, err := svc.GetPayouts(alice.ID, &carol.ID, params)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		for _, payout := range payouts {
			assert.Equal(t, alice.ID, payout.InvestorID)
		}
	})
}

func TestDashboard(t *testing.T) {
	db := newTestDB(t)
	svc := NewFinanceService(db, NewAuthorizationService(db), nil)

	owner := createUser(t, db, "boss", models.UserRoleOwner)
	alice := createUser(t, db, "alice", models.UserRoleInvestor)
	carol := createUser(t, db, "carol", models.UserRoleInvestor)

	aliceProduct := createProduct(t, db, alice, productOpts{name: "Widget", quantity: 10})
	carolProduct := createProduct(t, db, carol, productOpts{name: "Gadget", quantity: 10})

	seedSale(t, db, aliceProduct, alice, 3, "270", "27", "243")
	seedSale(t, db, carolProduct, carol, 1, "90", "9", "81")

	t.Run("owner dashboard carries the payables table", func(t *testing.T) {
		data, err := svc.GetDashboard(owner.ID)
		require.NoError(t, err)

		assert.True(t, data.IsOwner)
		assert.Len(t, data.Products, 2)
		assert.Len(t, data.RecentSales, 2)
		require.Len(t, data.Financials, 2)
		require.NotNil(t, data.NetIncome)
		assert.True(t, data.NetIncome.Equal(mustDecimal(t, "36")))
		assert.Nil(t, data.Balance)
	})

	t.Run("investor dashboard is scoped to own slice", func(t *testing.T) {
		data, err := svc.GetDashboard(alice.ID)
		require.NoError(t, err)

		assert.False(t, data.IsOwner)
		require.Len(t, data.Products, 1)
		assert.Equal(t, "Widget", data.Products[0].Name)
		require.Len(t, data.RecentSales, 1)
		require.NotNil(t, data.Balance)
		assert.True(t, data.Balance.Earned.Equal(mustDecimal(t, "243")))
		assert.Equal(t, "Widget", data.TopProduct)
		assert.Nil(t, data.NetIncome)
		assert.Empty(t, data.Financials)
	})
}
