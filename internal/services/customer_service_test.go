// internal/services/customer_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksplit/stocksplit-backend/internal/models"
	"github.com/stocksplit/stocksplit-backend/internal/utils"
)

func TestCustomerUpsert(t *testing.T) {
	db := newTestDB(t)
	svc := NewCustomerService(db, NewAuthorizationService(db))

	first, err := svc.UpsertTx(db, "Karim", "01711111111")
	require.NoError(t, err)

	second, err := svc.UpsertTx(db, "Karim Uddin", "01711111111")
	require.NoError(t, err)

	// Same mobile means the same row, with the latest name.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Karim Uddin", second.Name)

	var count int64
	db.Model(&models.Customer{}).Count(&count)
	assert.EqualValues(t, 1, count)

	other, err := svc.UpsertTx(db, "Rahima", "01822222222")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestGetCustomers(t *testing.T) {
	db := newTestDB(t)
	svc := NewCustomerService(db, NewAuthorizationService(db))

	staff := createUser(t, db, "bob", models.UserRoleStaff)

	_, err := svc.UpsertTx(db, "Karim", "01711111111")
	require.NoError(t, err)
	_, err = svc.UpsertTx(db, "Rahima", "01822222222")
	require.NoError(t, err)

	params := utils.PaginationParams{Page: 1, Limit: 10, Sort: "name", Order: "asc"}

	t.Run("staff may list customers", func(t *testing.T) {
		customers, total, err := svc.GetCustomers(staff.ID, params)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, customers, 2)
	})

	t.Run("search matches name or mobile", func(t *testing.T) {
		byName := params
		byName.Search = "rahi"
		customers, _, err := svc.GetCustomers(staff.ID, byName)
		require.NoError(t, err)
		require.Len(t, customers, 1)
		assert.Equal(t, "Rahima", customers[0].Name)

		byMobile := params
		byMobile.Search = "01711"
		customers, _, err = svc.GetCustomers(staff.ID, byMobile)
		require.NoError(t, err)
		require.Len(t, customers, 1)
		assert.Equal(t, "Karim", customers[0].Name)
	})

	t.Run("suspended user is denied", func(t *testing.T) {
		suspended := createUser(t, db, "mallory", models.UserRoleStaff)
		require.NoError(t, db.Model(suspended).Update("status", models.UserStatusSuspended).Error)

		_, _, err := svc.GetCustomers(suspended.ID, params)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestGetCustomerProfile(t *testing.T) {
	db := newTestDB(t)
	authorization := NewAuthorizationService(db)
	customers := NewCustomerService(db, authorization)
	settlement := NewSettlementService(db, authorization, customers, nil)

	alice := createUser(t, db, "alice", models.UserRoleInvestor)
	staff := createUser(t, db, "bob", models.UserRoleStaff)
	product := createProduct(t, db, alice, productOpts{quantity: 10})

	cart := &CheckoutRequest{
		Lines:          []CartLine{{ProductCode: product.Code, Quantity: 1}},
		PaymentMethod:  models.PaymentMethodCash,
		CustomerName:   "Karim",
		CustomerMobile: "01711111111",
	}
	result, err := settlement.SettleCart(staff.ID, cart)
	require.NoError(t, err)
	_, err = settlement.SettleCart(staff.ID, cart)
	require.NoError(t, err)

	t.Run("profile carries the purchase history", func(t *testing.T) {
		customer, sales, err := customers.GetCustomerProfile(staff.ID, result.Customer.ID)
		require.NoError(t, err)

		assert.Equal(t, "Karim", customer.Name)
		require.Len(t, sales, 2)
		assert.Equal(t, product.ID, sales[0].ProductID)
	})

	t.Run("unknown customer is not found", func(t *testing.T) {
		_, _, err := customers.GetCustomerProfile(staff.ID, uuid.New())
		assert.ErrorIs(t, err, ErrCustomerNotFound)
	})
}
