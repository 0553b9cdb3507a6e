// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stocksplit/stocksplit-backend/internal/config"
	"github.com/stocksplit/stocksplit-backend/internal/models"
	"github.com/stocksplit/stocksplit-backend/internal/utils"
)

func newAuthService(db *gorm.DB) *AuthService {
	utils.SetJWTSecret("test-secret")
	cfg := &config.Config{
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	}
	return NewAuthService(db, cfg)
}

func TestRegister(t *testing.T) {
	t.Run("investor self registers", func(t *testing.T) {
		db := newTestDB(t)
		svc := newAuthService(db)

		resp, err := svc.Register(&RegisterRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "Sup3rSecret!",
			Role:     models.UserRoleInvestor,
		})
		require.NoError(t, err)

		assert.Equal(t, models.UserRoleInvestor, resp.User.Role)
		assert.Equal(t, models.UserStatusActive, resp.User.Status)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "Bearer", resp.TokenType)

		claims, err := utils.ValidateJWT(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "investor", claims.Role)
	})

	t.Run("owner role cannot self register", func(t *testing.T) {
		db := newTestDB(t)
		svc := newAuthService(db)

		_, err := svc.Register(&RegisterRequest{
			Username: "boss",
			Email:    "boss@example.com",
			Password: "Sup3rSecret!",
			Role:     models.UserRoleOwner,
		})
		assert.Error(t, err)
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		db := newTestDB(t)
		svc := newAuthService(db)
		createUser(t, db, "alice", models.UserRoleInvestor)

		_, err := svc.Register(&RegisterRequest{
			Username: "alice",
			Email:    "other@example.com",
			Password: "Sup3rSecret!",
			Role:     models.UserRoleInvestor,
		})
		assert.Error(t, err)
	})

	t.Run("weak password fails validation", func(t *testing.T) {
		db := newTestDB(t)
		svc := newAuthService(db)

		_, err := svc.Register(&RegisterRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "password",
			Role:     models.UserRoleInvestor,
		})
		assert.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	user := createUser(t, db, "alice", models.UserRoleInvestor)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := svc.Login(&LoginRequest{Username: "alice", Password: "Sup3rSecret!"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, resp.User.ID)
		assert.NotNil(t, resp.User.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(&LoginRequest{Username: "alice", Password: "WrongPass1!"})
		assert.Error(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(&LoginRequest{Username: "nobody", Password: "Sup3rSecret!"})
		assert.Error(t, err)
	})

	t.Run("suspended account cannot log in", func(t *testing.T) {
		suspended := createUser(t, db, "mallory", models.UserRoleStaff)
		require.NoError(t, db.Model(suspended).Update("status", models.UserStatusSuspended).Error)

		_, err := svc.Login(&LoginRequest{Username: "mallory", Password: "Sup3rSecret!"})
		assert.Error(t, err)
	})
}

func TestRefreshToken(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	createUser(t, db, "alice", models.UserRoleInvestor)

	login, err := svc.Login(&LoginRequest{Username: "alice", Password: "Sup3rSecret!"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, login.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshToken("not-a-token")
	assert.Error(t, err)
}
