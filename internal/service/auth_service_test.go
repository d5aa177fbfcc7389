package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/biznet/bn_server/config"
	"github.com/biznet/bn_server/internal/model"
	"github.com/biznet/bn_server/internal/model/dto"
	"github.com/biznet/bn_server/internal/pkg/jwt"
	"github.com/biznet/bn_server/internal/repository"
	"github.com/biznet/bn_server/internal/testutil"
)

const testJWTSecret = "test-secret-key"

func setupAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := &config.Config{}
	cfg.JWT.Secret = testJWTSecret
	cfg.JWT.ExpireHours = 24

	return NewAuthService(repository.NewUserRepository(db), cfg), db
}

func TestRegister(t *testing.T) {
	t.Run("creates the account and issues a token", func(t *testing.T) {
		svc, db := setupAuthService(t)

		resp, err := svc.Register(&dto.RegisterRequest{
			Username: "newmember",
			Email:    "newmember@example.com",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)

		assert.Equal(t, "newmember", resp.User.Username)
		assert.Equal(t, model.MembershipLevelNone, resp.User.MembershipLevel)
		assert.Len(t, resp.User.ReferralCode, 8)

		claims, err := jwt.ParseToken(resp.Token, testJWTSecret)
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, claims.UserID)

		// Password is stored hashed, never verbatim.
		var user model.User
		require.NoError(t, db.First(&user, resp.User.ID).Error)
		assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
		assert.NotEmpty(t, user.PasswordHash)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, db := setupAuthService(t)
		existing := testutil.TestUser(t, db)

		_, err := svc.Register(&dto.RegisterRequest{
			Username: "someoneelse",
			Email:    existing.Email,
			Password: "s3cret-pass",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc, db := setupAuthService(t)
		existing := testutil.TestUser(t, db)

		_, err := svc.Register(&dto.RegisterRequest{
			Username: existing.Username,
			Email:    "fresh@example.com",
			Password: "s3cret-pass",
		})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("referral code links the referrer", func(t *testing.T) {
		svc, db := setupAuthService(t)
		referrer := testutil.TestUser(t, db)

		resp, err := svc.Register(&dto.RegisterRequest{
			Username:     "referred",
			Email:        "referred@example.com",
			Password:     "s3cret-pass",
			ReferralCode: referrer.ReferralCode,
		})
		require.NoError(t, err)

		var user model.User
		require.NoError(t, db.First(&user, resp.User.ID).Error)
		require.NotNil(t, user.ReferredBy)
		assert.Equal(t, referrer.ID, *user.ReferredBy)
	})

	t.Run("unknown referral code", func(t *testing.T) {
		svc, _ := setupAuthService(t)

		_, err := svc.Register(&dto.RegisterRequest{
			Username:     "referred",
			Email:        "referred@example.com",
			Password:     "s3cret-pass",
			ReferralCode: "NOSUCH00",
		})
		assert.ErrorIs(t, err, ErrInvalidReferralCode)
	})
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		svc, _ := setupAuthService(t)

		_, err := svc.Register(&dto.RegisterRequest{
			Username: "member",
			Email:    "member@example.com",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)

		resp, err := svc.Login(&dto.LoginRequest{
			Email:    "member@example.com",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "member", resp.User.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _ := setupAuthService(t)

		_, err := svc.Register(&dto.RegisterRequest{
			Username: "member",
			Email:    "member@example.com",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)

		_, err = svc.Login(&dto.LoginRequest{
			Email:    "member@example.com",
			Password: "wrong-pass",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, _ := setupAuthService(t)

		_, err := svc.Login(&dto.LoginRequest{
			Email:    "nobody@example.com",
			Password: "s3cret-pass",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
