package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/vidsum_go_server/config"
	"github.com/qs3c/vidsum_go_server/internal/model"
	"github.com/qs3c/vidsum_go_server/internal/model/dto"
	"github.com/qs3c/vidsum_go_server/internal/pkg/jwt"
	"github.com/qs3c/vidsum_go_server/internal/repository"
	"github.com/qs3c/vidsum_go_server/internal/testutil"
)

func setupAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := testQuotaConfig()
	cfg.JWT = config.JWTConfig{
		Secret:      "test-secret-key",
		ExpireHours: 24,
	}

	userRepo := repository.NewUserRepository(db)
	return NewAuthService(userRepo, cfg), db
}

func TestAuthService_Register(t *testing.T) {
	service, _ := setupAuthService(t)

	resp, err := service.Register(&dto.RegisterRequest{
		Email:    "New.User@Example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, "new.user@example.com", resp.User.Email)
	assert.Equal(t, model.SubscriptionFreemium, resp.User.SubscriptionStatus)

	// 签出的 token 可以解析回用户 ID
	claims, err := jwt.ParseToken(resp.Token, "test-secret-key")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	service, _ := setupAuthService(t)

	_, err := service.Register(&dto.RegisterRequest{
		Email:    "dup@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	// 大小写不同也算同一邮箱
	_, err = service.Register(&dto.RegisterRequest{
		Email:    "DUP@example.com",
		Password: "password456",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthService_Register_DefaultQuota(t *testing.T) {
	service, db := setupAuthService(t)

	resp, err := service.Register(&dto.RegisterRequest{
		Email:    "quota@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	var user model.User
	require.NoError(t, db.First(&user, resp.User.ID).Error)
	assert.Equal(t, 10, user.UsageLimit)
	assert.Equal(t, 0, user.UsageCount)
	assert.NotNil(t, user.LastResetDate)
}

func TestAuthService_Login(t *testing.T) {
	service, _ := setupAuthService(t)

	_, err := service.Register(&dto.RegisterRequest{
		Email:    "login@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	resp, err := service.Login(&dto.LoginRequest{
		Email:    "login@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "login@example.com", resp.User.Email)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	service, _ := setupAuthService(t)

	_, err := service.Register(&dto.RegisterRequest{
		Email:    "wrongpw@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = service.Login(&dto.LoginRequest{
		Email:    "wrongpw@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	service, _ := setupAuthService(t)

	_, err := service.Login(&dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_OAuthOnlyAccount(t *testing.T) {
	service, db := setupAuthService(t)

	// OAuth 建的账号没有本地密码
	user := testutil.TestUser(t, db, testutil.WithGoogleID("google-123"))
	require.NoError(t, db.Model(user).Update("password_hash", nil).Error)

	_, err := service.Login(&dto.LoginRequest{
		Email:    user.Email,
		Password: "anything",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_GetProfile(t *testing.T) {
	service, db := setupAuthService(t)

	user := testutil.TestUser(t, db,
		testutil.WithEmail("profile@example.com"),
		testutil.WithUsage(4),
	)

	info, err := service.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "profile@example.com", info.Email)
	assert.Equal(t, model.SubscriptionFreemium, info.SubscriptionStatus)
	assert.NotEmpty(t, info.CreatedAt)
	require.NotNil(t, info.Usage)
	assert.Equal(t, 4, info.Usage.Used)
	assert.Equal(t, 6, info.Usage.Remaining)
}

func TestAuthService_GetProfile_NotFound(t *testing.T) {
	service, _ := setupAuthService(t)

	_, err := service.GetProfile(99999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
