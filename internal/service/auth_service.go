package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/vidsum_go_server/config"
	"github.com/qs3c/vidsum_go_server/internal/model"
	"github.com/qs3c/vidsum_go_server/internal/model/dto"
	"github.com/qs3c/vidsum_go_server/internal/pkg/jwt"
	"github.com/qs3c/vidsum_go_server/internal/pkg/oauth"
	"github.com/qs3c/vidsum_go_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
)

type AuthService struct {
	userRepo    *repository.UserRepository
	cfg         *config.Config
	googleOAuth *oauth.GoogleOAuth
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
		googleOAuth: oauth.NewGoogleOAuth(
			cfg.OAuth.Google.ClientID,
			cfg.OAuth.Google.ClientSecret,
			cfg.OAuth.Google.RedirectURI,
		),
	}
}

// Register 邮箱注册，新用户一律 freemium 默认配额
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(req.Email)

	exists, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	passwordStr := string(hashedPassword)
	today := time.Now().UTC().Truncate(24 * time.Hour)

	user := &model.User{
		Email:              email,
		PasswordHash:       &passwordStr,
		SubscriptionStatus: model.SubscriptionFreemium,
		UsageLimit:         s.cfg.Quota.FreeLimit(),
		LastResetDate:      &today,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

// Login 邮箱登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		// OAuth 账号没有本地密码
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

// GetGoogleAuthURL 获取 Google 授权 URL
func (s *AuthService) GetGoogleAuthURL(state string) string {
	return s.googleOAuth.GetAuthURL(state)
}

// GoogleCallback 处理 Google OAuth 回调，按 google_id / 邮箱匹配或新建账号
func (s *AuthService) GoogleCallback(ctx context.Context, code string) (*dto.LoginResponse, error) {
	token, err := s.googleOAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	googleUser, err := s.googleOAuth.GetUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get google user: %w", err)
	}

	user, err := s.userRepo.GetByGoogleID(googleUser.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if user == nil {
		// 同邮箱已有账号则绑定，否则新建
		user, err = s.userRepo.GetByEmail(googleUser.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if user != nil {
			if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
				"google_id": googleUser.ID,
			}); err != nil {
				return nil, err
			}
		} else {
			today := time.Now().UTC().Truncate(24 * time.Hour)
			user = &model.User{
				Email:              strings.ToLower(googleUser.Email),
				GoogleID:           &googleUser.ID,
				SubscriptionStatus: model.SubscriptionFreemium,
				UsageLimit:         s.cfg.Quota.FreeLimit(),
				LastResetDate:      &today,
			}
			if err := s.userRepo.Create(user); err != nil {
				return nil, fmt.Errorf("failed to create user: %w", err)
			}
		}
	}

	return s.issueToken(user)
}

// GetProfile 获取用户信息（含配额快照）
func (s *AuthService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	info := buildUserInfo(user)
	info.Usage = buildUsageInfo(user)
	info.CreatedAt = user.CreatedAt.Format(time.RFC3339)
	return info, nil
}

func (s *AuthService) issueToken(user *model.User) (*dto.LoginResponse, error) {
	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  buildUserInfo(user),
	}, nil
}

func buildUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:                 user.ID,
		Email:              user.Email,
		SubscriptionStatus: user.SubscriptionStatus,
	}
}
