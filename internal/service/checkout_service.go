package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v79"
	"gorm.io/gorm"

	"github.com/qs3c/vidsum_go_server/config"
	"github.com/qs3c/vidsum_go_server/internal/model"
	"github.com/qs3c/vidsum_go_server/internal/model/dto"
	"github.com/qs3c/vidsum_go_server/internal/pkg/billing"
	"github.com/qs3c/vidsum_go_server/internal/repository"
)

var ErrBillingNotConfigured = errors.New("支付未配置")

// CheckoutService 创建/查询 Stripe Checkout 会话。
// 登录用户复用已绑定的客户 ID，游客允许匿名发起，
// 留给 SubscriptionSync 的邮箱回链兜底。
type CheckoutService struct {
	userRepo *repository.UserRepository
	billing  billing.Client
	cfg      *config.Config
}

func NewCheckoutService(userRepo *repository.UserRepository, billingClient billing.Client, cfg *config.Config) *CheckoutService {
	return &CheckoutService{
		userRepo: userRepo,
		billing:  billingClient,
		cfg:      cfg,
	}
}

// CreateSession 创建订阅结账会话。userID 为 nil 时按游客处理，
// guestEmail 可选（游客带邮箱时预先建客户，方便后续回链）。
func (s *CheckoutService) CreateSession(ctx context.Context, userID *int64, guestEmail string) (*dto.CheckoutSessionInfo, error) {
	if s.cfg.Stripe.PriceID == "" {
		return nil, ErrBillingNotConfigured
	}

	var customerID string
	var err error

	if userID != nil {
		customerID, err = s.ensureCustomer(ctx, *userID)
		if err != nil {
			return nil, err
		}
	} else if guestEmail != "" {
		customer, err := s.billing.CreateCustomer(ctx, guestEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to create guest customer: %w", err)
		}
		customerID = customer.ID
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.cfg.Stripe.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.Stripe.SuccessURL),
		CancelURL:  stripe.String(s.cfg.Stripe.CancelURL),
	}
	// 完全匿名时不指定客户。subscription 模式下 Stripe 总会在
	// 结账完成时创建客户并收集邮箱，customer_creation 参数
	// 只在 payment/setup 模式下合法，不能传。
	if customerID != "" {
		params.Customer = stripe.String(customerID)
	}

	sess, err := s.billing.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &dto.CheckoutSessionInfo{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}

// GetSessionStatus 只读透传会话状态
func (s *CheckoutService) GetSessionStatus(ctx context.Context, sessionID string) (*dto.SessionStatusInfo, error) {
	sess, err := s.billing.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}

	info := &dto.SessionStatusInfo{
		Status:        string(sess.Status),
		PaymentStatus: string(sess.PaymentStatus),
	}
	if sess.Customer != nil {
		info.Customer = sess.Customer.ID
	}
	if sess.Subscription != nil {
		info.Subscription = sess.Subscription.ID
	}
	if sess.CustomerDetails != nil {
		info.CustomerEmail = sess.CustomerDetails.Email
	}
	return info, nil
}

// ensureCustomer 为登录用户准备可用的 Stripe 客户 ID：
// 已绑定的先校验有效性，提供方查无此客户时丢弃旧 ID 重建；
// 未绑定时优先按邮箱复用提供方已有客户，否则新建并持久化绑定。
func (s *CheckoutService) ensureCustomer(ctx context.Context, userID int64) (string, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		customer, err := s.billing.GetCustomer(ctx, *user.StripeCustomerID)
		if err == nil && !customer.Deleted {
			s.warnOnEmailMismatch(ctx, user, customer.ID)
			return customer.ID, nil
		}
		if err != nil && !billing.IsNotFound(err) {
			return "", fmt.Errorf("failed to validate customer: %w", err)
		}
		// 客户在提供方侧已不存在，丢弃过期绑定
		log.Printf("Stale stripe customer %s for user %d, recreating", *user.StripeCustomerID, user.ID)
	}

	existing, err := s.billing.FindCustomerByEmail(ctx, user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to search customer by email: %w", err)
	}
	if existing != nil {
		if err := s.userRepo.LinkStripeCustomer(user.ID, existing.ID); err != nil {
			return "", err
		}
		return existing.ID, nil
	}

	customer, err := s.billing.CreateCustomer(ctx, user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	if err := s.userRepo.LinkStripeCustomer(user.ID, customer.ID); err != nil {
		return "", err
	}
	return customer.ID, nil
}

// warnOnEmailMismatch 已绑定客户有效、但提供方在同邮箱下另有客户时，
// 只告警不改绑——疑似重复客户，留给人工对账处理。
func (s *CheckoutService) warnOnEmailMismatch(ctx context.Context, user *model.User, boundID string) {
	existing, err := s.billing.FindCustomerByEmail(ctx, user.Email)
	if err != nil || existing == nil {
		return
	}
	if existing.ID != boundID {
		log.Printf("Stripe has customer %s for email of user %d but user is bound to %s, possible duplicate",
			existing.ID, user.ID, boundID)
	}
}
