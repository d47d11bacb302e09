package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v79"
	"gorm.io/gorm"

	"github.com/qs3c/vidsum_go_server/internal/model"
	"github.com/qs3c/vidsum_go_server/internal/pkg/billing"
	"github.com/qs3c/vidsum_go_server/internal/repository"
)

// SubscriptionSync 消费 Stripe webhook 事件并回写用户权益。
// 状态迁移只看事件自身 payload 里的订阅状态，不依赖投递顺序；
// 同一事件 ID 的重复投递由台账拦截。
type SubscriptionSync struct {
	userRepo *repository.UserRepository
	resolver *EntitlementResolver
	ledger   *IdempotencyLedger
	billing  billing.Client
}

func NewSubscriptionSync(
	userRepo *repository.UserRepository,
	resolver *EntitlementResolver,
	ledger *IdempotencyLedger,
	billingClient billing.Client,
) *SubscriptionSync {
	return &SubscriptionSync{
		userRepo: userRepo,
		resolver: resolver,
		ledger:   ledger,
		billing:  billingClient,
	}
}

// HandleEvent 处理单个事件。返回错误只代表内部故障，
// 调用方（webhook handler）负责吞掉错误并向提供方确认。
func (s *SubscriptionSync) HandleEvent(ctx context.Context, event *stripe.Event) error {
	seen, err := s.ledger.Seen(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("failed to check event ledger: %w", err)
	}
	if seen {
		log.Printf("Webhook event %s already processed, skipping", event.ID)
		return nil
	}

	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		err = s.applySubscriptionEvent(ctx, event)
	case "customer.subscription.deleted":
		err = s.applySubscriptionDeleted(ctx, event)
	case "invoice.payment_succeeded":
		err = s.applyInvoicePaid(ctx, event)
	case "invoice.payment_failed":
		// 提供方会自行重试扣款，降级只通过订阅事件发生
		log.Printf("Webhook event %s: invoice payment failed, no state change", event.ID)
	default:
		log.Printf("Webhook event %s: ignoring type %s", event.ID, event.Type)
	}
	if err != nil {
		return err
	}

	return s.ledger.Record(ctx, event.ID, string(event.Type))
}

// applySubscriptionEvent 根据事件 payload 的订阅状态升降级
func (s *SubscriptionSync) applySubscriptionEvent(ctx context.Context, event *stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		return errors.New("subscription event missing customer id")
	}

	user, err := s.resolveUser(ctx, sub.Customer.ID)
	if err != nil {
		return err
	}
	if user == nil {
		log.Printf("Webhook event %s: no user for customer %s, dropping", event.ID, sub.Customer.ID)
		return nil
	}

	switch sub.Status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return s.applyEntitlement(user, model.SubscriptionPremium, &sub.ID)
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusUnpaid, stripe.SubscriptionStatusPastDue:
		return s.applyEntitlement(user, model.SubscriptionFreemium, nil)
	default:
		// incomplete 等中间态不动当前权益
		log.Printf("Webhook event %s: subscription status %s, no state change", event.ID, sub.Status)
		return nil
	}
}

func (s *SubscriptionSync) applySubscriptionDeleted(ctx context.Context, event *stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		return errors.New("subscription event missing customer id")
	}

	user, err := s.resolveUser(ctx, sub.Customer.ID)
	if err != nil {
		return err
	}
	if user == nil {
		log.Printf("Webhook event %s: no user for customer %s, dropping", event.ID, sub.Customer.ID)
		return nil
	}

	return s.applyEntitlement(user, model.SubscriptionFreemium, nil)
}

// applyInvoicePaid 支付成功时幂等地重申 premium（仅当发票挂着订阅）
func (s *SubscriptionSync) applyInvoicePaid(ctx context.Context, event *stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to unmarshal invoice: %w", err)
	}
	if invoice.Subscription == nil || invoice.Subscription.ID == "" {
		log.Printf("Webhook event %s: invoice without subscription, no state change", event.ID)
		return nil
	}
	if invoice.Customer == nil || invoice.Customer.ID == "" {
		return errors.New("invoice event missing customer id")
	}

	user, err := s.resolveUser(ctx, invoice.Customer.ID)
	if err != nil {
		return err
	}
	if user == nil {
		log.Printf("Webhook event %s: no user for customer %s, dropping", event.ID, invoice.Customer.ID)
		return nil
	}

	return s.applyEntitlement(user, model.SubscriptionPremium, &invoice.Subscription.ID)
}

func (s *SubscriptionSync) applyEntitlement(user *model.User, status string, subscriptionID *string) error {
	entitlement := s.resolver.Resolve(status)
	return s.userRepo.UpdateFields(user.ID, s.resolver.Fields(entitlement, subscriptionID))
}

// resolveUser 先按已绑定的客户 ID 查找；查不到时向提供方取客户邮箱，
// 按邮箱（大小写不敏感）回链本地账号并持久化绑定。两条路都找不到返回 nil。
func (s *SubscriptionSync) resolveUser(ctx context.Context, customerID string) (*model.User, error) {
	user, err := s.userRepo.GetByStripeCustomerID(customerID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer, err := s.billing.GetCustomer(ctx, customerID)
	if err != nil {
		if billing.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch customer %s: %w", customerID, err)
	}
	if customer.Email == "" {
		return nil, nil
	}

	user, err = s.userRepo.GetByEmail(customer.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := s.userRepo.LinkStripeCustomer(user.ID, customerID); err != nil {
		return nil, err
	}
	customerIDCopy := customerID
	user.StripeCustomerID = &customerIDCopy
	log.Printf("Linked stripe customer %s to user %d by email", customerID, user.ID)
	return user, nil
}
