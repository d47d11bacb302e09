package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/vidsum_go_server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	today := time.Now().UTC().Truncate(24 * time.Hour)
	user := &model.User{
		Email:              fmt.Sprintf("test_%d@example.com", time.Now().UnixNano()),
		PasswordHash:       &passwordHash,
		SubscriptionStatus: model.SubscriptionFreemium,
		UsageCount:         0,
		UsageLimit:         10,
		LastResetDate:      &today,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithPremium 设置为付费订阅
func WithPremium(limit int) func(*model.User) {
	return func(u *model.User) {
		u.SubscriptionStatus = model.SubscriptionPremium
		u.UsageLimit = limit
	}
}

// WithSubscription 设置订阅状态与额度
func WithSubscription(status string, limit int) func(*model.User) {
	return func(u *model.User) {
		u.SubscriptionStatus = status
		u.UsageLimit = limit
	}
}

// WithUsage 设置已使用次数
func WithUsage(used int) func(*model.User) {
	return func(u *model.User) {
		u.UsageCount = used
	}
}

// WithLastResetDate 设置上次清零日期
func WithLastResetDate(date time.Time) func(*model.User) {
	return func(u *model.User) {
		u.LastResetDate = &date
	}
}

// WithStripeCustomer 绑定 Stripe 客户
func WithStripeCustomer(customerID string) func(*model.User) {
	return func(u *model.User) {
		u.StripeCustomerID = &customerID
	}
}

// WithGoogleID 绑定 Google 账号
func WithGoogleID(googleID string) func(*model.User) {
	return func(u *model.User) {
		u.GoogleID = &googleID
	}
}

// TestProcessedEvent 创建已处理事件记录
func TestProcessedEvent(t *testing.T, db *gorm.DB, eventID, eventType string, seenAt time.Time) *model.ProcessedEvent {
	t.Helper()

	event := &model.ProcessedEvent{
		EventID:   eventID,
		EventType: eventType,
		SeenAt:    seenAt,
	}

	if err := db.Create(event).Error; err != nil {
		t.Fatalf("Failed to create test processed event: %v", err)
	}

	return event
}
