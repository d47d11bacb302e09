package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qs3c/vidsum_go_server/internal/model"
)

func TestEntitlementResolver_Resolve(t *testing.T) {
	resolver := NewEntitlementResolver(testQuotaConfig())

	premium := resolver.Resolve(model.SubscriptionPremium)
	assert.Equal(t, model.SubscriptionPremium, premium.Status)
	assert.Equal(t, 999999, premium.UsageLimit)

	free := resolver.Resolve(model.SubscriptionFreemium)
	assert.Equal(t, model.SubscriptionFreemium, free.Status)
	assert.Equal(t, 10, free.UsageLimit)

	// 未知状态按 freemium 处理
	unknown := resolver.Resolve("whatever")
	assert.Equal(t, model.SubscriptionFreemium, unknown.Status)
	assert.Equal(t, 10, unknown.UsageLimit)
}

func TestEntitlementResolver_Fields(t *testing.T) {
	resolver := NewEntitlementResolver(testQuotaConfig())

	subID := "sub_123"
	fields := resolver.Fields(resolver.Resolve(model.SubscriptionPremium), &subID)
	assert.Equal(t, model.SubscriptionPremium, fields["subscription_status"])
	assert.Equal(t, 999999, fields["usage_limit"])
	assert.Equal(t, "sub_123", fields["stripe_subscription_id"])

	// 降级清空订阅 ID
	fields = resolver.Fields(resolver.Resolve(model.SubscriptionFreemium), nil)
	assert.Equal(t, model.SubscriptionFreemium, fields["subscription_status"])
	assert.Equal(t, 10, fields["usage_limit"])
	assert.Contains(t, fields, "stripe_subscription_id")
	assert.Nil(t, fields["stripe_subscription_id"])
}
