package service

import (
	"github.com/qs3c/vidsum_go_server/config"
	"github.com/qs3c/vidsum_go_server/internal/model"
)

// Entitlement 订阅状态对应的权益：状态本身加上生效的每日配额上限
type Entitlement struct {
	Status     string
	UsageLimit int
}

// EntitlementResolver 订阅状态到配额上限的纯映射。
// QuotaService 读它解释 usage_limit，SubscriptionSync 写它落库。
type EntitlementResolver struct {
	cfg *config.Config
}

func NewEntitlementResolver(cfg *config.Config) *EntitlementResolver {
	return &EntitlementResolver{cfg: cfg}
}

// Resolve 目标状态对应的权益。未知状态按 freemium 处理。
func (r *EntitlementResolver) Resolve(status string) Entitlement {
	if status == model.SubscriptionPremium {
		return Entitlement{
			Status:     model.SubscriptionPremium,
			UsageLimit: r.cfg.Quota.UnlimitedSentinel(),
		}
	}
	return Entitlement{
		Status:     model.SubscriptionFreemium,
		UsageLimit: r.cfg.Quota.FreeLimit(),
	}
}

// Fields 权益对应的定向更新列。降级时清空订阅 ID，升级时写入。
func (r *EntitlementResolver) Fields(e Entitlement, subscriptionID *string) map[string]interface{} {
	fields := map[string]interface{}{
		"subscription_status": e.Status,
		"usage_limit":         e.UsageLimit,
	}
	if e.Status == model.SubscriptionPremium {
		if subscriptionID != nil {
			fields["stripe_subscription_id"] = *subscriptionID
		}
	} else {
		fields["stripe_subscription_id"] = nil
	}
	return fields
}
