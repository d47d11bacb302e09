package billing

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v79"
)

// Client 支付侧的最小接口。显式注入而不是使用 stripe 包级全局 Key，
// 测试里用假实现替换。
type Client interface {
	CreateCustomer(ctx context.Context, email string) (*stripe.Customer, error)
	GetCustomer(ctx context.Context, customerID string) (*stripe.Customer, error)
	// FindCustomerByEmail 按邮箱查找已有客户，找不到返回 nil, nil
	FindCustomerByEmail(ctx context.Context, email string) (*stripe.Customer, error)
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
}

// IsNotFound 提供方返回的"资源不存在"错误（如已被删除的客户）
func IsNotFound(err error) bool {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == 404
	}
	return false
}
