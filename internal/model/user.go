package model

import (
	"time"
)

// 订阅状态
const (
	SubscriptionFreemium = "freemium"
	SubscriptionPremium  = "premium"
)

type User struct {
	ID                   int64      `gorm:"primaryKey" json:"id"`
	Email                string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash         *string    `gorm:"size:255" json:"-"`
	GoogleID             *string    `gorm:"column:google_id;size:50;uniqueIndex" json:"-"`
	SubscriptionStatus   string     `gorm:"size:20;default:freemium" json:"subscription_status"`
	UsageCount           int        `gorm:"default:0" json:"usage_count"`
	UsageLimit           int        `gorm:"default:10" json:"usage_limit"`
	LastResetDate        *time.Time `json:"last_reset_date,omitempty"`
	StripeCustomerID     *string    `gorm:"size:100;index" json:"-"`
	StripeSubscriptionID *string    `gorm:"size:100" json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsPremium 是否为付费用户
func (u *User) IsPremium() bool {
	return u.SubscriptionStatus == SubscriptionPremium
}
