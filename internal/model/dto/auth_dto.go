package dto

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

type UserInfo struct {
	ID                 int64      `json:"id"`
	Email              string     `json:"email"`
	SubscriptionStatus string     `json:"subscription_status"`
	CreatedAt          string     `json:"created_at,omitempty"`
	Usage              *UsageInfo `json:"usage,omitempty"`
}
