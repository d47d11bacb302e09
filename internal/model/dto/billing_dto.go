package dto

type CreateSessionRequest struct {
	// 未登录用户可以带邮箱发起结账，便于后续 webhook 按邮箱回链账号
	Email string `json:"email" binding:"omitempty,email"`
}

type CheckoutSessionInfo struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type SessionStatusInfo struct {
	Status        string `json:"status"`
	Customer      string `json:"customer"`
	Subscription  string `json:"subscription"`
	PaymentStatus string `json:"paymentStatus"`
	CustomerEmail string `json:"customerEmail,omitempty"`
}
