package dto

// UsageInfo 当日配额快照。字段名沿用扩展前端的约定（camelCase）。
type UsageInfo struct {
	Used               int    `json:"used"`
	Limit              int    `json:"limit"`
	Remaining          int    `json:"remaining"`
	SubscriptionStatus string `json:"subscriptionStatus"`
	ResetDate          string `json:"resetDate,omitempty"`
}

// IncrementResult 原子自增的结果。Allowed=false 表示本次请求被配额拒绝，
// Usage 始终携带当前计数快照。
type IncrementResult struct {
	Allowed bool      `json:"allowed"`
	Usage   UsageInfo `json:"usage"`
}
