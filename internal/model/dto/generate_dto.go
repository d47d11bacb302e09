package dto

type GenerateRequest struct {
	Transcript string `json:"transcript" binding:"required"`
	Language   string `json:"language"`
	Format     string `json:"format"` // summary / outline / key_points
}

type GenerateResponse struct {
	Text  string    `json:"text"`
	Usage UsageInfo `json:"usage"`
}
