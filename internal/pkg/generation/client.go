package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/qs3c/vidsum_go_server/config"
)

// Options 单次生成的选项
type Options struct {
	Language string
	Format   string // summary / outline / key_points
}

// Generator 生成接口，测试里注入假实现
type Generator interface {
	Summarize(ctx context.Context, transcript string, opts Options) (string, error)
}

const defaultBaseURL = "https://api.openai.com/v1"

// OpenAIClient 调用 OpenAI chat completions 的实现。
// BaseURL 可配置，测试里指向 httptest server。
type OpenAIClient struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &OpenAIClient{
		apiKey:    cfg.APIKey,
		baseURL:   baseURL,
		model:     model,
		maxTokens: cfg.MaxTokens,
		client:    &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Summarize 生成视频转录的摘要文本
func (c *OpenAIClient) Summarize(ctx context.Context, transcript string, opts Options) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: buildSystemPrompt(opts)},
			{Role: "user", Content: transcript},
		},
		MaxTokens: c.maxTokens,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call generation api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generation api error (%d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("generation api error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("generation api returned no choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}

func buildSystemPrompt(opts Options) string {
	prompt := "You are a concise assistant that summarizes video transcripts."
	switch opts.Format {
	case "outline":
		prompt += " Produce a structured outline."
	case "key_points":
		prompt += " Produce a bullet list of key points."
	}
	if opts.Language != "" {
		prompt += " Respond in " + opts.Language + "."
	}
	return prompt
}
