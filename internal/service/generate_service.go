package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/qs3c/vidsum_go_server/internal/model/dto"
	"github.com/qs3c/vidsum_go_server/internal/pkg/generation"
)

var ErrUpstreamGeneration = errors.New("生成服务暂时不可用")

// GenerateService 生成入口：先原子消费配额，再调用上游生成，
// 上游失败时退还这一次配额。
type GenerateService struct {
	quotaService *QuotaService
	generator    generation.Generator
}

func NewGenerateService(quotaService *QuotaService, generator generation.Generator) *GenerateService {
	return &GenerateService{
		quotaService: quotaService,
		generator:    generator,
	}
}

// Generate 为用户生成一次摘要。配额不足返回 ErrQuotaExceeded，
// 并在响应里携带当前计数快照。
func (s *GenerateService) Generate(ctx context.Context, userID int64, req *dto.GenerateRequest) (*dto.GenerateResponse, error) {
	result, err := s.quotaService.IncrementIfAllowed(userID)
	if err != nil {
		return nil, err
	}
	if !result.Allowed {
		return &dto.GenerateResponse{Usage: result.Usage}, ErrQuotaExceeded
	}

	text, err := s.generator.Summarize(ctx, req.Transcript, generation.Options{
		Language: req.Language,
		Format:   req.Format,
	})
	if err != nil {
		// 没产出就不算消费
		if refundErr := s.quotaService.RefundUsage(userID); refundErr != nil {
			log.Printf("Failed to refund usage for user %d: %v", userID, refundErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamGeneration, err)
	}

	return &dto.GenerateResponse{
		Text:  text,
		Usage: result.Usage,
	}, nil
}
