package service

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/vidsum_go_server/config"
	"github.com/qs3c/vidsum_go_server/internal/model"
	"github.com/qs3c/vidsum_go_server/internal/model/dto"
	"github.com/qs3c/vidsum_go_server/internal/repository"
)

var (
	ErrUserNotFound  = errors.New("用户不存在")
	ErrQuotaExceeded = errors.New("今日生成配额已用完")
)

type QuotaService struct {
	userRepo *repository.UserRepository
	cfg      *config.Config
}

func NewQuotaService(userRepo *repository.UserRepository, cfg *config.Config) *QuotaService {
	return &QuotaService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// utcToday 当前 UTC 日历日（零点）
func utcToday() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// ResetIfNeeded 跨天惰性重置。last_reset_date 缺失或早于今天（UTC）时清零计数。
// 同日 usage_count > usage_limit 属于计数损坏，强制重置兜底并告警。
func (s *QuotaService) ResetIfNeeded(userID int64) (bool, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	today := utcToday()
	if user.LastResetDate == nil || user.LastResetDate.Before(today) {
		if err := s.userRepo.ResetUsage(userID, today); err != nil {
			return false, err
		}
		return true, nil
	}

	// 计数损坏兜底：正常路径下原子自增不可能越过上限
	if user.UsageCount > user.UsageLimit {
		log.Printf("Quota corruption detected for user %d: used=%d limit=%d, forcing reset",
			userID, user.UsageCount, user.UsageLimit)
		if err := s.userRepo.ForceResetUsage(userID, today); err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}

// GetUsage 获取当日配额快照（先执行惰性重置）
func (s *QuotaService) GetUsage(userID int64) (*dto.UsageInfo, error) {
	if _, err := s.ResetIfNeeded(userID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return buildUsageInfo(user), nil
}

// IncrementIfAllowed 消费一次配额。检查与自增在存储层同一条 UPDATE 内完成，
// 两个并发请求不可能同时越过上限。返回的快照始终是自增后（或拒绝时）的状态。
func (s *QuotaService) IncrementIfAllowed(userID int64) (*dto.IncrementResult, error) {
	if _, err := s.ResetIfNeeded(userID); err != nil {
		return nil, err
	}

	allowed, err := s.userRepo.IncrementUsageIfAllowed(userID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &dto.IncrementResult{
		Allowed: allowed,
		Usage:   *buildUsageInfo(user),
	}, nil
}

// RefundUsage 退还一次配额（生成调用失败时使用）
func (s *QuotaService) RefundUsage(userID int64) error {
	return s.userRepo.DecrementUsage(userID)
}

func buildUsageInfo(user *model.User) *dto.UsageInfo {
	remaining := user.UsageLimit - user.UsageCount
	if remaining < 0 {
		remaining = 0
	}

	info := &dto.UsageInfo{
		Used:               user.UsageCount,
		Limit:              user.UsageLimit,
		Remaining:          remaining,
		SubscriptionStatus: user.SubscriptionStatus,
	}
	if user.LastResetDate != nil {
		info.ResetDate = user.LastResetDate.Format("2006-01-02")
	}
	return info
}
