package cron

import (
	"log"
	"time"

	"github.com/qs3c/vidsum_go_server/internal/repository"
	"github.com/qs3c/vidsum_go_server/internal/service"
)

// Service 进程内定时任务：UTC 零点批量清零过期计数（兜底，
// 正常路径是请求内的惰性重置），以及每日清理 webhook 去重台账。
type Service struct {
	userRepo      *repository.UserRepository
	ledger        *service.IdempotencyLedger
	retentionDays int
	stopChan      chan struct{}
}

func NewService(userRepo *repository.UserRepository, ledger *service.IdempotencyLedger, retentionDays int) *Service {
	return &Service{
		userRepo:      userRepo,
		ledger:        ledger,
		retentionDays: retentionDays,
		stopChan:      make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runDailyJobs()
	log.Println("Cron service started (usage sweep + ledger prune)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

func (s *Service) runDailyJobs() {
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.sweepUsage()
			s.pruneLedger()
			timer.Reset(24 * time.Hour)
		}
	}
}

// sweepUsage 批量清零跨天未重置的计数
func (s *Service) sweepUsage() {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	affected, err := s.userRepo.ResetAllOutdated(today)
	if err != nil {
		log.Printf("Failed to sweep outdated usage counters: %v", err)
		return
	}
	if affected > 0 {
		log.Printf("Usage sweep reset %d users", affected)
	}
}

// pruneLedger 清理超过保留期的 webhook 事件记录
func (s *Service) pruneLedger() {
	pruned, err := s.ledger.Prune(s.retentionDays)
	if err != nil {
		log.Printf("Failed to prune event ledger: %v", err)
		return
	}
	if pruned > 0 {
		log.Printf("Pruned %d processed webhook events", pruned)
	}
}

// RunNow 立即执行一轮（用于测试或手动触发）
func (s *Service) RunNow() {
	s.sweepUsage()
	s.pruneLedger()
}
