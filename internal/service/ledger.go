package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/qs3c/vidsum_go_server/internal/repository"
)

const ledgerCacheTTL = 24 * time.Hour

// IdempotencyLedger 已处理 webhook 事件的台账。数据库唯一约束是判重的
// 唯一依据；Redis 只是热路径缓存，用来挡住短时间内的重复投递，
// 缓存不可用时直接落到数据库，不影响正确性。
type IdempotencyLedger struct {
	events *repository.ProcessedEventRepository
	rdb    *redis.Client
}

// NewIdempotencyLedger rdb 可以为 nil（无 Redis 部署）
func NewIdempotencyLedger(events *repository.ProcessedEventRepository, rdb *redis.Client) *IdempotencyLedger {
	return &IdempotencyLedger{
		events: events,
		rdb:    rdb,
	}
}

func ledgerKey(eventID string) string {
	return fmt.Sprintf("webhook:event:%s", eventID)
}

// Seen 事件是否已经处理过
func (l *IdempotencyLedger) Seen(ctx context.Context, eventID string) (bool, error) {
	if l.rdb != nil {
		n, err := l.rdb.Exists(ctx, ledgerKey(eventID)).Result()
		if err == nil && n > 0 {
			return true, nil
		}
		// 缓存出错只记一笔，继续查库
	}
	return l.events.Exists(eventID)
}

// Record 标记事件已处理。并发下两个实例同时 Record 同一事件时，
// 唯一约束保证只有一条落库，两边都按成功处理。
func (l *IdempotencyLedger) Record(ctx context.Context, eventID, eventType string) error {
	if _, err := l.events.Insert(eventID, eventType); err != nil {
		return err
	}
	if l.rdb != nil {
		// 缓存写失败不影响台账
		l.rdb.Set(ctx, ledgerKey(eventID), 1, ledgerCacheTTL)
	}
	return nil
}

// Prune 清理超过保留期的记录
func (l *IdempotencyLedger) Prune(retentionDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	return l.events.PruneBefore(cutoff)
}
