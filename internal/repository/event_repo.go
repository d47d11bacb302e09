package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/vidsum_go_server/internal/model"
)

type ProcessedEventRepository struct {
	db *gorm.DB
}

func NewProcessedEventRepository(db *gorm.DB) *ProcessedEventRepository {
	return &ProcessedEventRepository{db: db}
}

// Exists 事件是否已处理
func (r *ProcessedEventRepository) Exists(eventID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.ProcessedEvent{}).Where("event_id = ?", eventID).Count(&count).Error
	return count > 0, err
}

// Insert 记录已处理事件。唯一约束冲突视为"别的实例先记了一笔"，
// 返回 false 而不是错误。
func (r *ProcessedEventRepository) Insert(eventID, eventType string) (bool, error) {
	event := &model.ProcessedEvent{
		EventID:   eventID,
		EventType: eventType,
		SeenAt:    time.Now().UTC(),
	}
	err := r.db.Create(event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PruneBefore 删除早于给定时间的记录，返回删除条数
func (r *ProcessedEventRepository) PruneBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("seen_at < ?", cutoff).Delete(&model.ProcessedEvent{})
	return result.RowsAffected, result.Error
}

// Count 记录总数
func (r *ProcessedEventRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.ProcessedEvent{}).Count(&count).Error
	return count, err
}
