package model

import (
	"time"
)

// ProcessedEvent webhook 事件去重记录。event_id 唯一约束是幂等判断的依据，
// 多实例部署时共享同一张表即可。
type ProcessedEvent struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	EventID   string    `gorm:"size:100;uniqueIndex;not null" json:"event_id"`
	EventType string    `gorm:"size:100" json:"event_type"`
	SeenAt    time.Time `gorm:"index" json:"seen_at"`
}

func (ProcessedEvent) TableName() string {
	return "processed_events"
}
