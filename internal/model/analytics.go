package model

import "time"

// ==================== 事件类型 ====================

const (
	EventTypeView       = "view"
	EventTypeClick      = "click"
	EventTypeShare      = "share"
	EventTypeImpression = "impression"
)

// IsValidEventType 校验事件类型
func IsValidEventType(t string) bool {
	switch t {
	case EventTypeView, EventTypeClick, EventTypeShare, EventTypeImpression:
		return true
	}
	return false
}

// ==================== 数据库模型 ====================

// AnalyticsEvent 商品行为事件，只插入不修改，读取时聚合
type AnalyticsEvent struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ProductID int64     `gorm:"index:idx_product_type;not null"`
	UserID    int64     `gorm:"index;default:0"` // 0 表示未登录访客
	EventType string    `gorm:"size:16;index:idx_product_type;not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}

// ProductDailyStat 按天汇总的计数快照，由定时任务生成
type ProductDailyStat struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	ProductID   int64     `gorm:"uniqueIndex:idx_product_day;not null"`
	StatDate    string    `gorm:"size:10;uniqueIndex:idx_product_day;not null"` // YYYY-MM-DD
	Views       int64     `gorm:"default:0"`
	Clicks      int64     `gorm:"default:0"`
	Shares      int64     `gorm:"default:0"`
	Impressions int64     `gorm:"default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ProductDailyStat) TableName() string {
	return "product_daily_stats"
}
