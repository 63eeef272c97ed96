package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pcmarket_dev_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// AnalyticsRepository 行为事件仓储
// 事件表只插入不修改，计数在读取时聚合
type AnalyticsRepository interface {
	Insert(ctx context.Context, event *model.AnalyticsEvent) error
	CountByProduct(ctx context.Context, productID int64) (map[string]int64, error)
	CountByProductSince(ctx context.Context, productID int64, since time.Time) (map[string]int64, error)
	CountByProductBetween(ctx context.Context, productID int64, from, to time.Time) (map[string]int64, error)
	ListProductIDsSince(ctx context.Context, since time.Time) ([]int64, error)
	DeleteByProduct(ctx context.Context, productID int64) error

	UpsertDailyStat(ctx context.Context, stat *model.ProductDailyStat) error
	GetDailyStats(ctx context.Context, productID int64, days int) ([]model.ProductDailyStat, error)
}

// ==================== 仓储实现 ====================

type analyticsRepo struct {
	db *gorm.DB
}

// NewAnalyticsRepository 创建行为事件仓储
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepo{db: db}
}

func (r *analyticsRepo) Insert(ctx context.Context, event *model.AnalyticsEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *analyticsRepo) CountByProduct(ctx context.Context, productID int64) (map[string]int64, error) {
	return r.countWhere(ctx, r.db.WithContext(ctx).Where("product_id = ?", productID))
}

func (r *analyticsRepo) CountByProductSince(ctx context.Context, productID int64, since time.Time) (map[string]int64, error) {
	return r.countWhere(ctx, r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Where("created_at >= ?", since))
}

// CountByProductBetween 时间窗内按事件类型计数，日汇总任务用
func (r *analyticsRepo) CountByProductBetween(ctx context.Context, productID int64, from, to time.Time) (map[string]int64, error) {
	return r.countWhere(ctx, r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Where("created_at >= ? AND created_at < ?", from, to))
}

func (r *analyticsRepo) countWhere(ctx context.Context, query *gorm.DB) (map[string]int64, error) {
	type result struct {
		EventType string
		Count     int64
	}
	var results []result

	err := query.
		Model(&model.AnalyticsEvent{}).
		Select("event_type, COUNT(*) as count").
		Group("event_type").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, r := range results {
		counts[r.EventType] = r.Count
	}
	return counts, nil
}

// ListProductIDsSince 一段时间内有事件的商品，供汇总任务遍历
func (r *analyticsRepo) ListProductIDsSince(ctx context.Context, since time.Time) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.AnalyticsEvent{}).
		Where("created_at >= ?", since).
		Distinct("product_id").
		Pluck("product_id", &ids).Error
	return ids, err
}

// DeleteByProduct 商品删除后连带清掉事件行
func (r *analyticsRepo) DeleteByProduct(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&model.AnalyticsEvent{}).Error
}

func (r *analyticsRepo) UpsertDailyStat(ctx context.Context, stat *model.ProductDailyStat) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "stat_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"views", "clicks", "shares", "impressions", "updated_at",
		}),
	}).Create(stat).Error
}

func (r *analyticsRepo) GetDailyStats(ctx context.Context, productID int64, days int) ([]model.ProductDailyStat, error) {
	var stats []model.ProductDailyStat
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("stat_date DESC").
		Limit(days).
		Find(&stats).Error
	return stats, err
}
