package service

import (
	"context"
	"errors"

	"pcmarket_dev_v1_202608/internal/api/dto"
	"pcmarket_dev_v1_202608/internal/model"
	"pcmarket_dev_v1_202608/internal/repository"
)

// ==================== AnalyticsService 行为统计服务 ====================

// AnalyticsService 行为事件埋点与聚合
// 写入只追加，计数在读取时按事件类型聚合
type AnalyticsService struct {
	analyticsRepo repository.AnalyticsRepository
	productRepo   repository.ProductRepository
}

// NewAnalyticsService 创建行为统计服务
func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository, productRepo repository.ProductRepository) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepo: analyticsRepo,
		productRepo:   productRepo,
	}
}

// Track 记录一条行为事件，userID 为 0 表示游客
func (s *AnalyticsService) Track(ctx context.Context, userID int64, req *dto.TrackEventRequest) error {
	if !model.IsValidEventType(req.EventType) {
		return errors.New("事件类型无效")
	}

	// 商品必须存在，挡掉乱上报
	if _, err := s.productRepo.GetByID(ctx, req.ProductID); err != nil {
		return err
	}

	return s.analyticsRepo.Insert(ctx, &model.AnalyticsEvent{
		ProductID: req.ProductID,
		UserID:    userID,
		EventType: req.EventType,
	})
}

// Summarize 商品行为汇总，仅卖家本人可看
func (s *AnalyticsService) Summarize(ctx context.Context, userID, productID int64) (*dto.ProductStatsResponse, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsOwnedBy(userID) {
		return nil, ErrNotOwner
	}

	counts, err := s.analyticsRepo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	return &dto.ProductStatsResponse{
		ProductID:   productID,
		Views:       counts[model.EventTypeView],
		Clicks:      counts[model.EventTypeClick],
		Shares:      counts[model.EventTypeShare],
		Impressions: counts[model.EventTypeImpression],
	}, nil
}

// DailyStats 近 N 天逐日统计，数据来自汇总任务落的日表
func (s *AnalyticsService) DailyStats(ctx context.Context, userID, productID int64, days int) ([]dto.DailyStatVO, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsOwnedBy(userID) {
		return nil, ErrNotOwner
	}

	if days <= 0 || days > 90 {
		days = 30
	}

	stats, err := s.analyticsRepo.GetDailyStats(ctx, productID, days)
	if err != nil {
		return nil, err
	}

	vos := make([]dto.DailyStatVO, len(stats))
	for i, st := range stats {
		vos[i] = dto.DailyStatVO{
			StatDate:    st.StatDate,
			Views:       st.Views,
			Clicks:      st.Clicks,
			Shares:      st.Shares,
			Impressions: st.Impressions,
		}
	}
	return vos, nil
}
