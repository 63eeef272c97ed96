package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"pcmarket_dev_v1_202608/internal/model"
	"pcmarket_dev_v1_202608/internal/repository"
)

// ==================== 行为统计汇总任务 ====================

// AnalyticsRollupTask 把当天的行为事件滚动汇总进日表
// 每小时覆盖写当天的快照，天然幂等
type AnalyticsRollupTask struct {
	analyticsRepo repository.AnalyticsRepository
	Cron          *cron.Cron
}

func NewAnalyticsRollupTask(analyticsRepo repository.AnalyticsRepository) *AnalyticsRollupTask {
	return &AnalyticsRollupTask{
		analyticsRepo: analyticsRepo,
		Cron:          cron.New(cron.WithSeconds()),
	}
}

// Start 启动定时任务
func (t *AnalyticsRollupTask) Start() {
	// 首次执行，补齐重启前落下的快照
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		log.Println("[Task] 服务启动，正在执行首次行为统计汇总...")
		t.rollupJob(ctx)
	}()

	// 每小时第 5 分钟执行
	_, err := t.Cron.AddFunc("0 5 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		t.rollupJob(ctx)
	})
	if err != nil {
		log.Fatalf("无法启动行为统计汇总任务: %v", err)
	}

	t.Cron.Start()
	log.Println("行为统计汇总任务已启动 (每小时汇总一次)")
}

// Stop 停止定时任务
func (t *AnalyticsRollupTask) Stop() {
	t.Cron.Stop()
}

// rollupJob 汇总当天有事件的商品
func (t *AnalyticsRollupTask) rollupJob(ctx context.Context) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	ids, err := t.analyticsRepo.ListProductIDsSince(ctx, dayStart)
	if err != nil {
		log.Printf("[Cron] 查询当天活跃商品失败: %v", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	statDate := dayStart.Format("2006-01-02")
	updated := 0

	for _, id := range ids {
		select {
		case <-ctx.Done():
			log.Println("[Cron] 汇总任务超时停止")
			return
		default:
		}

		counts, err := t.analyticsRepo.CountByProductBetween(ctx, id, dayStart, now)
		if err != nil {
			log.Printf("[Cron] 商品 %d 计数失败: %v", id, err)
			continue
		}

		err = t.analyticsRepo.UpsertDailyStat(ctx, &model.ProductDailyStat{
			ProductID:   id,
			StatDate:    statDate,
			Views:       counts[model.EventTypeView],
			Clicks:      counts[model.EventTypeClick],
			Shares:      counts[model.EventTypeShare],
			Impressions: counts[model.EventTypeImpression],
		})
		if err != nil {
			log.Printf("[Cron] 商品 %d 日表写入失败: %v", id, err)
			continue
		}
		updated++
	}

	log.Printf("[Cron] 本轮行为统计汇总完成，更新 %d 个商品 (%s)", updated, statDate)
}
