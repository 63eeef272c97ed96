package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pcmarket_dev_v1_202608/internal/model"
	"pcmarket_dev_v1_202608/internal/repository"
)

// ==================== 辅助函数 ====================

func setupTaskTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = db.AutoMigrate(
		&model.Product{},
		&model.AnalyticsEvent{},
		&model.ProductDailyStat{},
	)
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

type fakeStorage struct {
	mu      sync.Mutex
	deleted []string
}

func (s *fakeStorage) SaveBase64(ctx context.Context, data, prefix string) (string, error) {
	return "https://cdn.example.com/" + prefix + ".jpg", nil
}

func (s *fakeStorage) Delete(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, url)
	return nil
}

func seedDraft(t *testing.T, db *gorm.DB, name string, images []string, updatedAt time.Time) *model.Product {
	p := &model.Product{
		SellerID:    1,
		Name:        name,
		Description: "测试商品",
		Category:    "显卡",
		Brand:       "NVIDIA",
		ModelName:   name,
		Condition:   model.ConditionA,
		Status:      model.StatusDraft,
		Images:      datatypes.JSONSlice[string](images),
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("创建测试草稿失败: %v", err)
	}
	if err := db.Model(p).UpdateColumn("updated_at", updatedAt).Error; err != nil {
		t.Fatalf("回写更新时间失败: %v", err)
	}
	return p
}

// ==================== DraftCleanupTask 测试 ====================

func TestDraftCleanupTask_CleanStale(t *testing.T) {
	db := setupTaskTestDB(t)
	productRepo := repository.NewProductRepository(db)
	storage := &fakeStorage{}

	now := time.Now()
	stale := seedDraft(t, db, "老草稿", []string{
		"https://cdn.example.com/1.jpg",
		"https://cdn.example.com/2.jpg",
	}, now.AddDate(0, 0, -40))
	fresh := seedDraft(t, db, "新草稿", []string{"https://cdn.example.com/3.jpg"}, now.AddDate(0, 0, -3))

	task := NewDraftCleanupTask(productRepo, storage)
	task.cleanupJob(context.Background())

	// 老草稿被删，图片对象一并清掉
	if _, err := productRepo.GetByID(context.Background(), stale.ID); err == nil {
		t.Error("陈旧草稿应被删除")
	}
	if len(storage.deleted) != 2 {
		t.Errorf("应删除 2 个图片对象，实际 %d", len(storage.deleted))
	}

	// 新草稿不受影响
	if _, err := productRepo.GetByID(context.Background(), fresh.ID); err != nil {
		t.Errorf("未过期草稿不应被清理: %v", err)
	}
}

func TestDraftCleanupTask_SkipsPublished(t *testing.T) {
	db := setupTaskTestDB(t)
	productRepo := repository.NewProductRepository(db)
	storage := &fakeStorage{}

	now := time.Now()
	published := seedDraft(t, db, "老在售", []string{"https://cdn.example.com/1.jpg"}, now.AddDate(0, 0, -40))
	db.Model(published).UpdateColumn("status", model.StatusActive)
	db.Model(published).UpdateColumn("updated_at", now.AddDate(0, 0, -40))

	task := NewDraftCleanupTask(productRepo, storage)
	task.cleanupJob(context.Background())

	if _, err := productRepo.GetByID(context.Background(), published.ID); err != nil {
		t.Errorf("非草稿状态不应被清理: %v", err)
	}
	if len(storage.deleted) != 0 {
		t.Errorf("不应删除任何图片，实际 %d", len(storage.deleted))
	}
}

// ==================== AnalyticsRollupTask 测试 ====================

func TestAnalyticsRollupTask_Rollup(t *testing.T) {
	db := setupTaskTestDB(t)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	ctx := context.Background()

	// 当天事件：3 次浏览 + 1 次点击
	events := []string{
		model.EventTypeView, model.EventTypeView, model.EventTypeView, model.EventTypeClick,
	}
	for _, et := range events {
		if err := analyticsRepo.Insert(ctx, &model.AnalyticsEvent{ProductID: 7, EventType: et}); err != nil {
			t.Fatalf("写入事件失败: %v", err)
		}
	}

	task := NewAnalyticsRollupTask(analyticsRepo)
	task.rollupJob(ctx)

	stats, err := analyticsRepo.GetDailyStats(ctx, 7, 7)
	if err != nil {
		t.Fatalf("读取日表失败: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("应生成 1 条日表快照，实际 %d", len(stats))
	}
	if stats[0].Views != 3 || stats[0].Clicks != 1 {
		t.Errorf("计数错误: views=%d clicks=%d", stats[0].Views, stats[0].Clicks)
	}
	if stats[0].StatDate != time.Now().Format("2006-01-02") {
		t.Errorf("统计日期错误: %s", stats[0].StatDate)
	}
}

func TestAnalyticsRollupTask_Idempotent(t *testing.T) {
	db := setupTaskTestDB(t)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	ctx := context.Background()

	analyticsRepo.Insert(ctx, &model.AnalyticsEvent{ProductID: 7, EventType: model.EventTypeView})

	task := NewAnalyticsRollupTask(analyticsRepo)
	task.rollupJob(ctx)

	// 再来一条事件后重跑，应覆盖同一行而不是新增
	analyticsRepo.Insert(ctx, &model.AnalyticsEvent{ProductID: 7, EventType: model.EventTypeView})
	task.rollupJob(ctx)

	stats, err := analyticsRepo.GetDailyStats(ctx, 7, 7)
	if err != nil {
		t.Fatalf("读取日表失败: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("重跑不应新增行，实际 %d 行", len(stats))
	}
	if stats[0].Views != 2 {
		t.Errorf("重跑后计数应为最新值 2，实际 %d", stats[0].Views)
	}
}

// ==================== 任务生命周期测试 ====================

func TestTask_StartStop(t *testing.T) {
	db := setupTaskTestDB(t)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	task := NewAnalyticsRollupTask(analyticsRepo)
	task.Start()

	// 等首次执行的 goroutine 跑完
	time.Sleep(50 * time.Millisecond)
	task.Stop()

	entries := task.Cron.Entries()
	if len(entries) != 1 {
		t.Errorf("应注册 1 个定时项，实际 %d", len(entries))
	}
}
