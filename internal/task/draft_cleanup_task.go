package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"pcmarket_dev_v1_202608/internal/repository"
	"pcmarket_dev_v1_202608/internal/service"
)

// ==================== 陈旧草稿清理任务 ====================

// DraftCleanupTask 回收长期未发布的草稿
// 顺带删除草稿已上传的图片，兜底清理挂图中途失败留下的孤儿对象
type DraftCleanupTask struct {
	productRepo repository.ProductRepository
	storage     service.StorageServiceInterface
	Cron        *cron.Cron

	staleDays int // 超过多少天未更新视为陈旧
	batchSize int // 单轮最多处理条数
}

func NewDraftCleanupTask(productRepo repository.ProductRepository, storage service.StorageServiceInterface) *DraftCleanupTask {
	return &DraftCleanupTask{
		productRepo: productRepo,
		storage:     storage,
		Cron:        cron.New(cron.WithSeconds()),
		staleDays:   30,
		batchSize:   100,
	}
}

// Start 启动定时任务，每天凌晨 4 点执行
func (t *DraftCleanupTask) Start() {
	_, err := t.Cron.AddFunc("0 0 4 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		t.cleanupJob(ctx)
	})
	if err != nil {
		log.Fatalf("无法启动草稿清理任务: %v", err)
	}

	t.Cron.Start()
	log.Printf("草稿清理任务已启动 (每天 04:00，清理 %d 天未更新的草稿)", t.staleDays)
}

// Stop 停止定时任务
func (t *DraftCleanupTask) Stop() {
	t.Cron.Stop()
}

// cleanupJob 执行一轮清理
func (t *DraftCleanupTask) cleanupJob(ctx context.Context) {
	drafts, err := t.productRepo.ListStaleDrafts(ctx, t.staleDays, t.batchSize)
	if err != nil {
		log.Printf("[Cron] 陈旧草稿查询失败: %v", err)
		return
	}
	if len(drafts) == 0 {
		return
	}

	log.Printf("[Cron] 发现 %d 个陈旧草稿，开始清理", len(drafts))

	cleaned := 0
	for _, draft := range drafts {
		select {
		case <-ctx.Done():
			log.Println("[Cron] 清理任务超时停止")
			return
		default:
		}

		// 先删存储对象，失败只记日志不阻断
		for _, url := range draft.Images {
			if err := t.storage.Delete(ctx, url); err != nil {
				log.Printf("[Cron] 草稿 %d 图片删除失败: %v", draft.ID, err)
			}
		}

		if err := t.productRepo.HardDelete(ctx, draft.ID); err != nil {
			log.Printf("[Cron] 草稿 %d 删除失败: %v", draft.ID, err)
			continue
		}
		cleaned++
	}

	log.Printf("[Cron] 本轮草稿清理完成，共清理 %d 条", cleaned)
}
