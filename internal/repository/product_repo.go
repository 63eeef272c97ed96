package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"pcmarket_dev_v1_202608/internal/model"
)

// ErrNotFound 行不存在
// 对应托管后端的 "no row found"，上层把它当作"不存在"而不是故障
var ErrNotFound = errors.New("记录不存在")

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// 基础 CRUD
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	HardDelete(ctx context.Context, id int64) error

	// 列表查询
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	ListActive(ctx context.Context) ([]model.Product, error)
	ListBySeller(ctx context.Context, sellerID int64, page, pageSize int) ([]model.Product, int64, error)
	ListStaleDrafts(ctx context.Context, olderThanDays int, limit int) ([]model.Product, error)

	// 统计
	CountBySellerAndStatus(ctx context.Context, sellerID int64) (map[string]int64, error)

	// 事务
	WithTx(tx *gorm.DB) ProductRepository
	Transaction(ctx context.Context, fn func(txRepo ProductRepository) error) error
}

// ==================== 过滤条件 ====================

// ProductFilter 商品查询条件（数据库侧粗筛，精细过滤走 discovery 管道）
type ProductFilter struct {
	SellerID int64
	Status   string
	Category string
	Keyword  string
	Page     int
	PageSize int
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// HardDelete 物理删除，删除事件是不可逆的终态
func (r *productRepo) HardDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&model.Product{}, id).Error
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.SellerID > 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Keyword != "" {
		query = query.Where("name LIKE ?", "%"+filter.Keyword+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&products).Error

	return products, total, err
}

// ListActive 买家侧全量在售商品，discovery 管道的输入
func (r *productRepo) ListActive(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusActive).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) ListBySeller(ctx context.Context, sellerID int64, page, pageSize int) ([]model.Product, int64, error) {
	return r.List(ctx, ProductFilter{
		SellerID: sellerID,
		Page:     page,
		PageSize: pageSize,
	})
}

// ListStaleDrafts 查询长期未动的草稿，供清理任务回收
func (r *productRepo) ListStaleDrafts(ctx context.Context, olderThanDays int, limit int) ([]model.Product, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusDraft).
		Where("updated_at < ?", cutoff).
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepo) CountBySellerAndStatus(ctx context.Context, sellerID int64) (map[string]int64, error) {
	type result struct {
		Status string
		Count  int64
	}
	var results []result

	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Select("status, COUNT(*) as count").
		Where("seller_id = ?", sellerID).
		Group("status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int64)
	for _, r := range results {
		stats[r.Status] = r.Count
	}
	return stats, nil
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{db: tx}
}

func (r *productRepo) Transaction(ctx context.Context, fn func(txRepo ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
