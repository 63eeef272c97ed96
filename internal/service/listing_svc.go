package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/datatypes"

	"pcmarket_dev_v1_202608/internal/api/dto"
	"pcmarket_dev_v1_202608/internal/model"
	"pcmarket_dev_v1_202608/internal/repository"
)

// ==================== 外部服务依赖 ====================

// StorageServiceInterface 存储服务接口
type StorageServiceInterface interface {
	SaveBase64(ctx context.Context, base64Data, prefix string) (url string, err error)
	Delete(ctx context.Context, url string) error
}

// AIServiceInterface AI 定级服务接口
type AIServiceInterface interface {
	SuggestGrade(ctx context.Context, input *GradeInput) (*GradeSuggestion, error)
}

// ==================== 错误 ====================

var (
	// ErrNotOwner 非本人商品
	ErrNotOwner = errors.New("无权操作该商品")
)

// ==================== 服务实现 ====================

// ListingService 挂牌生命周期服务
// 所有状态变更都走 model.NextStatus 流转表，编辑不会改状态
type ListingService struct {
	productRepo   repository.ProductRepository
	analyticsRepo repository.AnalyticsRepository
	storage       StorageServiceInterface
	ai            AIServiceInterface
}

// NewListingService 创建挂牌服务
func NewListingService(
	productRepo repository.ProductRepository,
	analyticsRepo repository.AnalyticsRepository,
	storage StorageServiceInterface,
	ai AIServiceInterface,
) *ListingService {
	return &ListingService{
		productRepo:   productRepo,
		analyticsRepo: analyticsRepo,
		storage:       storage,
		ai:            ai,
	}
}

// getOwned 读取商品并校验所有权
func (s *ListingService) getOwned(ctx context.Context, userID, productID int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsOwnedBy(userID) {
		return nil, ErrNotOwner
	}
	return product, nil
}

// ==================== 向导第一步：创建草稿 ====================

// CreateDraft 创建草稿行
// 第一步只收基础字段，文本可以不全，发布时才做完整校验
func (s *ListingService) CreateDraft(ctx context.Context, sellerID int64, req *dto.CreateDraftRequest) (*model.Product, error) {
	if req.Category == "" {
		return nil, errors.New("请选择商品分类")
	}
	if !model.IsValidCondition(req.Condition) {
		return nil, errors.New("成色等级无效")
	}
	if req.Price < 0 {
		return nil, errors.New("价格不能为负")
	}

	product := &model.Product{
		SellerID:    sellerID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Brand:       req.Brand,
		ModelName:   req.Model,
		Condition:   req.Condition,
		Status:      model.StatusDraft,
		ListingType: model.ListingTypeMarketplace,
	}
	product.SetPrice(req.Price)

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("创建草稿失败: %v", err)
	}
	return product, nil
}

// ==================== 向导第二步：补图 ====================

// AttachImages 为草稿挂图
// 入参是混合列表：已是 http(s) 的 URL 原样保留（幂等，不会重传），
// 其余按 base64 图片数据上传；顺序与入参一致
func (s *ListingService) AttachImages(ctx context.Context, userID, productID int64, images []string) (*model.Product, error) {
	product, err := s.getOwned(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if _, err := model.NextStatus(product.Status, model.EventAttachImages); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, errors.New("至少上传一张图片")
	}
	if len(images) > model.MaxImages {
		return nil, errors.New("图片数量超出上限")
	}

	urls, err := s.resolveImages(ctx, productID, images)
	if err != nil {
		// 已传成功的对象留在存储里，由清理任务兜底回收
		return nil, err
	}

	product.Images = datatypes.JSONSlice[string](urls)
	if err := s.productRepo.UpdateFields(ctx, productID, map[string]interface{}{
		"images": product.Images,
	}); err != nil {
		return nil, fmt.Errorf("保存图片失败: %v", err)
	}
	return product, nil
}

// resolveImages 逐张处理，保持位置不变
func (s *ListingService) resolveImages(ctx context.Context, productID int64, images []string) ([]string, error) {
	urls := make([]string, len(images))
	for i, img := range images {
		if isRemoteURL(img) {
			urls[i] = img
			continue
		}
		prefix := fmt.Sprintf("listing_%d", productID)
		url, err := s.storage.SaveBase64(ctx, img, prefix)
		if err != nil {
			return nil, fmt.Errorf("第 %d 张图片上传失败: %v", i+1, err)
		}
		urls[i] = url
	}
	return urls, nil
}

func isRemoteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ==================== 向导第三步：AI 定级 ====================

// SuggestGrade 请求 AI 对草稿给出成色与价格建议，不落库
func (s *ListingService) SuggestGrade(ctx context.Context, userID, productID int64) (*GradeSuggestion, error) {
	product, err := s.getOwned(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if product.Status != model.StatusDraft {
		return nil, errors.New("只有草稿可以定级")
	}

	return s.ai.SuggestGrade(ctx, &GradeInput{
		Name:      product.Name,
		Category:  product.Category,
		Brand:     product.Brand,
		Model:     product.ModelName,
		Condition: product.Condition,
		Images:    []string(product.Images),
	})
}

// AcceptGrade 接受 AI 建议：写入建议价并打认证标记，仍停留在草稿
// 用户拒绝建议时客户端直接进入第四步，服务端无动作
func (s *ListingService) AcceptGrade(ctx context.Context, userID, productID int64, suggestion *GradeSuggestion) (*model.Product, error) {
	product, err := s.getOwned(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if product.Status != model.StatusDraft {
		return nil, errors.New("只有草稿可以定级")
	}
	if suggestion.SuggestedPrice < 0 {
		return nil, errors.New("价格不能为负")
	}

	product.SetPrice(suggestion.SuggestedPrice)
	if model.IsValidCondition(suggestion.Condition) {
		product.Condition = suggestion.Condition
	}
	product.AIGraded = true
	product.AISuggestedPrice = suggestion.SuggestedPrice

	if err := s.productRepo.UpdateFields(ctx, productID, map[string]interface{}{
		"price_amount":       product.PriceAmount,
		"price_divisor":      product.PriceDivisor,
		"condition":          product.Condition,
		"ai_graded":          true,
		"ai_suggested_price": suggestion.SuggestedPrice,
	}); err != nil {
		return nil, fmt.Errorf("保存定级结果失败: %v", err)
	}
	return product, nil
}

// ==================== 向导第四步：发布 ====================

// Publish 发布草稿
// 守卫规则与编辑页的"发布"按钮完全一致：全部文本字段非空、价格非负、1-10 张图
func (s *ListingService) Publish(ctx context.Context, userID, productID int64, req *dto.PublishRequest) (*model.Product, error) {
	product, err := s.getOwned(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	next, err := model.NextStatus(product.Status, model.EventPublish)
	if err != nil {
		return nil, err
	}

	// 第四步允许最后修订字段，先套用再校验
	applyEditableFields(product, &req.EditableFields)
	if req.ListingType != "" {
		if req.ListingType != model.ListingTypeMarketplace && req.ListingType != model.ListingTypeInstant {
			return nil, errors.New("上架类型无效")
		}
		product.ListingType = req.ListingType
	}

	if err := product.CanPublish(); err != nil {
		return nil, err
	}

	product.Status = next
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("发布失败: %v", err)
	}
	return product, nil
}

// ==================== 状态流转 ====================

// transition 通用状态流转：pause / resume / mark_sold / reactivate
func (s *ListingService) transition(ctx context.Context, userID, productID int64, event model.ListingEvent) (*model.Product, error) {
	product, err := s.getOwned(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	next, err := model.NextStatus(product.Status, event)
	if err != nil {
		return nil, err
	}

	// 状态流转只改 status，不夹带其它字段
	if err := s.productRepo.UpdateFields(ctx, productID, map[string]interface{}{
		"status": next,
	}); err != nil {
		return nil, fmt.Errorf("状态更新失败: %v", err)
	}
	product.Status = next
	return product, nil
}

// Pause 暂停展示
func (s *ListingService) Pause(ctx context.Context, userID, productID int64) (*model.Product, error) {
	return s.transition(ctx, userID, productID, model.EventPause)
}

// Resume 恢复上架
func (s *ListingService) Resume(ctx context.Context, userID, productID int64) (*model.Product, error) {
	return s.transition(ctx, userID, productID, model.EventResume)
}

// MarkSold 标记已售
func (s *ListingService) MarkSold(ctx context.Context, userID, productID int64) (*model.Product, error) {
	return s.transition(ctx, userID, productID, model.EventMarkSold)
}

// Reactivate 已售商品重新上架
func (s *ListingService) Reactivate(ctx context.Context, userID, productID int64) (*model.Product, error) {
	return s.transition(ctx, userID, productID, model.EventReactivate)
}

// ==================== 编辑 ====================

// Edit 编辑商品字段
// 校验规则与发布一致，但图片可选（沿用已有 URL，只上传新选的本地图）；
// 状态绝不在这里变化
func (s *ListingService) Edit(ctx context.Context, userID, productID int64, req *dto.EditRequest) (*model.Product, error) {
	product, err := s.getOwned(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if _, err := model.NextStatus(product.Status, model.EventEdit); err != nil {
		return nil, err
	}

	applyEditableFields(product, &req.EditableFields)

	if len(req.Images) > 0 {
		if len(req.Images) > model.MaxImages {
			return nil, errors.New("图片数量超出上限")
		}
		urls, err := s.resolveImages(ctx, productID, req.Images)
		if err != nil {
			return nil, err
		}
		product.Images = datatypes.JSONSlice[string](urls)
	}

	if err := product.ValidateFields(false); err != nil {
		return nil, err
	}

	if err := s.productRepo.UpdateFields(ctx, productID, map[string]interface{}{
		"name":          product.Name,
		"description":   product.Description,
		"category":      product.Category,
		"brand":         product.Brand,
		"model":         product.ModelName,
		"condition":     product.Condition,
		"price_amount":  product.PriceAmount,
		"price_divisor": product.PriceDivisor,
		"images":        product.Images,
	}); err != nil {
		return nil, fmt.Errorf("保存失败: %v", err)
	}
	return product, nil
}

// applyEditableFields 套用请求里显式传入的字段
func applyEditableFields(product *model.Product, f *dto.EditableFields) {
	if f.Name != nil {
		product.Name = *f.Name
	}
	if f.Description != nil {
		product.Description = *f.Description
	}
	if f.Category != nil {
		product.Category = *f.Category
	}
	if f.Brand != nil {
		product.Brand = *f.Brand
	}
	if f.Model != nil {
		product.ModelName = *f.Model
	}
	if f.Condition != nil {
		product.Condition = *f.Condition
	}
	if f.Price != nil {
		product.SetPrice(*f.Price)
	}
}

// ==================== 删除 ====================

// Delete 物理删除，任何状态都允许，不可恢复
func (s *ListingService) Delete(ctx context.Context, userID, productID int64) error {
	product, err := s.getOwned(ctx, userID, productID)
	if err != nil {
		return err
	}

	if _, err := model.NextStatus(product.Status, model.EventDelete); err != nil {
		return err
	}

	if err := s.productRepo.HardDelete(ctx, productID); err != nil {
		return fmt.Errorf("删除失败: %v", err)
	}

	// 行删掉之后做尽力而为的清理，失败只记日志
	if err := s.analyticsRepo.DeleteByProduct(ctx, productID); err != nil {
		log.Printf("清理商品 %d 事件数据失败: %v", productID, err)
	}
	for _, url := range product.Images {
		if err := s.storage.Delete(ctx, url); err != nil {
			log.Printf("清理商品 %d 图片失败: %v", productID, err)
		}
	}
	return nil
}

// ==================== 查询 ====================

// GetForEdit 编辑页读取本人商品
func (s *ListingService) GetForEdit(ctx context.Context, userID, productID int64) (*model.Product, error) {
	return s.getOwned(ctx, userID, productID)
}

// GetPublic 买家侧商品详情，仅在售商品可见
func (s *ListingService) GetPublic(ctx context.Context, productID int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Status != model.StatusActive {
		return nil, repository.ErrNotFound
	}
	return product, nil
}

// ListMine 卖家侧本人商品列表
func (s *ListingService) ListMine(ctx context.Context, userID int64, page, pageSize int) ([]model.Product, int64, error) {
	return s.productRepo.ListBySeller(ctx, userID, page, pageSize)
}

// MyStats 卖家侧各状态商品数量
func (s *ListingService) MyStats(ctx context.Context, userID int64) (map[string]int64, error) {
	return s.productRepo.CountBySellerAndStatus(ctx, userID)
}
