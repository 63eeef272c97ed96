package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pcmarket_dev_v1_202608/internal/api/dto"
	"pcmarket_dev_v1_202608/internal/middleware"
	"pcmarket_dev_v1_202608/internal/model"
	"pcmarket_dev_v1_202608/internal/repository"
	"pcmarket_dev_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// ListingController 挂牌控制器：发布向导 + 状态流转 + 编辑删除
type ListingController struct {
	listingService *service.ListingService
	limiter        *middleware.CooldownLimiter
}

func NewListingController(listingService *service.ListingService) *ListingController {
	return &ListingController{
		listingService: listingService,
		limiter:        middleware.GetLimiter(),
	}
}

// ==================== 发布向导 ====================

// CreateDraft 创建草稿
// @Summary 发布向导第一步：创建草稿
// @Tags Listing
// @Accept json
// @Produce json
// @Param body body dto.CreateDraftRequest true "草稿内容"
// @Success 201 {object} dto.ProductVO
// @Router /api/listings [post]
func (ctrl *ListingController) CreateDraft(c *gin.Context) {
	var req dto.CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	userID := middleware.GetUserID(c)
	product, err := ctrl.listingService.CreateDraft(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    toProductVO(product),
	})
}

// AttachImages 挂图
// @Summary 发布向导第二步：上传商品图片
// @Tags Listing
// @Accept json
// @Param id path int true "商品ID"
// @Param body body dto.AttachImagesRequest true "图片列表，已有 URL 原样保留"
// @Success 200 {object} dto.ProductVO
// @Router /api/listings/{id}/images [put]
func (ctrl *ListingController) AttachImages(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.AttachImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	userID := middleware.GetUserID(c)
	product, err := ctrl.listingService.AttachImages(c.Request.Context(), userID, productID, req.Images)
	if err != nil {
		respondListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toProductVO(product),
	})
}

// SuggestGrade AI 定级
// @Summary 发布向导第三步：请求 AI 成色与价格建议
// @Tags Listing
// @Param id path int true "商品ID"
// @Success 200 {object} dto.GradeSuggestionVO
// @Failure 429 {object} map[string]interface{} "冷却中"
// @Router /api/listings/{id}/grade [post]
func (ctrl *ListingController) SuggestGrade(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)

	// AI 调用成本高，按用户冷却
	key := middleware.UserOpKey(userID, middleware.OpTypeAIGrade)
	if result := ctrl.limiter.Check(key, middleware.GetInterval(middleware.OpTypeAIGrade)); !result.Allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"code":        429,
			"message":     "请求过于频繁，请稍后再试",
			"retry_after": int64(result.RetryAfter.Seconds()),
		})
		return
	}

	suggestion, err := ctrl.listingService.SuggestGrade(c.Request.Context(), userID, productID)
	if err != nil {
		respondListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": dto.GradeSuggestionVO{
			Condition:      suggestion.Condition,
			SuggestedPrice: suggestion.SuggestedPrice,
			Reasoning:      suggestion.Reasoning,
			MarketLow:      suggestion.MarketLow,
			MarketHigh:     suggestion.MarketHigh,
		},
	})
}

// AcceptGrade 接受 AI 建议
// @Summary 接受 AI 定级建议，写入建议价
// @Tags Listing
// @Accept json
// @Param id path int true "商品ID"
// @Param body body dto.AcceptGradeRequest true "要采纳的建议"
// @Success 200 {object} dto.ProductVO
// @Router /api/listings/{id}/grade/accept [post]
func (ctrl *ListingController) AcceptGrade(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.AcceptGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	userID := middleware.GetUserID(c)
	product, err := ctrl.listingService.AcceptGrade(c.Request.Context(), userID, productID, &service.GradeSuggestion{
		Condition:      req.Condition,
		SuggestedPrice: req.SuggestedPrice,
		Reasoning:      req.Reasoning,
	})
	if err != nil {
		respondListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toProductVO(product),
	})
}

// Publish 发布
// @Summary 发布向导第四步：发布草稿
// @Tags Listing
// @Accept json
// @Param id path int true "商品ID"
// @Param body body dto.PublishRequest false "发布前的最后修订"
// @Success 200 {object} dto.ProductVO
// @Router /api/listings/{id}/publish [post]
func (ctrl *ListingController) Publish(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	userID := middleware.GetUserID(c)

	// 防连点
	key := middleware.UserOpKey(userID, middleware.OpTypePublish)
	if result := ctrl.limiter.Check(key, middleware.GetInterval(middleware.OpTypePublish)); !result.Allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"code":        429,
			"message":     "请求过于频繁，请稍后再试",
			"retry_after": int64(result.RetryAfter.Seconds()),
		})
		return
	}

	product, err := ctrl.listingService.Publish(c.Request.Context(), userID, productID, &req)
	if err != nil {
		respondListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "发布成功",
		"data":    toProductVO(product),
	})
}

// ==================== 状态流转 ====================

// Pause 暂停展示
// @Summary 暂停在售商品
// @Tags Listing
// @Param id path int true "商品ID"
// @Success 200 {object} dto.ProductVO
// @Router /api/listings/{id}/pause [post]
func (ctrl *ListingController) Pause(c *gin.Context) {
	ctrl.doTransition(c, ctrl.listingService.Pause)
}

// Resume 恢复上架
// @Summary 恢复暂停中的商品
// @Tags Listing
// @Param id path int true "商品ID"
// @Success 200 {object} dto.ProductVO
// @Router /api/listings/{id}/resume [post]
func (ctrl *ListingController) Resume(c *gin.Context) {
	ctrl.doTransition(c, ctrl.listingService.Resume)
}

// MarkSold 标记已售
// @Summary 标记商品已售出
// @Tags Listing
// @Param id path int true "商品ID"
// @Success 200 {object} dto.ProductVO
// @Router /api/listings/{id}/sold [post]
func (ctrl *ListingController) MarkSold(c *gin.Context) {
	ctrl.doTransition(c, ctrl.listingService.MarkSold)
}

// Reactivate 重新上架
// @Summary 已售商品重新上架
// @Tags Listing
// @Param id path int true "商品ID"
// @Success 200 {object} dto.ProductVO
// @Router /api/listings/{id}/reactivate [post]
func (ctrl *ListingController) Reactivate(c *gin.Context) {
	ctrl.doTransition(c, ctrl.listingService.Reactivate)
}

func (ctrl *ListingController) doTransition(c *gin.Context, fn func(ctx context.Context, userID, productID int64) (*model.Product, error)) {
	productID, ok := parseIDParam(c)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	product, err := fn(c.Request.Context(), userID, productID)
	if err != nil {
		respondListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toProductVO(product),
	})
}

// ==================== 编辑与删除 ====================

// Edit 编辑商品
// @Summary 编辑商品字段，状态不变
// @Tags Listing
// @Accept json
// @Param id path int true "商品ID"
// @Param body body dto.EditRequest true "编辑内容"
// @Success 200 {object} dto.ProductVO
// @Router /api/listings/{id} [patch]
func (ctrl *ListingController) Edit(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	userID := middleware.GetUserID(c)
	product, err := ctrl.listingService.Edit(c.Request.Context(), userID, productID, &req)
	if err != nil {
		respondListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toProductVO(product),
	})
}

// Delete 删除商品
// @Summary 永久删除商品，不可恢复
// @Tags Listing
// @Param id path int true "商品ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/listings/{id} [delete]
func (ctrl *ListingController) Delete(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	if err := ctrl.listingService.Delete(c.Request.Context(), userID, productID); err != nil {
		respondListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "删除成功",
	})
}

// ==================== 查询 ====================

// GetMine 本人商品详情
// @Summary 编辑页读取本人商品
// @Tags Listing
// @Param id path int true "商品ID"
// @Success 200 {object} dto.ProductVO
// @Router /api/listings/{id} [get]
func (ctrl *ListingController) GetMine(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	product, err := ctrl.listingService.GetForEdit(c.Request.Context(), userID, productID)
	if err != nil {
		respondListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toProductVO(product),
	})
}

// ListMine 本人商品列表
// @Summary 卖家侧商品列表
// @Tags Listing
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} map[string]interface{}
// @Router /api/listings [get]
func (ctrl *ListingController) ListMine(c *gin.Context) {
	var req dto.ListMineRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	userID := middleware.GetUserID(c)
	products, total, err := ctrl.listingService.ListMine(c.Request.Context(), userID, req.Page, req.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"list":  toProductVOs(products),
			"total": total,
		},
	})
}

// MyStats 本人各状态数量
// @Summary 卖家侧各状态商品数量
// @Tags Listing
// @Success 200 {object} map[string]int64
// @Router /api/listings/stats [get]
func (ctrl *ListingController) MyStats(c *gin.Context) {
	userID := middleware.GetUserID(c)
	stats, err := ctrl.listingService.MyStats(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    stats,
	})
}

// ==================== 辅助 ====================

// parseIDParam 解析路径里的商品 ID
func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的商品ID",
		})
		return 0, false
	}
	return id, true
}

// respondListingError 把服务层错误映射为 HTTP 状态码
func respondListingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": "商品不存在",
		})
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{
			"code":    403,
			"message": err.Error(),
		})
	case errors.Is(err, model.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{
			"code":    409,
			"message": err.Error(),
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
	}
}

// toProductVO 转换为视图对象
func toProductVO(p *model.Product) dto.ProductVO {
	return dto.ProductVO{
		ID:               p.ID,
		SellerID:         p.SellerID,
		Name:             p.Name,
		Description:      p.Description,
		Category:         p.Category,
		Brand:            p.Brand,
		Model:            p.ModelName,
		Condition:        p.Condition,
		Price:            p.GetPrice(),
		Images:           []string(p.Images),
		Status:           p.Status,
		ListingType:      p.ListingType,
		AIGraded:         p.AIGraded,
		AISuggestedPrice: p.AISuggestedPrice,
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        p.UpdatedAt.Format(time.RFC3339),
	}
}

func toProductVOs(products []model.Product) []dto.ProductVO {
	vos := make([]dto.ProductVO, len(products))
	for i := range products {
		vos[i] = toProductVO(&products[i])
	}
	return vos
}
