package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pcmarket_dev_v1_202608/internal/api/dto"
	"pcmarket_dev_v1_202608/internal/repository"
	"pcmarket_dev_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// DiscoveryController 买家侧发现页控制器
type DiscoveryController struct {
	discoveryService *service.DiscoveryService
	listingService   *service.ListingService
}

func NewDiscoveryController(discoveryService *service.DiscoveryService, listingService *service.ListingService) *DiscoveryController {
	return &DiscoveryController{
		discoveryService: discoveryService,
		listingService:   listingService,
	}
}

// ==================== API 方法 ====================

// Browse 发现页浏览
// @Summary 发现页：搜索 + 快捷分类 + 高级筛选 + 排序
// @Tags Discovery
// @Accept json
// @Produce json
// @Param body body dto.BrowseRequest true "当前过滤状态"
// @Success 200 {object} dto.BrowseResponse
// @Router /api/discover [post]
func (ctrl *DiscoveryController) Browse(c *gin.Context) {
	var req dto.BrowseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	state := &service.DiscoveryState{
		SearchQuery:   req.SearchQuery,
		QuickCategory: req.QuickCategory,
		Filters: service.FilterState{
			MinPrice:   req.MinPrice,
			MaxPrice:   req.MaxPrice,
			Conditions: req.Conditions,
			Categories: req.Categories,
			Brands:     req.Brands,
			SortBy:     req.SortBy,
		},
	}

	products, filterCount, err := ctrl.discoveryService.Browse(c.Request.Context(), state)
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
		"data": dto.BrowseResponse{
			Products:    toProductVOs(products),
			Total:       len(products),
			FilterCount: filterCount,
		},
	})
}

// GetProduct 商品详情
// @Summary 买家侧商品详情，仅在售商品可见
// @Tags Discovery
// @Param id path int true "商品ID"
// @Success 200 {object} dto.ProductVO
// @Router /api/discover/products/{id} [get]
func (ctrl *DiscoveryController) GetProduct(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		return
	}

	product, err := ctrl.listingService.GetPublic(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    404,
				"message": "商品不存在",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toProductVO(product),
	})
}
