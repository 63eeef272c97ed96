package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pcmarket_dev_v1_202608/internal/api/dto"
	"pcmarket_dev_v1_202608/internal/middleware"
	"pcmarket_dev_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// AnalyticsController 行为统计控制器
type AnalyticsController struct {
	analyticsService *service.AnalyticsService
}

func NewAnalyticsController(s *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analyticsService: s}
}

// ==================== API 方法 ====================

// Track 上报行为事件
// @Summary 上报浏览/点击/分享/曝光事件，游客可用
// @Tags Analytics
// @Accept json
// @Param body body dto.TrackEventRequest true "事件内容"
// @Success 200 {object} map[string]interface{}
// @Router /api/events [post]
func (ctrl *AnalyticsController) Track(c *gin.Context) {
	var req dto.TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	// 未登录时 userID 为 0
	userID := middleware.GetUserID(c)
	if err := ctrl.analyticsService.Track(c.Request.Context(), userID, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
	})
}

// Stats 商品行为汇总
// @Summary 商品累计行为统计，仅卖家本人可看
// @Tags Analytics
// @Param id path int true "商品ID"
// @Success 200 {object} dto.ProductStatsResponse
// @Router /api/listings/{id}/analytics [get]
func (ctrl *AnalyticsController) Stats(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	stats, err := ctrl.analyticsService.Summarize(c.Request.Context(), userID, productID)
	if err != nil {
		respondListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    stats,
	})
}

// DailyStats 逐日统计
// @Summary 近 N 天逐日行为统计
// @Tags Analytics
// @Param id path int true "商品ID"
// @Param days query int false "天数，默认 30"
// @Success 200 {object} []dto.DailyStatVO
// @Router /api/listings/{id}/analytics/daily [get]
func (ctrl *AnalyticsController) DailyStats(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	userID := middleware.GetUserID(c)
	stats, err := ctrl.analyticsService.DailyStats(c.Request.Context(), userID, productID, days)
	if err != nil {
		respondListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    stats,
	})
}
