package dto

// ==================== 请求 DTO ====================

// TrackEventRequest 行为事件上报请求
type TrackEventRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	EventType string `json:"event_type" binding:"required"`
}

// ==================== 响应 DTO ====================

// ProductStatsResponse 商品行为统计
type ProductStatsResponse struct {
	ProductID   int64 `json:"product_id"`
	Views       int64 `json:"views"`
	Clicks      int64 `json:"clicks"`
	Shares      int64 `json:"shares"`
	Impressions int64 `json:"impressions"`
}

// DailyStatVO 单日统计
type DailyStatVO struct {
	StatDate    string `json:"stat_date"`
	Views       int64  `json:"views"`
	Clicks      int64  `json:"clicks"`
	Shares      int64  `json:"shares"`
	Impressions int64  `json:"impressions"`
}
