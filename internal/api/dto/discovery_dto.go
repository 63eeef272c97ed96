package dto

// ==================== 请求 DTO ====================

// BrowseRequest 发现页浏览请求
// 整个过滤状态随请求提交，服务端执行完整管道后返回结果
type BrowseRequest struct {
	SearchQuery   string   `json:"search_query"`
	QuickCategory string   `json:"quick_category"`
	MinPrice      string   `json:"min_price"`
	MaxPrice      string   `json:"max_price"`
	Conditions    []string `json:"conditions"`
	Categories    []string `json:"categories"`
	Brands        []string `json:"brands"`
	SortBy        string   `json:"sort_by"`
}

// ==================== 响应 DTO ====================

// BrowseResponse 发现页浏览响应
type BrowseResponse struct {
	Products    []ProductVO `json:"products"`
	Total       int         `json:"total"`
	FilterCount int         `json:"filter_count"`
}
