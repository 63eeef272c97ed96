package dto

// ==================== 请求 DTO ====================

// CreateDraftRequest 创建草稿请求（向导第一步）
// 分类和成色必填，其余字段允许后续再补
type CreateDraftRequest struct {
	Name        string  `json:"name"`
	Category    string  `json:"category" binding:"required"`
	Condition   string  `json:"condition" binding:"required"`
	Brand       string  `json:"brand"`
	Model       string  `json:"model"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// AttachImagesRequest 挂图请求（向导第二步）
// 列表元素可以是已有的 http(s) URL（原样保留）或 base64 图片数据（上传）
type AttachImagesRequest struct {
	Images []string `json:"images" binding:"required,min=1,max=10"`
}

// AcceptGradeRequest 接受 AI 定级请求（向导第三步）
type AcceptGradeRequest struct {
	Condition      string  `json:"condition"`
	SuggestedPrice float64 `json:"suggested_price" binding:"required"`
	Reasoning      string  `json:"reasoning"`
}

// EditableFields 可编辑字段，指针区分"未传"和"传了空值"
type EditableFields struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Brand       *string  `json:"brand,omitempty"`
	Model       *string  `json:"model,omitempty"`
	Condition   *string  `json:"condition,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

// PublishRequest 发布请求（向导第四步）
type PublishRequest struct {
	EditableFields
	ListingType string `json:"listing_type"`
}

// EditRequest 编辑请求
// Images 为空表示沿用现有图片
type EditRequest struct {
	EditableFields
	Images []string `json:"images,omitempty"`
}

// ListMineRequest 卖家商品列表请求
type ListMineRequest struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=20"`
}

// ==================== 响应 DTO ====================

// ProductVO 商品视图对象
type ProductVO struct {
	ID               int64    `json:"id"`
	SellerID         int64    `json:"seller_id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Category         string   `json:"category"`
	Brand            string   `json:"brand"`
	Model            string   `json:"model"`
	Condition        string   `json:"condition"`
	Price            float64  `json:"price"`
	Images           []string `json:"images"`
	Status           string   `json:"status"`
	ListingType      string   `json:"listing_type"`
	AIGraded         bool     `json:"ai_graded"`
	AISuggestedPrice float64  `json:"ai_suggested_price,omitempty"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

// GradeSuggestionVO AI 定级建议
type GradeSuggestionVO struct {
	Condition      string  `json:"condition"`
	SuggestedPrice float64 `json:"suggested_price"`
	Reasoning      string  `json:"reasoning"`
	MarketLow      float64 `json:"market_low,omitempty"`
	MarketHigh     float64 `json:"market_high,omitempty"`
}
