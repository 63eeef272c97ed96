package model

import (
	"errors"
	"math"

	"gorm.io/datatypes"
)

// ==================== 状态常量 ====================

const (
	// 商品状态
	StatusDraft  = "draft"  // 草稿，买家不可见
	StatusActive = "active" // 上架中
	StatusPaused = "paused" // 暂停展示
	StatusSold   = "sold"   // 已售出
	// deleted 不是状态值，删除即物理移除行

	// 上架类型
	ListingTypeMarketplace = "marketplace" // 挂牌出售
	ListingTypeInstant     = "instant"     // 平台直收

	// 单个商品最多图片数
	MaxImages = 10
)

// 成色等级，按新旧程度排序
const (
	ConditionAPlus = "A+"
	ConditionA     = "A"
	ConditionB     = "B"
	ConditionC     = "C"
	ConditionD     = "D"
)

// Conditions 合法的成色集合
var Conditions = []string{ConditionAPlus, ConditionA, ConditionB, ConditionC, ConditionD}

// IsValidCondition 校验成色取值
func IsValidCondition(c string) bool {
	for _, v := range Conditions {
		if v == c {
			return true
		}
	}
	return false
}

// ==================== 数据库模型 ====================

// Product 硬件商品（一条挂牌）
type Product struct {
	BaseModel
	SellerID int64 `gorm:"index:idx_seller_status;not null"` // 卖家 ID，所有权校验的依据

	// --- 商品基本信息 ---
	Name        string `gorm:"size:140;not null"`
	Description string `gorm:"type:text"`
	Category    string `gorm:"size:64;index"` // 显卡/CPU/主板等
	Brand       string `gorm:"size:64;index"`
	ModelName   string `gorm:"size:128;column:model"` // 具体型号，如 RTX 4070
	Condition   string `gorm:"size:4;index"`          // 成色 A+/A/B/C/D

	// --- 价格（整数分存储，避免浮点误差）---
	PriceAmount  int64 `gorm:"default:0"`
	PriceDivisor int64 `gorm:"default:100"`

	// --- 图片，有序，最多 10 张 ---
	// JSON 存储保证 sqlite / postgres 双驱动可用
	Images datatypes.JSONSlice[string] `gorm:"type:json"`

	// --- 状态 ---
	Status      string `gorm:"size:16;index:idx_seller_status;default:draft"`
	ListingType string `gorm:"size:16;default:marketplace"`

	// --- AI 定级结果（第三步写入，可为空）---
	AIGraded         bool    `gorm:"default:false"`
	AISuggestedPrice float64 `gorm:"default:0"`
}

func (Product) TableName() string {
	return "products"
}

// ==================== 价格辅助 ====================

// GetPrice 获取价格（浮点数）
func (p *Product) GetPrice() float64 {
	if p.PriceDivisor == 0 {
		p.PriceDivisor = 100
	}
	return float64(p.PriceAmount) / float64(p.PriceDivisor)
}

// SetPrice 设置价格（浮点数）
func (p *Product) SetPrice(price float64) {
	p.PriceDivisor = 100
	p.PriceAmount = int64(math.Round(price * 100))
}

// ==================== 校验 ====================

// ValidateFields 文本字段与价格校验
// 发布和编辑共用同一套规则；编辑时图片可沿用已有 URL，由 requireImages 控制
func (p *Product) ValidateFields(requireImages bool) error {
	if p.Name == "" {
		return errors.New("名称不能为空")
	}
	if p.Category == "" {
		return errors.New("请选择商品分类")
	}
	if p.Brand == "" {
		return errors.New("品牌不能为空")
	}
	if p.ModelName == "" {
		return errors.New("型号不能为空")
	}
	if p.Description == "" {
		return errors.New("描述不能为空")
	}
	if !IsValidCondition(p.Condition) {
		return errors.New("成色等级无效")
	}
	if p.PriceAmount < 0 {
		return errors.New("价格不能为负")
	}
	if requireImages && len(p.Images) == 0 {
		return errors.New("至少上传一张图片")
	}
	if len(p.Images) > MaxImages {
		return errors.New("图片数量超出上限")
	}
	return nil
}

// CanPublish 发布守卫：无论从向导第四步还是编辑页触发，规则完全一致
func (p *Product) CanPublish() error {
	if p.Status != StatusDraft {
		return errors.New("只有草稿可以发布")
	}
	return p.ValidateFields(true)
}

// IsOwnedBy 所有权校验
func (p *Product) IsOwnedBy(userID int64) bool {
	return p.SellerID == userID
}
