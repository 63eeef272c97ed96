package model

import (
	"testing"

	"gorm.io/datatypes"
)

func validProduct() *Product {
	p := &Product{
		SellerID:    1,
		Name:        "RTX 4070 Super",
		Description: "成色很好",
		Category:    "显卡",
		Brand:       "NVIDIA",
		ModelName:   "RTX 4070 Super",
		Condition:   ConditionA,
		Status:      StatusDraft,
		Images:      datatypes.JSONSlice[string]{"https://cdn.example.com/a.jpg"},
	}
	p.SetPrice(4200)
	return p
}

func TestProduct_PriceRoundTrip(t *testing.T) {
	p := &Product{}
	p.SetPrice(1234.56)

	if p.PriceAmount != 123456 {
		t.Errorf("期望 123456 分，实际 %d", p.PriceAmount)
	}
	if got := p.GetPrice(); got != 1234.56 {
		t.Errorf("期望 1234.56，实际 %v", got)
	}

	// 除数缺失时按 100 兜底
	p2 := &Product{PriceAmount: 500}
	if got := p2.GetPrice(); got != 5 {
		t.Errorf("除数为 0 时应按 100 处理，实际 %v", got)
	}
}

func TestProduct_CanPublish(t *testing.T) {
	p := validProduct()
	if err := p.CanPublish(); err != nil {
		t.Errorf("完整草稿应可发布: %v", err)
	}

	// 非草稿不可发布
	p = validProduct()
	p.Status = StatusActive
	if err := p.CanPublish(); err == nil {
		t.Error("在售商品不应再次发布")
	}

	// 无图不可发布
	p = validProduct()
	p.Images = nil
	if err := p.CanPublish(); err == nil {
		t.Error("无图不应可发布")
	}
}

func TestProduct_ValidateFields(t *testing.T) {
	// 逐个字段置空都应失败
	mutations := []func(p *Product){
		func(p *Product) { p.Name = "" },
		func(p *Product) { p.Category = "" },
		func(p *Product) { p.Brand = "" },
		func(p *Product) { p.ModelName = "" },
		func(p *Product) { p.Description = "" },
		func(p *Product) { p.Condition = "S" },
		func(p *Product) { p.PriceAmount = -1 },
	}
	for i, mutate := range mutations {
		p := validProduct()
		mutate(p)
		if err := p.ValidateFields(true); err == nil {
			t.Errorf("用例 %d 应校验失败", i)
		}
	}

	// 编辑场景图片可为空
	p := validProduct()
	p.Images = nil
	if err := p.ValidateFields(false); err != nil {
		t.Errorf("requireImages=false 时无图应合法: %v", err)
	}

	// 图片超限
	p = validProduct()
	many := make([]string, MaxImages+1)
	p.Images = datatypes.JSONSlice[string](many)
	if err := p.ValidateFields(false); err == nil {
		t.Error("超过 10 张图应校验失败")
	}
}

func TestIsValidCondition(t *testing.T) {
	for _, c := range Conditions {
		if !IsValidCondition(c) {
			t.Errorf("%s 应为合法成色", c)
		}
	}
	for _, c := range []string{"", "S", "a", "A++"} {
		if IsValidCondition(c) {
			t.Errorf("%s 不应为合法成色", c)
		}
	}
}
