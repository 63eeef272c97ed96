package service

import (
	"testing"
	"time"

	"pcmarket_dev_v1_202608/internal/model"
)

// ==================== 测试辅助函数 ====================

func makeProduct(id int64, name, category, brand, condition string, price float64, createdAt time.Time) model.Product {
	p := model.Product{
		Name:      name,
		Category:  category,
		Brand:     brand,
		Condition: condition,
		Status:    model.StatusActive,
	}
	p.ID = id
	p.CreatedAt = createdAt
	p.SetPrice(price)
	return p
}

func sampleProducts() []model.Product {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return []model.Product{
		makeProduct(1, "RTX 4070 Super 显卡", "显卡", "NVIDIA", "A", 4200, base),
		makeProduct(2, "RX 7800 XT 显卡", "显卡", "AMD", "B", 3100, base.Add(1*time.Hour)),
		makeProduct(3, "Ryzen 7 7800X3D", "CPU", "AMD", "A+", 2300, base.Add(2*time.Hour)),
		makeProduct(4, "Core i5-13600KF", "CPU", "Intel", "B", 1500, base.Add(3*time.Hour)),
		makeProduct(5, "ROG B650E-F 主板", "主板", "ASUS", "A", 1600, base.Add(4*time.Hour)),
	}
}

func idsOf(products []model.Product) []int64 {
	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ==================== 过滤管道测试 ====================

func TestApplyDiscovery_EmptyFilters(t *testing.T) {
	products := sampleProducts()

	got := ApplyDiscovery(products, "", QuickCategoryAll, DefaultFilterState())

	if len(got) != len(products) {
		t.Fatalf("期望 %d 条，实际 %d 条", len(products), len(got))
	}
	// 默认按创建时间倒序
	want := []int64{5, 4, 3, 2, 1}
	if !equalIDs(idsOf(got), want) {
		t.Errorf("排序错误，期望 %v，实际 %v", want, idsOf(got))
	}
	// 输入不被修改
	if products[0].ID != 1 {
		t.Error("ApplyDiscovery 修改了输入切片")
	}
}

func TestApplyDiscovery_PredicatesAreConjunctive(t *testing.T) {
	products := sampleProducts()

	// 快捷分类 + 搜索词同时生效
	filters := DefaultFilterState()
	got := ApplyDiscovery(products, "显卡", "显卡", filters)
	if len(got) != 2 {
		t.Fatalf("期望 2 条，实际 %d 条", len(got))
	}

	// 再叠加品牌集合
	filters.Brands = []string{"AMD"}
	got = ApplyDiscovery(products, "显卡", "显卡", filters)
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("期望只剩 ID=2，实际 %v", idsOf(got))
	}

	// 快捷 chip 与面板分类冲突时交集为空
	filters = DefaultFilterState()
	filters.Categories = []string{"CPU"}
	got = ApplyDiscovery(products, "", "显卡", filters)
	if len(got) != 0 {
		t.Errorf("chip=显卡 与面板分类=CPU 应无交集，实际 %v", idsOf(got))
	}
}

func TestApplyDiscovery_SearchCaseInsensitive(t *testing.T) {
	products := sampleProducts()

	got := ApplyDiscovery(products, "rtx", QuickCategoryAll, DefaultFilterState())
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("期望命中 ID=1，实际 %v", idsOf(got))
	}
}

func TestApplyDiscovery_PriceRange(t *testing.T) {
	products := sampleProducts()

	filters := DefaultFilterState()
	filters.MinPrice = "1600"
	filters.MaxPrice = "3500"
	got := ApplyDiscovery(products, "", QuickCategoryAll, filters)

	want := []int64{5, 3, 2} // 1600/2300/3100，按最新排序
	if !equalIDs(idsOf(got), want) {
		t.Errorf("期望 %v，实际 %v", want, idsOf(got))
	}
}

func TestApplyDiscovery_InvalidPriceIgnored(t *testing.T) {
	products := sampleProducts()

	filters := DefaultFilterState()
	filters.MinPrice = "abc"
	filters.MaxPrice = "-10"
	got := ApplyDiscovery(products, "", QuickCategoryAll, filters)

	if len(got) != len(products) {
		t.Errorf("非法价格应不过滤，期望 %d 条，实际 %d 条", len(products), len(got))
	}
}

func TestApplyDiscovery_ConditionSet(t *testing.T) {
	products := sampleProducts()

	filters := DefaultFilterState()
	filters.Conditions = []string{"A", "A+"}
	got := ApplyDiscovery(products, "", QuickCategoryAll, filters)

	want := []int64{5, 3, 1}
	if !equalIDs(idsOf(got), want) {
		t.Errorf("期望 %v，实际 %v", want, idsOf(got))
	}
}

// ==================== 排序测试 ====================

func TestApplyDiscovery_PriceSortsAreReverses(t *testing.T) {
	products := sampleProducts()

	asc := DefaultFilterState()
	asc.SortBy = SortPriceLow
	low := ApplyDiscovery(products, "", QuickCategoryAll, asc)

	desc := DefaultFilterState()
	desc.SortBy = SortPriceHigh
	high := ApplyDiscovery(products, "", QuickCategoryAll, desc)

	if len(low) != len(high) {
		t.Fatal("两种排序结果长度不一致")
	}
	for i := range low {
		if low[i].ID != high[len(high)-1-i].ID {
			t.Fatalf("价格升序与降序不是互逆，low=%v high=%v", idsOf(low), idsOf(high))
		}
	}
	// 升序首位应是最低价
	if low[0].ID != 4 {
		t.Errorf("价格升序首位应为 ID=4，实际 ID=%d", low[0].ID)
	}
}

func TestApplyDiscovery_NameSortIdempotent(t *testing.T) {
	products := sampleProducts()

	filters := DefaultFilterState()
	filters.SortBy = SortName
	once := ApplyDiscovery(products, "", QuickCategoryAll, filters)
	twice := ApplyDiscovery(once, "", QuickCategoryAll, filters)

	if !equalIDs(idsOf(once), idsOf(twice)) {
		t.Errorf("名称排序不幂等：%v -> %v", idsOf(once), idsOf(twice))
	}
}

// ==================== 状态测试 ====================

func TestDiscoveryState_Reset(t *testing.T) {
	state := DiscoveryState{
		SearchQuery:   "rtx",
		QuickCategory: "显卡",
		Filters: FilterState{
			MinPrice:   "100",
			MaxPrice:   "5000",
			Conditions: []string{"A"},
			Brands:     []string{"NVIDIA"},
			SortBy:     SortPriceLow,
		},
	}

	state.Reset()

	if state.SearchQuery != "" {
		t.Error("重置后搜索词应为空")
	}
	if state.QuickCategory != QuickCategoryAll {
		t.Errorf("重置后快捷分类应为 %q，实际 %q", QuickCategoryAll, state.QuickCategory)
	}
	if state.Filters.ActiveCount() != 0 {
		t.Errorf("重置后筛选计数应为 0，实际 %d", state.Filters.ActiveCount())
	}
	if state.Filters.SortBy != SortNewest {
		t.Errorf("重置后排序应为 %q，实际 %q", SortNewest, state.Filters.SortBy)
	}
}

func TestFilterState_ActiveCount(t *testing.T) {
	f := FilterState{
		MinPrice:   "100",
		MaxPrice:   "oops", // 非法，不计数
		Conditions: []string{"A", "B"},
		Categories: []string{"显卡"},
		SortBy:     SortPriceLow, // 排序不计数
	}

	if got := f.ActiveCount(); got != 4 {
		t.Errorf("期望 ActiveCount=4，实际 %d", got)
	}

	empty := DefaultFilterState()
	if got := empty.ActiveCount(); got != 0 {
		t.Errorf("默认状态 ActiveCount 应为 0，实际 %d", got)
	}
}
