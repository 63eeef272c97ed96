package service

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"pcmarket_dev_v1_202608/internal/model"
	"pcmarket_dev_v1_202608/internal/repository"
)

// ==================== 过滤状态 ====================

// 排序方式
const (
	SortNewest    = "newest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortName      = "name"
)

// QuickCategoryAll 快捷分类 chip 的"全部"哨兵值
const QuickCategoryAll = "All"

// FilterState 高级筛选面板的当前状态
// 空集合表示不约束；价格上下限各自可选，非数字输入视为未设置
type FilterState struct {
	MinPrice   string   `json:"min_price"`
	MaxPrice   string   `json:"max_price"`
	Conditions []string `json:"conditions"`
	Categories []string `json:"categories"`
	Brands     []string `json:"brands"`
	SortBy     string   `json:"sort_by"`
}

// DefaultFilterState 默认筛选状态
func DefaultFilterState() FilterState {
	return FilterState{SortBy: SortNewest}
}

// ActiveCount 已生效的筛选条件数，用于前端角标展示
// 排序不计入
func (f *FilterState) ActiveCount() int {
	count := 0
	if _, ok := parsePrice(f.MinPrice); ok {
		count++
	}
	if _, ok := parsePrice(f.MaxPrice); ok {
		count++
	}
	count += len(f.Conditions)
	count += len(f.Categories)
	count += len(f.Brands)
	return count
}

// DiscoveryState 发现页的完整视图状态
type DiscoveryState struct {
	SearchQuery   string      `json:"search_query"`
	QuickCategory string      `json:"quick_category"`
	Filters       FilterState `json:"filters"`
}

// Reset 联合重置：筛选面板和快捷分类必须同时恢复默认
func (s *DiscoveryState) Reset() {
	s.Filters = DefaultFilterState()
	s.QuickCategory = QuickCategoryAll
	s.SearchQuery = ""
}

// ==================== 过滤管道 ====================

// nameCollator 商品名排序用的本地化比较器
var nameCollator = collate.New(language.Und, collate.Loose)

// ApplyDiscovery 发现管道：纯函数，不修改输入，相同输入必得相同输出
// 各阶段都是独立谓词逐级收窄，最后按 SortBy 稳定排序
func ApplyDiscovery(products []model.Product, searchQuery, quickCategory string, filters FilterState) []model.Product {
	out := make([]model.Product, 0, len(products))

	minPrice, hasMin := parsePrice(filters.MinPrice)
	maxPrice, hasMax := parsePrice(filters.MaxPrice)
	query := strings.ToLower(strings.TrimSpace(searchQuery))

	for _, p := range products {
		// 1. 快捷分类 chip
		if quickCategory != "" && quickCategory != QuickCategoryAll && p.Category != quickCategory {
			continue
		}
		// 2. 名称搜索，大小写不敏感
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		// 3/4. 价格区间，非法输入已在 parsePrice 降级为未设置
		price := p.GetPrice()
		if hasMin && price < minPrice {
			continue
		}
		if hasMax && price > maxPrice {
			continue
		}
		// 5. 成色集合
		if len(filters.Conditions) > 0 && !containsString(filters.Conditions, p.Condition) {
			continue
		}
		// 6. 面板分类集合，与快捷 chip 是 AND 关系
		if len(filters.Categories) > 0 && !containsString(filters.Categories, p.Category) {
			continue
		}
		// 7. 品牌集合
		if len(filters.Brands) > 0 && !containsString(filters.Brands, p.Brand) {
			continue
		}
		out = append(out, p)
	}

	// 8. 排序
	sortProducts(out, filters.SortBy)
	return out
}

// sortProducts 稳定排序，默认按创建时间倒序
func sortProducts(products []model.Product, sortBy string) {
	switch sortBy {
	case SortPriceLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].GetPrice() < products[j].GetPrice()
		})
	case SortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].GetPrice() > products[j].GetPrice()
		})
	case SortName:
		sort.SliceStable(products, func(i, j int) bool {
			return nameCollator.CompareString(products[i].Name, products[j].Name) < 0
		})
	default: // SortNewest
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	}
}

// parsePrice 解析价格输入，非数字或负数一律视为未设置
func parsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// ==================== 服务实现 ====================

// DiscoveryService 买家侧发现页服务
type DiscoveryService struct {
	productRepo repository.ProductRepository
}

// NewDiscoveryService 创建发现页服务
func NewDiscoveryService(productRepo repository.ProductRepository) *DiscoveryService {
	return &DiscoveryService{productRepo: productRepo}
}

// Browse 加载全部在售商品并执行过滤管道
func (s *DiscoveryService) Browse(ctx context.Context, state *DiscoveryState) ([]model.Product, int, error) {
	products, err := s.productRepo.ListActive(ctx)
	if err != nil {
		return nil, 0, err
	}

	filtered := ApplyDiscovery(products, state.SearchQuery, state.QuickCategory, state.Filters)
	return filtered, state.Filters.ActiveCount(), nil
}
