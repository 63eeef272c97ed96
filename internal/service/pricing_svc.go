package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ==================== 配置 ====================

type PricingConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ==================== 数据结构 ====================

// PriceBand 同型号近期成交价区间
type PriceBand struct {
	Low        float64 `json:"low"`
	High       float64 `json:"high"`
	Median     float64 `json:"median"`
	SampleSize int     `json:"sample_size"`
}

// ==================== 服务实现 ====================

// PricingService 市场行情查询服务
// 给 AI 定级提供同类商品的参考价区间
type PricingService struct {
	Config *PricingConfig
	client *resty.Client
}

func NewPricingService(cfg *PricingConfig) *PricingService {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "PCMarket-Go-App/1.0")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	return &PricingService{
		Config: cfg,
		client: client,
	}
}

// QueryBand 查询指定型号的市场价区间
func (s *PricingService) QueryBand(ctx context.Context, category, brand, model string) (*PriceBand, error) {
	if s.Config.BaseURL == "" {
		return nil, fmt.Errorf("行情服务未配置")
	}

	var result struct {
		Code int       `json:"code"`
		Data PriceBand `json:"data"`
		Msg  string    `json:"msg"`
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"category": category,
			"brand":    brand,
			"model":    model,
		}).
		SetResult(&result).
		Get("/v1/price-band")
	if err != nil {
		return nil, fmt.Errorf("请求行情服务失败: %v", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("行情服务错误 [%d]: %s", resp.StatusCode(), resp.String())
	}
	if result.Code != 0 {
		return nil, fmt.Errorf("行情服务返回错误: %s", result.Msg)
	}
	if result.Data.SampleSize == 0 {
		return nil, fmt.Errorf("无同型号成交样本")
	}

	return &result.Data, nil
}
