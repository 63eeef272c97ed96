package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"pcmarket_dev_v1_202608/pkg/utils"
)

// ==================== 配置 ====================

// AIConfig AI 服务配置
type AIConfig struct {
	ApiKey    string
	Model     string
	Endpoint  string // 可覆盖，测试时指向 httptest
	MaxImages int    // 随提示词一起上传的图片数，默认 3
}

// ==================== 输入输出 ====================

// GradeInput 定级输入
type GradeInput struct {
	Name      string
	Category  string
	Brand     string
	Model     string
	Condition string
	Images    []string
}

// GradeSuggestion AI 给出的成色与价格建议
type GradeSuggestion struct {
	Condition      string  `json:"condition"`
	SuggestedPrice float64 `json:"suggested_price"`
	Reasoning      string  `json:"reasoning"`
	MarketLow      float64 `json:"market_low,omitempty"`
	MarketHigh     float64 `json:"market_high,omitempty"`
}

// ==================== 服务 ====================

type AIService struct {
	Config  *AIConfig
	Pricing *PricingService
}

// NewAIService 创建 AI 定级服务
// pricing 可为 nil，届时提示词里不带市场价区间
func NewAIService(cfg *AIConfig, pricing *PricingService) *AIService {
	if cfg.Model == "" {
		cfg.Model = "gemini-3-flash"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://generativelanguage.googleapis.com"
	}
	if cfg.MaxImages <= 0 {
		cfg.MaxImages = 3
	}

	return &AIService{
		Config:  cfg,
		Pricing: pricing,
	}
}

// ==================== 成色定级 ====================

// SuggestGrade 根据商品信息和实拍图给出成色等级与建议售价
func (s *AIService) SuggestGrade(ctx context.Context, input *GradeInput) (*GradeSuggestion, error) {
	if s.Config.ApiKey == "" {
		return nil, fmt.Errorf("Gemini API Key 未配置")
	}

	// 先拉市场价区间，拉不到不阻塞定级
	var band *PriceBand
	if s.Pricing != nil {
		b, err := s.Pricing.QueryBand(ctx, input.Category, input.Brand, input.Model)
		if err != nil {
			fmt.Printf("查询市场价失败: %v, 继续无参考价定级\n", err)
		} else {
			band = b
		}
	}

	prompt := buildGradePrompt(input, band)

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		s.Config.Endpoint, s.Config.Model, s.Config.ApiKey)

	// 组装多模态 parts：提示词 + 前几张实拍图
	parts := []map[string]interface{}{
		{"text": prompt},
	}
	attached := 0
	for _, imgURL := range input.Images {
		if attached >= s.Config.MaxImages {
			break
		}
		data, mimeType, err := utils.DownloadImage(ctx, imgURL)
		if err != nil {
			fmt.Printf("下载实拍图失败: %v, 跳过该图\n", err)
			continue
		}
		parts = append(parts, map[string]interface{}{
			"inline_data": map[string]interface{}{
				"mime_type": mimeType,
				"data":      base64.StdEncoding.EncodeToString(data),
			},
		})
		attached++
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": parts},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	bodyBytes, _ := json.Marshal(reqBody)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Gemini API 错误 [%d]: %s", resp.StatusCode, string(respBody))
	}

	// 解析响应
	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %v", err)
	}

	if len(geminiResp.Candidates) == 0 {
		return nil, fmt.Errorf("无生成结果")
	}

	var jsonText string
	for _, candidate := range geminiResp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				jsonText = part.Text
				break
			}
		}
	}

	var result GradeSuggestion
	if err := json.Unmarshal([]byte(jsonText), &result); err != nil {
		return nil, fmt.Errorf("解析定级结果失败: %v, raw: %s", err, jsonText)
	}
	if result.SuggestedPrice < 0 {
		return nil, fmt.Errorf("定级结果价格非法: %f", result.SuggestedPrice)
	}

	if band != nil {
		result.MarketLow = band.Low
		result.MarketHigh = band.High
	}
	return &result, nil
}

// buildGradePrompt 组装定级提示词
func buildGradePrompt(input *GradeInput, band *PriceBand) string {
	marketLine := "Market reference: not available"
	if band != nil {
		marketLine = fmt.Sprintf("Market reference: recent listings range %.2f - %.2f USD", band.Low, band.High)
	}

	return fmt.Sprintf(`You are a used PC hardware appraiser. Grade the following item from the photos and description:

Item: %s
Category: %s
Brand: %s
Model: %s
Seller-claimed condition: %s
%s

Grading scale: A+ (like new), A (light wear), B (visible wear, fully functional), C (heavy wear), D (defects present).

Output Format (JSON only, no markdown):
{
  "condition": "A",
  "suggested_price": 123.45,
  "reasoning": "One short paragraph explaining the grade and price"
}`,
		input.Name, input.Category, input.Brand, input.Model, input.Condition, marketLine)
}
