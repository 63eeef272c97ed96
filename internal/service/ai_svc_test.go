package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func geminiResponse(text string) string {
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]interface{}{{"text": text}},
			}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestAIService_SuggestGrade(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-3-flash:generateContent") {
			t.Errorf("请求路径错误: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Error("缺少 API Key")
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("请求体解析失败: %v", err)
		}
		contents := body["contents"].([]interface{})
		parts := contents[0].(map[string]interface{})["parts"].([]interface{})
		prompt := parts[0].(map[string]interface{})["text"].(string)
		if !strings.Contains(prompt, "RTX 4070 Super") {
			t.Error("提示词应包含商品名")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(geminiResponse(`{"condition":"A","suggested_price":3999,"reasoning":"轻微使用痕迹"}`)))
	}))
	defer server.Close()

	svc := NewAIService(&AIConfig{ApiKey: "test-key", Endpoint: server.URL}, nil)

	suggestion, err := svc.SuggestGrade(context.Background(), &GradeInput{
		Name:      "RTX 4070 Super",
		Category:  "显卡",
		Brand:     "NVIDIA",
		Model:     "RTX 4070 Super",
		Condition: "A",
	})
	if err != nil {
		t.Fatalf("SuggestGrade() error = %v", err)
	}
	if suggestion.Condition != "A" {
		t.Errorf("成色解析错误: %s", suggestion.Condition)
	}
	if suggestion.SuggestedPrice != 3999 {
		t.Errorf("建议价解析错误: %v", suggestion.SuggestedPrice)
	}
}

func TestAIService_SuggestGrade_WithMarketBand(t *testing.T) {
	pricingServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":0,"data":{"low":3600,"high":4500,"median":4100,"sample_size":20}}`))
	}))
	defer pricingServer.Close()

	aiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		contents := body["contents"].([]interface{})
		parts := contents[0].(map[string]interface{})["parts"].([]interface{})
		prompt := parts[0].(map[string]interface{})["text"].(string)
		if !strings.Contains(prompt, "3600.00 - 4500.00") {
			t.Error("提示词应包含市场价区间")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(geminiResponse(`{"condition":"A","suggested_price":4000,"reasoning":"ok"}`)))
	}))
	defer aiServer.Close()

	pricing := NewPricingService(&PricingConfig{BaseURL: pricingServer.URL})
	svc := NewAIService(&AIConfig{ApiKey: "test-key", Endpoint: aiServer.URL}, pricing)

	suggestion, err := svc.SuggestGrade(context.Background(), &GradeInput{
		Name: "RTX 4070 Super", Category: "显卡", Brand: "NVIDIA", Model: "RTX 4070 Super", Condition: "A",
	})
	if err != nil {
		t.Fatalf("SuggestGrade() error = %v", err)
	}
	if suggestion.MarketLow != 3600 || suggestion.MarketHigh != 4500 {
		t.Errorf("市场价区间应随建议返回: %+v", suggestion)
	}
}

func TestAIService_SuggestGrade_Errors(t *testing.T) {
	// 未配置 Key
	svc := NewAIService(&AIConfig{}, nil)
	if _, err := svc.SuggestGrade(context.Background(), &GradeInput{Name: "x"}); err == nil {
		t.Error("无 API Key 应报错")
	}

	// 上游 5xx
	errServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer errServer.Close()

	svc = NewAIService(&AIConfig{ApiKey: "k", Endpoint: errServer.URL}, nil)
	if _, err := svc.SuggestGrade(context.Background(), &GradeInput{Name: "x"}); err == nil {
		t.Error("上游报错应透出")
	}

	// 返回的不是 JSON 定级结果
	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(geminiResponse("这不是JSON")))
	}))
	defer badServer.Close()

	svc = NewAIService(&AIConfig{ApiKey: "k", Endpoint: badServer.URL}, nil)
	if _, err := svc.SuggestGrade(context.Background(), &GradeInput{Name: "x"}); err == nil {
		t.Error("非 JSON 结果应报错")
	}

	// 负价
	negServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(geminiResponse(`{"condition":"A","suggested_price":-1,"reasoning":"x"}`)))
	}))
	defer negServer.Close()

	svc = NewAIService(&AIConfig{ApiKey: "k", Endpoint: negServer.URL}, nil)
	if _, err := svc.SuggestGrade(context.Background(), &GradeInput{Name: "x"}); err == nil {
		t.Error("负价应报错")
	}
}
