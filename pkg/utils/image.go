package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxImageBytes 单张图片大小上限 (10MB)
const MaxImageBytes = 10 << 20

// DownloadImage 下载网络图片，返回字节和 Content-Type
func DownloadImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("下载失败: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("下载失败: HTTP %d", resp.StatusCode)
	}

	// 限制读取量，防止超大响应拖垮内存
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("读取失败: %v", err)
	}
	if len(data) > MaxImageBytes {
		return nil, "", fmt.Errorf("图片超过大小上限")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
