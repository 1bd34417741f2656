package refiner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"

	"resume-parser-go/internal/logger"
)

// Transport 精修服务的文本生成通道
type Transport interface {
	// Generate 发送提示词并返回模型输出文本
	Generate(ctx context.Context, prompt string) (string, error)
}

// ChatModelTransport 基于eino聊天模型的生成通道
type ChatModelTransport struct {
	model      model.ToolCallingChatModel
	timeout    time.Duration
	maxRetries int
}

// NewChatModelTransport 创建聊天模型通道
func NewChatModelTransport(m model.ToolCallingChatModel, timeout time.Duration, maxRetries int) *ChatModelTransport {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChatModelTransport{model: m, timeout: timeout, maxRetries: maxRetries}
}

// Generate 调用聊天模型，带超时与指数退避重试
func (t *ChatModelTransport) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []*einoschema.Message{
		{Role: "system", Content: "You are a precise JSON-only resume data verifier."},
		{Role: "user", Content: prompt},
	}

	retryDelay := 2 * time.Second
	var response *einoschema.Message
	var err error

	for retry := 0; retry <= t.maxRetries; retry++ {
		if retry > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("上下文已取消: %w", ctx.Err())
			case <-time.After(retryDelay):
				retryDelay *= 2
				logger.Warn().Int("retry", retry).Msg("重试精修模型调用")
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, t.timeout)
		response, err = t.model.Generate(callCtx, messages)
		cancel()

		if err == nil {
			break
		}
		if !isRetryableError(err) || retry >= t.maxRetries {
			return "", fmt.Errorf("精修模型调用失败: %w", err)
		}
	}
	return response.Content, nil
}

// HTTPTransport 直连HTTP文本生成服务的通道
// 请求体 {"prompt": ...}，响应体取 text / response / output 字段
type HTTPTransport struct {
	endpoint    string
	apiKey      string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewHTTPTransport 创建HTTP通道
func NewHTTPTransport(endpoint, apiKey string, maxTokens int, temperature float64, timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPTransport{
		endpoint:    endpoint,
		apiKey:      apiKey,
		maxTokens:   maxTokens,
		temperature: temperature,
		client:      &http.Client{Timeout: timeout},
	}
}

type httpGenerateRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type httpGenerateResponse struct {
	Text     string `json:"text"`
	Response string `json:"response"`
	Output   string `json:"output"`
}

// Generate 发送生成请求
func (t *HTTPTransport) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(httpGenerateRequest{
		Prompt:      prompt,
		MaxTokens:   t.maxTokens,
		Temperature: t.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("序列化生成请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("创建生成请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("生成请求发送失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取生成响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("生成服务返回错误状态 %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed httpGenerateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// 非JSON响应按纯文本处理
		return string(body), nil
	}
	switch {
	case parsed.Text != "":
		return parsed.Text, nil
	case parsed.Response != "":
		return parsed.Response, nil
	case parsed.Output != "":
		return parsed.Output, nil
	}
	return string(body), nil
}

// isRetryableError 判断错误是否应该重试
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "503")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
