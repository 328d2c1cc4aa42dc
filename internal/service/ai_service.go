package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"learnpath_backend/internal/config"
	"learnpath_backend/internal/util"
	"net/http"
	"time"
)

// TextGenerator 文本生成后端。每次调用发出一个同步请求并等待完整响应，
// 不重试、不消费流式输出。所有管线组件都通过该接口注入后端，便于替换与测试
type TextGenerator interface {
	Generate(ctx context.Context, model string, prompt string) (string, error)
}

// AIService 调用OpenAI兼容的chat completions接口
type AIService struct {
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// GenerationModel 常规生成（出题/路线图/练习）使用的模型名
func (s *AIService) GenerationModel() string {
	return s.config.GenerationModel
}

// EvaluationModel 奖励评估使用的模型名
func (s *AIService) EvaluationModel() string {
	return s.config.EvaluationModel
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model       string          `json:"model"`
	Messages    []AIChatMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate 单发单收。后端失败一律包装为util.ErrBackendUnavailable，
// 由各组件按自身的错误策略处理（创建类致命，修订类降级）
func (s *AIService) Generate(ctx context.Context, model string, prompt string) (string, error) {
	return s.Chat(ctx, model, []AIChatMessage{{Role: "user", Content: prompt}})
}

// Chat 带历史消息的多轮调用，答疑助手使用。错误包装策略与Generate一致
func (s *AIService) Chat(ctx context.Context, model string, messages []AIChatMessage) (string, error) {
	reqBody := ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: 0,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", util.ErrBackendUnavailable, resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrBackendUnavailable, err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("%w: %s", util.ErrBackendUnavailable, result.Error.Message)
	}

	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("%w: no choices returned", util.ErrBackendUnavailable)
}
