package service

import (
	"context"
	"encoding/json"
	"fmt"
	"learnpath_backend/internal/config"
	"learnpath_backend/internal/util"
	"learnpath_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// chatHistoryLimit 保留的最近消息条数。超出后裁掉最旧的消息，
// 首条目标上下文消息除外，保证助手始终知道用户在学什么
const chatHistoryLimit = 20

const chatGreeting = "I am happy to help you. Please ask your doubts."

// ChatBackend 多轮对话后端
type ChatBackend interface {
	Chat(ctx context.Context, model string, messages []AIChatMessage) (string, error)
}

// ChatHistory 每个用户一份对话历史。Redis实现带TTL，重开目标时Reset
type ChatHistory interface {
	Load(ctx context.Context, userID uint) ([]AIChatMessage, error)
	Save(ctx context.Context, userID uint, messages []AIChatMessage) error
	Reset(ctx context.Context, userID uint) error
}

// ChatService 学习目标答疑助手。
// 开场消息注入目标标题和描述作为上下文，之后的提问带完整历史发给对话模型。
// 后端失败属于致命错误（创建类策略），不做降级
type ChatService struct {
	Backend  ChatBackend
	AIConfig config.AIConfig
	History  ChatHistory
	GoalRepo goalReader
}

func NewChatService(backend ChatBackend, aiCfg config.AIConfig, history ChatHistory, goalRepo goalReader) *ChatService {
	return &ChatService{
		Backend:  backend,
		AIConfig: aiCfg,
		History:  history,
		GoalRepo: goalRepo,
	}
}

// StartChat 围绕一个学习目标开启新对话，清空旧历史。
// 返回助手对开场消息的回复
func (s *ChatService) StartChat(ctx context.Context, userID, goalID uint) (string, error) {
	goal, err := s.GoalRepo.FindByIDAndUserID(goalID, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", util.ErrGoalNotFound
		}
		return "", err
	}

	if err := s.History.Reset(ctx, userID); err != nil {
		return "", err
	}

	intro := fmt.Sprintf(
		"I am a student and I want to learn %s. The description for this skill is: %s. Please solve my doubts regarding the same.",
		goal.Title, goal.Description,
	)

	history := []AIChatMessage{
		{Role: "user", Content: intro},
		{Role: "assistant", Content: chatGreeting},
	}

	reply, err := s.Backend.Chat(ctx, s.AIConfig.ChatModel, history)
	if err != nil {
		return "", err
	}

	history = append(history, AIChatMessage{Role: "assistant", Content: reply})
	if err := s.History.Save(ctx, userID, history); err != nil {
		return "", err
	}

	logger.Log.Info("chat started", zap.Uint("goalId", goal.ID))
	return reply, nil
}

// Ask 在当前对话中追问。没有历史时也可直接提问（无目标上下文）
func (s *ChatService) Ask(ctx context.Context, userID uint, message string) (string, error) {
	history, err := s.History.Load(ctx, userID)
	if err != nil {
		return "", err
	}

	history = append(history, AIChatMessage{Role: "user", Content: message})
	history = trimChatHistory(history)

	reply, err := s.Backend.Chat(ctx, s.AIConfig.ChatModel, history)
	if err != nil {
		return "", err
	}

	history = append(history, AIChatMessage{Role: "assistant", Content: reply})
	if err := s.History.Save(ctx, userID, trimChatHistory(history)); err != nil {
		return "", err
	}
	return reply, nil
}

// trimChatHistory 超限时保留首条上下文消息和最近的若干条
func trimChatHistory(history []AIChatMessage) []AIChatMessage {
	if len(history) <= chatHistoryLimit {
		return history
	}
	trimmed := make([]AIChatMessage, 0, chatHistoryLimit)
	trimmed = append(trimmed, history[0])
	trimmed = append(trimmed, history[len(history)-(chatHistoryLimit-1):]...)
	return trimmed
}

// RedisChatHistory 对话历史的Redis实现，整段JSON存取
type RedisChatHistory struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisChatHistory(rdb *redis.Client) *RedisChatHistory {
	return &RedisChatHistory{rdb: rdb, ttl: 24 * time.Hour}
}

func chatHistoryKey(userID uint) string {
	return fmt.Sprintf("chat:history:%d", userID)
}

func (h *RedisChatHistory) Load(ctx context.Context, userID uint) ([]AIChatMessage, error) {
	data, err := h.rdb.Get(ctx, chatHistoryKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var history []AIChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (h *RedisChatHistory) Save(ctx context.Context, userID uint, messages []AIChatMessage) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	return h.rdb.Set(ctx, chatHistoryKey(userID), data, h.ttl).Err()
}

func (h *RedisChatHistory) Reset(ctx context.Context, userID uint) error {
	return h.rdb.Del(ctx, chatHistoryKey(userID)).Err()
}

var _ ChatHistory = (*RedisChatHistory)(nil)
