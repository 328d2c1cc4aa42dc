package service

import (
	"context"
	"fmt"
	"learnpath_backend/internal/config"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedChat 按脚本回放对话后端，记录每次调用的完整消息列表
type scriptedChat struct {
	replies []genReply
	calls   [][]AIChatMessage
	models  []string
}

func (c *scriptedChat) Chat(_ context.Context, model string, messages []AIChatMessage) (string, error) {
	c.models = append(c.models, model)
	c.calls = append(c.calls, append([]AIChatMessage(nil), messages...))
	if len(c.replies) == 0 {
		return "", fmt.Errorf("%w: no scripted reply left", util.ErrBackendUnavailable)
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r.output, r.err
}

// memHistory 进程内对话历史
type memHistory struct {
	histories map[uint][]AIChatMessage
	resets    int
}

func newMemHistory() *memHistory {
	return &memHistory{histories: map[uint][]AIChatMessage{}}
}

func (h *memHistory) Load(_ context.Context, userID uint) ([]AIChatMessage, error) {
	return append([]AIChatMessage(nil), h.histories[userID]...), nil
}

func (h *memHistory) Save(_ context.Context, userID uint, messages []AIChatMessage) error {
	h.histories[userID] = append([]AIChatMessage(nil), messages...)
	return nil
}

func (h *memHistory) Reset(_ context.Context, userID uint) error {
	h.resets++
	delete(h.histories, userID)
	return nil
}

func newChatService(backend *scriptedChat, history *memHistory) *ChatService {
	goal := &model.Goal{UserID: 7, Title: "machine learning", Description: "from regression to transformers", IsSmart: true}
	goal.ID = 3
	return NewChatService(backend, config.AIConfig{ChatModel: "chat-model"}, history, &fakeGoals{goal: goal})
}

func TestStartChatSeedsGoalContext(t *testing.T) {
	backend := &scriptedChat{replies: []genReply{{output: "Sure, where shall we begin?"}}}
	history := newMemHistory()
	svc := newChatService(backend, history)

	reply, err := svc.StartChat(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, "Sure, where shall we begin?", reply)
	assert.Equal(t, 1, history.resets)
	assert.Equal(t, []string{"chat-model"}, backend.models)

	require.Len(t, backend.calls, 1)
	sent := backend.calls[0]
	require.Len(t, sent, 2)
	assert.Equal(t, "user", sent[0].Role)
	assert.Contains(t, sent[0].Content, "I want to learn machine learning")
	assert.Contains(t, sent[0].Content, "from regression to transformers")
	assert.Contains(t, sent[0].Content, "Please solve my doubts")
	assert.Equal(t, chatGreeting, sent[1].Content)

	saved := history.histories[7]
	require.Len(t, saved, 3)
	assert.Equal(t, "assistant", saved[2].Role)
	assert.Equal(t, reply, saved[2].Content)
}

func TestStartChatUnknownGoal(t *testing.T) {
	backend := &scriptedChat{}
	svc := newChatService(backend, newMemHistory())

	_, err := svc.StartChat(context.Background(), 7, 99)
	require.ErrorIs(t, err, util.ErrGoalNotFound)
	assert.Empty(t, backend.calls)
}

func TestAskCarriesHistory(t *testing.T) {
	backend := &scriptedChat{replies: []genReply{{output: "Gradient descent minimizes the loss."}}}
	history := newMemHistory()
	history.histories[7] = []AIChatMessage{
		{Role: "user", Content: "intro"},
		{Role: "assistant", Content: chatGreeting},
	}
	svc := newChatService(backend, history)

	reply, err := svc.Ask(context.Background(), 7, "what is gradient descent?")
	require.NoError(t, err)
	assert.Equal(t, "Gradient descent minimizes the loss.", reply)

	require.Len(t, backend.calls, 1)
	sent := backend.calls[0]
	require.Len(t, sent, 3)
	assert.Equal(t, "intro", sent[0].Content)
	assert.Equal(t, "what is gradient descent?", sent[2].Content)

	saved := history.histories[7]
	require.Len(t, saved, 4)
	assert.Equal(t, reply, saved[3].Content)
}

func TestAskTrimsLongHistoryKeepingContext(t *testing.T) {
	backend := &scriptedChat{replies: []genReply{{output: "short answer"}}}
	history := newMemHistory()
	seed := []AIChatMessage{{Role: "user", Content: "intro"}}
	for i := 0; i < 30; i++ {
		seed = append(seed, AIChatMessage{Role: "user", Content: fmt.Sprintf("question %d", i)})
	}
	history.histories[7] = seed
	svc := newChatService(backend, history)

	_, err := svc.Ask(context.Background(), 7, "one more")
	require.NoError(t, err)

	require.Len(t, backend.calls, 1)
	sent := backend.calls[0]
	assert.Len(t, sent, chatHistoryLimit)
	// 首条目标上下文消息永不被裁掉
	assert.Equal(t, "intro", sent[0].Content)
	assert.Equal(t, "one more", sent[len(sent)-1].Content)

	saved := history.histories[7]
	assert.Len(t, saved, chatHistoryLimit)
	assert.Equal(t, "intro", saved[0].Content)
	assert.Equal(t, "short answer", saved[len(saved)-1].Content)
}

func TestAskBackendFailureLeavesHistoryUntouched(t *testing.T) {
	backend := &scriptedChat{replies: []genReply{{err: fmt.Errorf("%w: down", util.ErrBackendUnavailable)}}}
	history := newMemHistory()
	history.histories[7] = []AIChatMessage{{Role: "user", Content: "intro"}}
	svc := newChatService(backend, history)

	_, err := svc.Ask(context.Background(), 7, "anyone there?")
	require.ErrorIs(t, err, util.ErrBackendUnavailable)
	require.Len(t, history.histories[7], 1)
}
