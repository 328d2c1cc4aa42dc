package service

import (
	"context"
	"encoding/json"
	"fmt"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/util"
	"learnpath_backend/pkg/logger"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	logger.Log = zap.NewNop()
}

type genReply struct {
	output string
	err    error
}

// scriptedGenerator 按脚本顺序回放生成后端的输出，并记录每次调用的提示词
type scriptedGenerator struct {
	replies []genReply
	calls   int
	prompts []string
	models  []string
}

func (g *scriptedGenerator) Generate(_ context.Context, model string, prompt string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	g.models = append(g.models, model)
	if len(g.replies) == 0 {
		return "", fmt.Errorf("%w: no scripted reply left", util.ErrBackendUnavailable)
	}
	r := g.replies[0]
	g.replies = g.replies[1:]
	return r.output, r.err
}

// memoryStore 进程内产物存储，测试里替代MinIO
type memoryStore struct {
	objects map[string][]byte
	puts    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (s *memoryStore) Put(_ context.Context, collection string, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	s.objects[collection+"/"+id] = data
	s.puts++
	return id, nil
}

func (s *memoryStore) Get(_ context.Context, collection string, id string, out interface{}) error {
	data, ok := s.objects[collection+"/"+id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", util.ErrArtifactNotFound, collection, id)
	}
	return json.Unmarshal(data, out)
}

// fakeGoals 单条目标的goalReader测试替身
type fakeGoals struct {
	goal *model.Goal
}

func (f *fakeGoals) FindByIDAndUserID(id, userID uint) (*model.Goal, error) {
	if f.goal != nil && f.goal.ID == id && f.goal.UserID == userID {
		return f.goal, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// fakeTestRecords 进程内测验记录存储
type fakeTestRecords struct {
	created []*model.Test
}

func (f *fakeTestRecords) Create(test *model.Test) error {
	test.ID = uint(len(f.created) + 1)
	f.created = append(f.created, test)
	return nil
}

func (f *fakeTestRecords) FindByID(id uint) (*model.Test, error) {
	for _, t := range f.created {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTestRecords) FindPreliminaryByGoalID(goalID uint) (*model.Test, error) {
	for _, t := range f.created {
		if t.GoalID == goalID && t.Kind == model.PreliminaryTest {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeSkillNames struct {
	names []string
}

func (f *fakeSkillNames) NamesByUserID(uint) ([]string, error) {
	return f.names, nil
}

type fakeUsers struct {
	user *model.User
}

func (f *fakeUsers) FindByID(id uint) (*model.User, error) {
	if f.user != nil && f.user.ID == id {
		return f.user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func fenced(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return "```json\n" + string(data) + "\n```"
}

func validQuizPayload() map[string]interface{} {
	questions := make([]map[string]interface{}, 0, QuizQuestionCount)
	for i := 0; i < QuizQuestionCount; i++ {
		questions = append(questions, map[string]interface{}{
			"question_type":      "Remember: define",
			"skill_tested":       "pointers",
			"difficulty_tier":    "Basic",
			"question":           fmt.Sprintf("question %d", i+1),
			"options":            []string{"a", "b", "c", "d"},
			"right_answer":       "a",
			"diagnostic_insight": "checks recall",
		})
	}
	return map[string]interface{}{"questions": questions}
}

func validRoadmapPayload() map[string]interface{} {
	return map[string]interface{}{
		"topics":           []string{"week 1: basics", "week 2: structs"},
		"prerequisites":    []string{"basic programming"},
		"weekly_breakdown": []string{"week 1 objectives", "week 2 objectives"},
		"key_milestones":   []string{"mid-point quiz"},
	}
}

func validPracticePayload() map[string]interface{} {
	return map[string]interface{}{
		"active_recall":          []string{"flashcards on syntax"},
		"hands_on_projects":      []string{"build a CLI tool"},
		"debugging_scenarios":    []string{"nil pointer dereference"},
		"collaborative_learning": []string{"pair review sessions"},
	}
}
