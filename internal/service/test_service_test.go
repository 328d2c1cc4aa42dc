package service

import (
	"context"
	"fmt"
	"learnpath_backend/internal/config"
	"learnpath_backend/internal/contract"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuizService(gen *scriptedGenerator) *TestService {
	// generateQuiz 只依赖生成器和契约，仓储留空
	return &TestService{
		Generator: gen,
		AIConfig:  config.AIConfig{GenerationModel: "gen-model", EvaluationModel: "eval-model"},
		Artifacts: newMemoryStore(),
	}
}

func TestGenerateQuizValid(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{{output: fenced(t, validQuizPayload())}}}

	quiz, err := newQuizService(gen).generateQuiz(context.Background(), "undergraduate", "learn Go", "backend", []string{"python"}, model.PreliminaryTest, "")
	require.NoError(t, err)
	require.Len(t, quiz.Questions, QuizQuestionCount)
	for _, q := range quiz.Questions {
		assert.Len(t, q.Options, 4)
		assert.NotEmpty(t, q.Prompt)
		assert.NotEmpty(t, q.CorrectAnswer)
	}
	assert.Equal(t, model.DifficultyTier("Basic"), quiz.Questions[0].DifficultyTier)
}

func TestGenerateQuizWrongQuestionCountFails(t *testing.T) {
	payload := validQuizPayload()
	payload["questions"] = payload["questions"].([]map[string]interface{})[:9]
	gen := &scriptedGenerator{replies: []genReply{{output: fenced(t, payload)}}}

	_, err := newQuizService(gen).generateQuiz(context.Background(), "", "t", "d", nil, model.PreliminaryTest, "")
	var parseErr *contract.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "questions", parseErr.Field)
}

func TestGenerateQuizWrongOptionCountFails(t *testing.T) {
	payload := validQuizPayload()
	payload["questions"].([]map[string]interface{})[4]["options"] = []string{"a", "b", "c"}
	gen := &scriptedGenerator{replies: []genReply{{output: fenced(t, payload)}}}

	_, err := newQuizService(gen).generateQuiz(context.Background(), "", "t", "d", nil, model.PreliminaryTest, "")
	var parseErr *contract.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestGenerateQuizMissingItemFieldFails(t *testing.T) {
	payload := validQuizPayload()
	delete(payload["questions"].([]map[string]interface{})[0], "right_answer")
	gen := &scriptedGenerator{replies: []genReply{{output: fenced(t, payload)}}}

	_, err := newQuizService(gen).generateQuiz(context.Background(), "", "t", "d", nil, model.PreliminaryTest, "")
	var parseErr *contract.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestGenerateQuizBackendErrorPropagates(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{{err: fmt.Errorf("%w: timeout", util.ErrBackendUnavailable)}}}

	_, err := newQuizService(gen).generateQuiz(context.Background(), "", "t", "d", nil, model.PreliminaryTest, "")
	require.ErrorIs(t, err, util.ErrBackendUnavailable)
}

func TestQuizPromptPreliminaryVsModule(t *testing.T) {
	prelim := buildQuizPrompt("graduate", "learn Go", "desc", []string{"c", "sql"}, model.PreliminaryTest, "")
	assert.Contains(t, prelim, "Bloom's Taxonomy")
	assert.Contains(t, prelim, "c, sql")
	assert.Contains(t, prelim, "10-question")
	assert.NotContains(t, prelim, "completed the module")

	moduleQuiz := buildQuizPrompt("graduate", "learn Go", "desc", nil, model.ModuleTest, "goroutines")
	assert.Contains(t, moduleQuiz, `completed the module "goroutines"`)
	assert.Contains(t, moduleQuiz, "none", "empty skill list renders as none")
}

func newPreliminaryService(gen *scriptedGenerator, goal *model.Goal, user *model.User) *TestService {
	return &TestService{
		Generator: gen,
		AIConfig:  config.AIConfig{GenerationModel: "gen-model"},
		Artifacts: newMemoryStore(),
		TestRepo:  &fakeTestRecords{},
		GoalRepo:  &fakeGoals{goal: goal},
		SkillRepo: &fakeSkillNames{names: []string{"python"}},
		UserRepo:  &fakeUsers{user: user},
	}
}

func preliminaryFixtures() (*model.Goal, *model.User) {
	goal := &model.Goal{UserID: 7, Title: "learn Go", Description: "backend", DurationDays: 45, IsSmart: true}
	goal.ID = 3
	user := &model.User{Education: "undergraduate"}
	user.ID = 7
	return goal, user
}

func TestGeneratePreliminaryOnlyOnce(t *testing.T) {
	goal, user := preliminaryFixtures()
	gen := &scriptedGenerator{replies: []genReply{{output: fenced(t, validQuizPayload())}}}
	svc := newPreliminaryService(gen, goal, user)

	first, err := svc.GeneratePreliminary(context.Background(), 7, 3)
	require.NoError(t, err)
	require.Len(t, first.Quiz.Questions, QuizQuestionCount)
	assert.Equal(t, 1, gen.calls)

	// 二次请求直接取回存量产物，不再触发生成后端
	second, err := svc.GeneratePreliminary(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, first.Test.ID, second.Test.ID)
	assert.Equal(t, first.Test.ArtifactID, second.Test.ArtifactID)
	assert.Equal(t, first.Quiz.Questions, second.Quiz.Questions)
}

func TestGeneratePreliminaryUnknownGoal(t *testing.T) {
	goal, user := preliminaryFixtures()
	gen := &scriptedGenerator{}
	svc := newPreliminaryService(gen, goal, user)

	_, err := svc.GeneratePreliminary(context.Background(), 7, 99)
	require.ErrorIs(t, err, util.ErrGoalNotFound)
	assert.Zero(t, gen.calls)
}

func TestGeneratePreliminaryFailureLeavesNoRecord(t *testing.T) {
	goal, user := preliminaryFixtures()
	gen := &scriptedGenerator{replies: []genReply{{err: fmt.Errorf("%w: down", util.ErrBackendUnavailable)}}}
	svc := newPreliminaryService(gen, goal, user)

	_, err := svc.GeneratePreliminary(context.Background(), 7, 3)
	require.ErrorIs(t, err, util.ErrBackendUnavailable)

	records := svc.TestRepo.(*fakeTestRecords)
	assert.Empty(t, records.created)
	assert.Zero(t, svc.Artifacts.(*memoryStore).puts)
}
