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

func newPipelineService(gen *scriptedGenerator, evalGen *scriptedGenerator) *ModuleService {
	cfg := config.AIConfig{GenerationModel: "gen-model", EvaluationModel: "eval-model"}
	return &ModuleService{
		Generator: gen,
		AIConfig:  cfg,
		Artifacts: newMemoryStore(),
		Evaluator: NewEvaluationService(evalGen, cfg),
	}
}

func TestGeneratePairSequentialChain(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{
		{output: fenced(t, validRoadmapPayload())},
		{output: fenced(t, validPracticePayload())},
	}}

	artifact, err := newPipelineService(gen, nil).generatePair(context.Background(), "undergraduate", []string{"python"}, 30, "learn Go", "backend")
	require.NoError(t, err)
	require.Equal(t, 2, gen.calls)

	assert.Equal(t, []string{"week 1: basics", "week 2: structs"}, artifact.Roadmap.Topics)
	assert.Equal(t, []string{"build a CLI tool"}, artifact.Practice.HandsOnProjects)

	// 第二段提示词必须嵌入第一段解析后的路线图
	assert.Contains(t, gen.prompts[1], "week 1: basics")
	assert.Contains(t, gen.prompts[1], "mid-point quiz")
	assert.Contains(t, gen.prompts[1], "active_recall")
}

func TestGeneratePairRoadmapFailureSkipsPractice(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{
		{output: "not parseable"},
		{output: fenced(t, validPracticePayload())},
	}}

	_, err := newPipelineService(gen, nil).generatePair(context.Background(), "", nil, 30, "t", "d")
	var parseErr *contract.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 1, gen.calls, "practice stage must not run after roadmap failure")
}

func TestGeneratePairPracticeFailureAborts(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{
		{output: fenced(t, validRoadmapPayload())},
		{err: fmt.Errorf("%w: 503", util.ErrBackendUnavailable)},
	}}

	_, err := newPipelineService(gen, nil).generatePair(context.Background(), "", nil, 30, "t", "d")
	require.ErrorIs(t, err, util.ErrBackendUnavailable)
	assert.Equal(t, 2, gen.calls)
}

func TestGeneratePairPromptsDemandPlainText(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{
		{output: fenced(t, validRoadmapPayload())},
		{output: fenced(t, validPracticePayload())},
	}}

	_, err := newPipelineService(gen, nil).generatePair(context.Background(), "", nil, 30, "t", "d")
	require.NoError(t, err)
	for _, prompt := range gen.prompts {
		assert.Contains(t, prompt, "simple plain format")
	}
}

func reviseFixtures() (*model.ModuleArtifact, *model.Goal, *model.Test, *model.Score, *model.Feedback) {
	prior := &model.ModuleArtifact{
		Roadmap: model.Roadmap{
			Topics:          []string{"old topic one", "old topic two"},
			Prerequisites:   []string{"old prereq"},
			WeeklyBreakdown: []string{"old week"},
			KeyMilestones:   []string{"old milestone"},
		},
		Practice: model.PracticePlan{
			ActiveRecall:          []string{"old recall"},
			HandsOnProjects:       []string{"old project"},
			DebuggingScenarios:    []string{"old debugging"},
			CollaborativeLearning: []string{"old collab"},
		},
	}
	goal := &model.Goal{Title: "learn Go", Description: "backend"}
	test := &model.Test{ModuleInfo: "goroutines"}
	score := &model.Score{RightFluency: 0.9, WrongFluency: 0.1}
	feedback := &model.Feedback{Content: "needs more channel examples"}
	return prior, goal, test, score, feedback
}

func TestRevisePairSuccess(t *testing.T) {
	revisedRoadmap := validRoadmapPayload()
	gen := &scriptedGenerator{replies: []genReply{
		{output: fenced(t, revisedRoadmap)},
		{output: fenced(t, validPracticePayload())},
	}}
	evalGen := &scriptedGenerator{replies: []genReply{{output: fenced(t, map[string]string{
		"reward": "4", "suggestions": "add channel drills",
	})}}}

	prior, goal, test, score, feedback := reviseFixtures()
	result, ok := newPipelineService(gen, evalGen).revisePair(context.Background(), prior, goal, test, score, feedback)
	require.True(t, ok)
	assert.Equal(t, []string{"week 1: basics", "week 2: structs"}, result.Roadmap.Topics)

	// 修订提示词要带上反馈、两类成绩、奖励和完整的旧路线图
	revisePrompt := gen.prompts[0]
	assert.Contains(t, revisePrompt, "needs more channel examples")
	assert.Contains(t, revisePrompt, "0.10")
	assert.Contains(t, revisePrompt, "0.90")
	assert.Contains(t, revisePrompt, "score of 4")
	assert.Contains(t, revisePrompt, "add channel drills")
	assert.Contains(t, revisePrompt, "old topic one")
	assert.Contains(t, revisePrompt, "old milestone")
	assert.Contains(t, revisePrompt, "keeping the existing structure intact")
}

func TestRevisePairRoadmapFailureKeepsPrior(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{
		{output: "garbage"},
	}}
	evalGen := &scriptedGenerator{replies: []genReply{{output: fenced(t, map[string]string{
		"reward": "2", "suggestions": "s",
	})}}}

	prior, goal, test, score, feedback := reviseFixtures()
	result, ok := newPipelineService(gen, evalGen).revisePair(context.Background(), prior, goal, test, score, feedback)
	assert.False(t, ok)
	assert.Nil(t, result)
	// 旧产物原样保留
	assert.Equal(t, []string{"old topic one", "old topic two"}, prior.Roadmap.Topics)
	assert.Equal(t, []string{"old recall"}, prior.Practice.ActiveRecall)
}

func TestRevisePairPracticeFailureKeepsPrior(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{
		{output: fenced(t, validRoadmapPayload())},
		{err: fmt.Errorf("%w: 500", util.ErrBackendUnavailable)},
	}}
	evalGen := &scriptedGenerator{replies: []genReply{{output: fenced(t, map[string]string{
		"reward": "2", "suggestions": "s",
	})}}}

	prior, goal, test, score, feedback := reviseFixtures()
	_, ok := newPipelineService(gen, evalGen).revisePair(context.Background(), prior, goal, test, score, feedback)
	assert.False(t, ok)
	assert.Equal(t, 2, gen.calls)
}

// 评估降级不会阻断修订：降级结果照样写进修订提示词
func TestRevisePairProceedsOnEvaluationFallback(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{
		{output: fenced(t, validRoadmapPayload())},
		{output: fenced(t, validPracticePayload())},
	}}
	evalGen := &scriptedGenerator{replies: []genReply{{err: fmt.Errorf("%w: down", util.ErrBackendUnavailable)}}}

	prior, goal, test, score, feedback := reviseFixtures()
	result, ok := newPipelineService(gen, evalGen).revisePair(context.Background(), prior, goal, test, score, feedback)
	require.True(t, ok)
	require.NotNil(t, result)
	assert.Contains(t, gen.prompts[0], "score of 0")
	assert.Contains(t, gen.prompts[0], EvaluationFallbackSuggestion)
}

// 路线图可以有空的列表字段，只要字段本身在
func TestGeneratePairAcceptsEmptyLists(t *testing.T) {
	payload := validRoadmapPayload()
	payload["key_milestones"] = []string{}
	gen := &scriptedGenerator{replies: []genReply{
		{output: fenced(t, payload)},
		{output: fenced(t, validPracticePayload())},
	}}

	artifact, err := newPipelineService(gen, nil).generatePair(context.Background(), "", nil, 30, "t", "d")
	require.NoError(t, err)
	assert.Empty(t, artifact.Roadmap.KeyMilestones)
}
