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

func evalFixtures() (*model.Goal, *model.Test, *model.Score, *model.Feedback) {
	goal := &model.Goal{Title: "learn Go", Description: "backend services"}
	test := &model.Test{ModuleInfo: "goroutines"}
	score := &model.Score{RightFluency: 0.8, WrongFluency: 0.2}
	feedback := &model.Feedback{Content: "too fast on channels"}
	return goal, test, score, feedback
}

func newEvaluator(gen *scriptedGenerator) *EvaluationService {
	return NewEvaluationService(gen, config.AIConfig{GenerationModel: "gen-model", EvaluationModel: "eval-model"})
}

func TestEvaluateSuccess(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{{output: fenced(t, map[string]string{
		"reward":      "7",
		"suggestions": "slow down on channels",
	})}}}

	goal, test, score, feedback := evalFixtures()
	result := newEvaluator(gen).Evaluate(context.Background(), goal, test, score, feedback)
	assert.Equal(t, 7, result.Reward)
	assert.Equal(t, "slow down on channels", result.Suggestions)
	assert.Equal(t, "eval-model", gen.models[0], "evaluation uses its own model")
}

func TestEvaluateBackendErrorFallsBack(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{{err: fmt.Errorf("%w: 503", util.ErrBackendUnavailable)}}}

	goal, test, score, feedback := evalFixtures()
	result := newEvaluator(gen).Evaluate(context.Background(), goal, test, score, feedback)
	assert.Equal(t, 0, result.Reward)
	assert.Equal(t, EvaluationFallbackSuggestion, result.Suggestions)
}

func TestEvaluateUnparseableFallsBack(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{{output: "I think the module was fine."}}}

	goal, test, score, feedback := evalFixtures()
	result := newEvaluator(gen).Evaluate(context.Background(), goal, test, score, feedback)
	assert.Equal(t, 0, result.Reward)
	assert.Equal(t, EvaluationFallbackSuggestion, result.Suggestions)
}

func TestEvaluateNonNumericRewardFallsBack(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{{output: fenced(t, map[string]string{
		"reward":      "seven out of ten",
		"suggestions": "n/a",
	})}}}

	goal, test, score, feedback := evalFixtures()
	result := newEvaluator(gen).Evaluate(context.Background(), goal, test, score, feedback)
	assert.Equal(t, 0, result.Reward)
	assert.Equal(t, EvaluationFallbackSuggestion, result.Suggestions)
}

func TestEvaluateRewardClamped(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"15", 10},
		{"-30", -10},
		{"-10", -10},
		{"10", 10},
		{"0", 0},
	}
	for _, tc := range cases {
		gen := &scriptedGenerator{replies: []genReply{{output: fenced(t, map[string]string{
			"reward":      tc.raw,
			"suggestions": "s",
		})}}}

		goal, test, score, feedback := evalFixtures()
		result := newEvaluator(gen).Evaluate(context.Background(), goal, test, score, feedback)
		assert.Equal(t, tc.want, result.Reward, "raw reward %q", tc.raw)
	}
}

// 数值型reward（未加引号的JSON number）也要能解析
func TestEvaluateNumericJSONReward(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{{output: fenced(t, map[string]interface{}{
		"reward":      -3,
		"suggestions": "more practice tasks",
	})}}}

	goal, test, score, feedback := evalFixtures()
	result := newEvaluator(gen).Evaluate(context.Background(), goal, test, score, feedback)
	assert.Equal(t, -3, result.Reward)
	assert.Equal(t, "more practice tasks", result.Suggestions)
}

func TestEvaluatePromptCarriesScoresAndFeedback(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{{output: fenced(t, map[string]string{
		"reward": "1", "suggestions": "s",
	})}}}

	goal, test, score, feedback := evalFixtures()
	newEvaluator(gen).Evaluate(context.Background(), goal, test, score, feedback)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "goroutines")
	assert.Contains(t, gen.prompts[0], "0.20")
	assert.Contains(t, gen.prompts[0], "0.80")
	assert.Contains(t, gen.prompts[0], "too fast on channels")
}
