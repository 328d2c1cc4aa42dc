package service

import (
	"context"
	"learnpath_backend/internal/config"
	"learnpath_backend/internal/contract"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQualifier(gen *scriptedGenerator) *QualifierService {
	return NewQualifierService(gen, config.AIConfig{GenerationModel: "gen-model", EvaluationModel: "eval-model"})
}

func TestQualifyGoalAccepted(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{{output: fenced(t, map[string]string{
		"is_smart":      "yes",
		"reason":        "specific and time-bound",
		"smart_example": "",
	})}}}

	verdict, err := newQualifier(gen).QualifyGoal(context.Background(), "learn Go", "build a web service", []string{"python"}, 30)
	require.NoError(t, err)
	assert.True(t, verdict.IsSmart)
	assert.Equal(t, "specific and time-bound", verdict.Rationale)
	assert.Equal(t, "gen-model", gen.models[0])
}

func TestQualifyGoalVerdictCaseInsensitive(t *testing.T) {
	for _, answer := range []string{"yes", "YES", "Yes"} {
		gen := &scriptedGenerator{replies: []genReply{{output: fenced(t, map[string]string{
			"is_smart":      answer,
			"reason":        "ok",
			"smart_example": "",
		})}}}

		verdict, err := newQualifier(gen).QualifyGoal(context.Background(), "t", "d", nil, 10)
		require.NoError(t, err)
		assert.True(t, verdict.IsSmart, "answer %q should be accepted", answer)
	}
}

func TestQualifyGoalRejectedKeepsSuggestions(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{{output: fenced(t, map[string]string{
		"is_smart":      "no",
		"reason":        "no measurable outcome",
		"smart_example": "learn Go by building three CLI tools in 30 days",
	})}}}

	verdict, err := newQualifier(gen).QualifyGoal(context.Background(), "learn stuff", "", nil, 30)
	require.NoError(t, err)
	assert.False(t, verdict.IsSmart)
	assert.Equal(t, "no measurable outcome", verdict.Rationale)
	assert.Equal(t, "learn Go by building three CLI tools in 30 days", verdict.Suggestions)
}

// 既不是yes也不是no的答案按保守处理：不通过
func TestQualifyGoalUnexpectedAnswerRejected(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{{output: fenced(t, map[string]string{
		"is_smart":      "maybe",
		"reason":        "unclear",
		"smart_example": "",
	})}}}

	verdict, err := newQualifier(gen).QualifyGoal(context.Background(), "t", "d", nil, 10)
	require.NoError(t, err)
	assert.False(t, verdict.IsSmart)
}

func TestQualifyGoalParseFailurePropagates(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{{output: "no json at all"}}}

	_, err := newQualifier(gen).QualifyGoal(context.Background(), "t", "d", nil, 10)
	var parseErr *contract.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "no json at all", parseErr.Raw)
}

func TestQualifyGoalPromptCarriesContext(t *testing.T) {
	gen := &scriptedGenerator{replies: []genReply{{output: fenced(t, map[string]string{
		"is_smart": "yes", "reason": "r", "smart_example": "",
	})}}}

	_, err := newQualifier(gen).QualifyGoal(context.Background(), "learn Rust", "ownership deep dive", []string{"go", "c"}, 45)
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "learn Rust")
	assert.Contains(t, gen.prompts[0], "ownership deep dive")
	assert.Contains(t, gen.prompts[0], "go, c")
	assert.Contains(t, gen.prompts[0], "45 days")
	assert.Contains(t, gen.prompts[0], "is_smart")
}
