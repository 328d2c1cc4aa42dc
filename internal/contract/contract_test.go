package contract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verdictContract(t *testing.T) Contract {
	t.Helper()
	c, err := Build(
		Field{Name: "is_smart", Description: "whether the goal is smart, yes or no"},
		Field{Name: "reason", Description: "reason for the answer"},
		Field{Name: "smart_example", Description: "suggestions to make the goal SMART"},
	)
	require.NoError(t, err)
	return c
}

func TestBuildRejectsDuplicateNames(t *testing.T) {
	_, err := Build(
		Field{Name: "topics", Description: "a"},
		Field{Name: "topics", Description: "b"},
	)
	assert.Error(t, err)
}

func TestBuildRejectsDuplicateItemNames(t *testing.T) {
	_, err := Build(
		Field{Name: "questions", Description: "q", Item: []Field{
			{Name: "question", Description: "a"},
			{Name: "question", Description: "b"},
		}},
	)
	assert.Error(t, err)
}

func TestRenderInstructionsDeterministic(t *testing.T) {
	c := verdictContract(t)
	first := c.RenderInstructions()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.RenderInstructions())
	}
	assert.Contains(t, first, "```json")
	assert.Contains(t, first, `"is_smart"`)
	assert.Contains(t, first, "yes or no")
}

func TestParseRoundTrip(t *testing.T) {
	c := verdictContract(t)
	payload := "```json\n{\"is_smart\": \"yes\", \"reason\": \"it is measurable\", \"smart_example\": \"none needed\"}\n```"

	got, err := c.Parse(payload)
	require.NoError(t, err)
	assert.Equal(t, "yes", GetString(got, "is_smart"))
	assert.Equal(t, "it is measurable", GetString(got, "reason"))
	assert.Equal(t, "none needed", GetString(got, "smart_example"))
}

func TestParseToleratesSurroundingProse(t *testing.T) {
	c := verdictContract(t)
	payload := "Sure! Here is my assessment:\n\n```json\n" +
		"{\"is_smart\": \"no\", \"reason\": \"no deadline\", \"smart_example\": \"add a 60 day target\"}\n" +
		"```\n\nLet me know if you need anything else."

	got, err := c.Parse(payload)
	require.NoError(t, err)
	assert.Equal(t, "no", GetString(got, "is_smart"))
}

func TestParseWithoutFence(t *testing.T) {
	c := verdictContract(t)
	payload := `{"is_smart": "yes", "reason": "r", "smart_example": "s"}`

	got, err := c.Parse(payload)
	require.NoError(t, err)
	assert.Equal(t, "yes", GetString(got, "is_smart"))
}

func TestParseMissingFieldFails(t *testing.T) {
	c := verdictContract(t)
	_, err := c.Parse("```json\n{\"is_smart\": \"yes\", \"reason\": \"r\"}\n```")

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "smart_example", perr.Field)
	assert.Contains(t, perr.Raw, "is_smart")
}

func TestParseMalformedJSONKeepsRaw(t *testing.T) {
	c := verdictContract(t)
	raw := "```json\n{\"is_smart\": \n```"
	_, err := c.Parse(raw)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, raw, perr.Raw)
}

func TestParseStringListArity(t *testing.T) {
	c := MustBuild(Field{Name: "options", Description: "four options", List: true, Arity: 4})

	_, err := c.Parse(`{"options": ["a", "b", "c"]}`)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Reason, "exactly 4")

	got, err := c.Parse(`{"options": ["a", "b", "c", "d"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, GetStringList(got, "options"))
}

func TestParseObjectList(t *testing.T) {
	c := MustBuild(Field{
		Name:        "questions",
		Description: "the questions",
		Item: []Field{
			{Name: "question", Description: "statement"},
			{Name: "options", Description: "choices", List: true, Arity: 2},
		},
	})

	got, err := c.Parse(`{"questions": [{"question": "q1", "options": ["a", "b"]}]}`)
	require.NoError(t, err)
	items := GetObjectList(got, "questions")
	require.Len(t, items, 1)
	assert.Equal(t, "q1", GetString(items[0], "question"))
	assert.Equal(t, []string{"a", "b"}, GetStringList(items[0], "options"))

	_, err = c.Parse(`{"questions": [{"question": "q1", "options": ["a"]}]}`)
	assert.Error(t, err)

	_, err = c.Parse(`{"questions": [{"options": ["a", "b"]}]}`)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "questions.question", perr.Field)
}

func TestParseNumericScalarCoerced(t *testing.T) {
	c := MustBuild(
		Field{Name: "reward", Description: "score"},
		Field{Name: "suggestions", Description: "text"},
	)

	got, err := c.Parse(`{"reward": 7, "suggestions": "more projects"}`)
	require.NoError(t, err)
	assert.Equal(t, "7", GetString(got, "reward"))
}

func TestRenderParseRoundTripAllShapes(t *testing.T) {
	c := MustBuild(
		Field{Name: "topics", Description: "topics", List: true},
		Field{Name: "summary", Description: "summary"},
	)
	instructions := c.RenderInstructions()
	assert.True(t, strings.Contains(instructions, `"topics"`))

	// 按说明格式回填的输出必须能原样解析出来
	payload := "```json\n{\"topics\": [\"pointers\", \"arrays\"], \"summary\": \"C basics\"}\n```"
	got, err := c.Parse(payload)
	require.NoError(t, err)
	assert.Equal(t, []string{"pointers", "arrays"}, GetStringList(got, "topics"))
	assert.Equal(t, "C basics", GetString(got, "summary"))
}
