package intent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/formfiller/internal/fakemodel"
)

func TestPermissive(t *testing.T) {
	t.Parallel()
	assert.True(t, Permissive(Exit, "true\n}"))
	assert.True(t, Permissive(Exit, "TRUE"))
	assert.True(t, Permissive(Exit, "definitely not true"))
	assert.False(t, Permissive(Exit, "false\n}"))
	assert.False(t, Permissive(Exit, ""))
}

func TestStrict(t *testing.T) {
	t.Parallel()
	cases := map[string]bool{
		"true\n}":                   true,
		" True }":                   true,
		"false }":                   false,
		"definitely not true":       false,
		"trueish":                   false,
		"{\"exit\": true}":          true,
		"```json\n{\"exit\": true}": true,
		"{\"confirm\": true}":       false,
		"{\"exit\": \"true\"}":      false,
		"":                          false,
	}
	for reply, want := range cases {
		assert.Equal(t, want, Strict(Exit, reply), reply)
	}
}

func TestModelClassifierPrompt(t *testing.T) {
	t.Parallel()
	fm := fakemodel.Text(func(string) (string, error) { return "true\n}", nil })
	c := NewModelClassifier(fm)

	ok, err := c.Classify(context.Background(), Confirm, "yes, go ahead")

	require.NoError(t, err)
	assert.True(t, ok)
	prompt := fm.Calls()[0].Prompt()
	assert.Contains(t, prompt, "representing whether a user is confirming or not")
	assert.Contains(t, prompt, "User said \"yes, go ahead\"")
	assert.True(t, strings.HasSuffix(prompt, "{\n    \"confirm\": "))
}

func TestModelClassifierWithStrictReducer(t *testing.T) {
	t.Parallel()
	fm := fakemodel.Text(func(string) (string, error) { return "not true at all", nil })

	permissive, err := NewModelClassifier(fm).Classify(context.Background(), Exit, "hmm")
	require.NoError(t, err)
	strict, err := NewModelClassifier(fm, WithReducer(Strict)).Classify(context.Background(), Exit, "hmm")
	require.NoError(t, err)

	assert.True(t, permissive)
	assert.False(t, strict)
}

func TestModelClassifierPropagatesFailure(t *testing.T) {
	t.Parallel()
	boom := errors.New("rate limited")
	fm := fakemodel.Text(func(string) (string, error) { return "", boom })

	_, err := NewModelClassifier(fm).Classify(context.Background(), Exit, "bye")

	require.ErrorIs(t, err, boom)
}

func TestKeywordClassifier(t *testing.T) {
	t.Parallel()
	c := NewKeywordClassifier()
	ctx := context.Background()

	for _, tc := range []struct {
		q         Question
		utterance string
		want      bool
	}{
		{Exit, " Cancel ", true},
		{Exit, "退出", true},
		{Exit, "cancel the pepperoni", false},
		{Confirm, "Yes!", true},
		{Confirm, "ok", true},
		{Confirm, "no", false},
		{Question{Key: "other"}, "yes", false},
	} {
		got, err := c.Classify(ctx, tc.q, tc.utterance)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.utterance)
	}
}

func TestToolClassifier(t *testing.T) {
	t.Parallel()
	fm := fakemodel.Queue(
		fakemodel.ToolCall(answerToolName, `{"value": true}`),
		fakemodel.ToolCall(answerToolName, `{"value": false}`),
	)
	c, err := NewToolClassifier(fm)
	require.NoError(t, err)

	yes, err := c.Classify(context.Background(), Confirm, "sure")
	require.NoError(t, err)
	no, err := c.Classify(context.Background(), Confirm, "wait")
	require.NoError(t, err)

	assert.True(t, yes)
	assert.False(t, no)
	assert.Contains(t, fm.Calls()[0].Prompt(), "whether a user is confirming or not")

	_, err = c.Classify(context.Background(), Confirm, "again")
	require.ErrorIs(t, err, fakemodel.ErrExhausted)
}

func TestFailbackClassifier(t *testing.T) {
	t.Parallel()
	boom := errors.New("down")
	failing := NewModelClassifier(fakemodel.Text(func(string) (string, error) { return "", boom }))

	got, err := NewFailbackClassifier(failing, NewKeywordClassifier()).Classify(context.Background(), Exit, "quit")
	require.NoError(t, err)
	assert.True(t, got)

	_, err = NewFailbackClassifier(failing).Classify(context.Background(), Exit, "quit")
	require.ErrorIs(t, err, boom)
}
