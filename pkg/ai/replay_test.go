package ai

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedClient struct {
	responses map[string]string
	calls     int
}

func (s *scriptedClient) Chat(_ context.Context, prompt string, _ *ChatOptions) (string, error) {
	s.calls++
	return s.responses[prompt], nil
}

func TestRecordThenReplayIsBitIdentical(t *testing.T) {
	cassette := filepath.Join(t.TempDir(), "cassette.json")
	live := &scriptedClient{responses: map[string]string{
		"classify this": `{"name":"deno"}`,
		"and this":      `{"name":"fresh"}`,
	}}

	rec := NewRecorder(live, cassette)
	for _, prompt := range []string{"classify this", "and this"} {
		_, err := rec.Chat(context.Background(), prompt, nil)
		require.NoError(t, err)
	}
	require.NoError(t, rec.Close())

	replay, err := NewReplayer(cassette)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := replay.Chat(context.Background(), "classify this", nil)
		require.NoError(t, err)
		assert.Equal(t, `{"name":"deno"}`, got)
	}
	got, err := replay.Chat(context.Background(), "and this", nil)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"fresh"}`, got)

	// The recorded client was hit exactly once per prompt.
	assert.Equal(t, 2, live.calls)
}

func TestReplayerMissFails(t *testing.T) {
	replay := NewCannedReplayer(map[string]string{"known": "answer"})

	_, err := replay.Chat(context.Background(), "unknown", nil)
	assert.Error(t, err)

	got, err := replay.Chat(context.Background(), "known", nil)
	require.NoError(t, err)
	assert.Equal(t, "answer", got)
}

func TestPromptHelpers(t *testing.T) {
	paths := make([]string, 60)
	for i := range paths {
		paths[i] = "file.go"
	}
	truncated := TruncateFiles(paths, 50)
	assert.Len(t, truncated, 51)
	assert.Equal(t, "… and more", truncated[50])

	long := ""
	for i := 0; i < 300; i++ {
		long += "line of manifest content\n"
	}
	excerpt := Excerpt(long, 1024)
	assert.LessOrEqual(t, len(excerpt), 1024+len("\n…(truncated)"))
	assert.Contains(t, excerpt, "…(truncated)")
}
