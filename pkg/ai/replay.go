package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// cassetteEntry is one recorded exchange. The prompt digest is the lookup
// key so cassettes stay small even with large prompts; the prompt text is
// kept for inspection.
type cassetteEntry struct {
	PromptSHA256 string `json:"prompt_sha256"`
	Prompt       string `json:"prompt,omitempty"`
	Response     string `json:"response"`
}

func promptDigest(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// Recorder wraps a live client, keeps every successful exchange in memory
// and writes them all to the cassette file on Close, replacing any
// existing file.
type Recorder struct {
	inner Client

	mu      sync.Mutex
	path    string
	entries []cassetteEntry
}

// NewRecorder records exchanges of the inner client into path.
func NewRecorder(inner Client, path string) *Recorder {
	return &Recorder{inner: inner, path: path}
}

func (r *Recorder) Chat(ctx context.Context, prompt string, opts *ChatOptions) (string, error) {
	resp, err := r.inner.Chat(ctx, prompt, opts)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	r.entries = append(r.entries, cassetteEntry{
		PromptSHA256: promptDigest(prompt),
		Prompt:       prompt,
		Response:     resp,
	})
	r.mu.Unlock()
	return resp, nil
}

// Close writes the cassette to disk.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := json.MarshalIndent(r.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o644)
}

// Replayer answers from a cassette only. Identical prompts yield
// bit-identical responses; unknown prompts fail.
type Replayer struct {
	responses map[string]string
}

// NewReplayer loads a cassette file recorded by Recorder.
func NewReplayer(path string) (*Replayer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cassette: %w", err)
	}
	var entries []cassetteEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing cassette %s: %w", path, err)
	}
	return newReplayerFromEntries(entries), nil
}

func newReplayerFromEntries(entries []cassetteEntry) *Replayer {
	responses := make(map[string]string, len(entries))
	for _, e := range entries {
		key := e.PromptSHA256
		if key == "" {
			key = promptDigest(e.Prompt)
		}
		responses[key] = e.Response
	}
	return &Replayer{responses: responses}
}

// NewCannedReplayer maps literal prompts to responses.
func NewCannedReplayer(exchanges map[string]string) *Replayer {
	responses := make(map[string]string, len(exchanges))
	for prompt, resp := range exchanges {
		responses[promptDigest(prompt)] = resp
	}
	return &Replayer{responses: responses}
}

func (r *Replayer) Chat(_ context.Context, prompt string, _ *ChatOptions) (string, error) {
	if resp, ok := r.responses[promptDigest(prompt)]; ok {
		return resp, nil
	}
	return "", fmt.Errorf("no recorded response for prompt (digest %s)", promptDigest(prompt)[:12])
}
