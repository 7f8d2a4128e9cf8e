// Package llmdetect provides the LLM-backed variant of each detector
// family. Each detector builds one compact prompt, parses the structured
// reply, and memoizes it for the rest of the run. Transport failures make
// the detector decline — never error — so phases stay uniform.
package llmdetect

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"unibuild/pkg/ai"
	"unibuild/pkg/detect"
)

const callTimeout = 120 * time.Second

// reply is the structured answer shared by all families; each family reads
// the fields relevant to it.
type reply struct {
	Name             string   `json:"name"`
	Version          string   `json:"version,omitempty"`
	Extensions       []string `json:"extensions,omitempty"`
	Manifests        []string `json:"manifests,omitempty"`
	Languages        []string `json:"languages,omitempty"`
	ConfigFiles      []string `json:"config_files,omitempty"`
	PackageDirs      []string `json:"package_dirs,omitempty"`
	BuildPackages    []string `json:"build_packages,omitempty"`
	RuntimePackages  []string `json:"runtime_packages,omitempty"`
	BuildCommands    []string `json:"build_commands,omitempty"`
	ArtifactPaths    []string `json:"artifact_paths,omitempty"`
	CacheDirectories []string `json:"cache_directories,omitempty"`
	StartCommand     string   `json:"start_command,omitempty"`
	Entrypoint       string   `json:"entrypoint,omitempty"`
	Port             int      `json:"port,omitempty"`
	DefaultPorts     []int    `json:"default_ports,omitempty"`
	HealthEndpoints  []string `json:"health_endpoints,omitempty"`
}

// memo performs the one-shot LLM call. The first call parses and caches;
// later calls return the cache. A failed call caches the decline.
type memo struct {
	client ai.Client
	log    zerolog.Logger

	mu   sync.Mutex
	done bool
	rep  *reply
}

func newMemo(client ai.Client, log zerolog.Logger, family string) *memo {
	return &memo{client: client, log: log.With().Str("component", "llm_detector").Str("family", family).Logger()}
}

// ask returns the cached reply, performing the call on first use. A nil
// reply means the detector declines.
func (m *memo) ask(prompt string) *reply {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return m.rep
	}
	m.done = true

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	raw, err := m.client.Chat(ctx, prompt, &ai.ChatOptions{Temperature: 0})
	if err != nil {
		m.log.Warn().Err(err).Msg("LLM call failed, declining detection")
		return nil
	}
	rep, err := parseReply(raw)
	if err != nil {
		m.log.Warn().Err(err).Msg("unparseable LLM reply, declining detection")
		return nil
	}
	m.rep = rep
	m.log.Debug().Str("name", rep.Name).Msg("LLM detection cached")
	return m.rep
}

// parseReply tolerates markdown fences around the JSON object.
func parseReply(raw string) (*reply, error) {
	text := strings.TrimSpace(raw)
	if idx := strings.Index(text, "{"); idx >= 0 {
		if end := strings.LastIndex(text, "}"); end > idx {
			text = text[idx : end+1]
		}
	}
	var rep reply
	if err := json.Unmarshal([]byte(text), &rep); err != nil {
		return nil, fmt.Errorf("parsing LLM reply: %w", err)
	}
	if rep.Name == "" {
		return nil, fmt.Errorf("LLM reply carries no name")
	}
	return &rep, nil
}

// buildPrompt assembles the compact classification prompt: the kind being
// classified, a bounded sorted file listing, and one manifest excerpt.
// Deterministic content keeps record/replay byte-stable.
func buildPrompt(kind string, in *detect.Input, fields string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Classify the %s of this repository directory.\n", kind)
	sb.WriteString("Reply with a single JSON object, no prose: ")
	sb.WriteString(fields)
	sb.WriteString("\n\nFiles:\n")

	files := append([]string{}, in.Files()...)
	sort.Strings(files)
	for _, f := range ai.TruncateFiles(files, ai.MaxPromptFiles) {
		sb.WriteString("  ")
		sb.WriteString(f)
		sb.WriteByte('\n')
	}

	if in.Manifest != nil && len(in.ManifestContent) > 0 {
		fmt.Fprintf(&sb, "\nManifest %s:\n", in.Manifest.Path)
		sb.WriteString(ai.Excerpt(string(in.ManifestContent), ai.MaxExcerptBytes))
		sb.WriteByte('\n')
	}
	return sb.String()
}
