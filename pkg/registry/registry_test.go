package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unibuild/pkg/ai"
	"unibuild/pkg/logger"
	"unibuild/pkg/types"
)

// forbiddenClient fails the test if any detector ever reaches the LLM.
type forbiddenClient struct{ t *testing.T }

func (f *forbiddenClient) Chat(context.Context, string, *ai.ChatOptions) (string, error) {
	f.t.Fatal("LLM client must not be called")
	return "", nil
}

const (
	knownBuildSystems  = 16
	knownLanguages     = 13
	knownFrameworks    = 19
	knownOrchestrators = 3
	knownRuntimes      = 8
)

func TestParseMode(t *testing.T) {
	for input, want := range map[string]Mode{
		"": ModeFull, "full": ModeFull, "static": ModeStatic,
		"llm_only": ModeLLMOnly, "LLM-Only": ModeLLMOnly,
	} {
		got, err := ParseMode(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
	_, err := ParseMode("turbo")
	assert.Error(t, err)
}

func TestStaticModeRegistersOnlyKnownDetectors(t *testing.T) {
	reg, err := New(Options{Mode: ModeStatic, Client: &forbiddenClient{t: t}, Logger: logger.Nop()})
	require.NoError(t, err)

	assert.Len(t, reg.BuildSystems(), knownBuildSystems)
	assert.Len(t, reg.Languages(), knownLanguages)
	assert.Len(t, reg.Frameworks(), knownFrameworks)
	assert.Len(t, reg.Orchestrators(), knownOrchestrators)
	assert.Len(t, reg.Runtimes(), knownRuntimes)
}

func TestFullModeAppendsLLMDetectorsLast(t *testing.T) {
	reg, err := New(Options{Mode: ModeFull, Client: &forbiddenClient{t: t}, Logger: logger.Nop()})
	require.NoError(t, err)

	bss := reg.BuildSystems()
	require.Len(t, bss, knownBuildSystems+1)
	assert.Equal(t, types.BuildSystemID("llm"), bss[len(bss)-1].ID())

	langs := reg.Languages()
	require.Len(t, langs, knownLanguages+1)
	assert.Equal(t, types.LanguageID("llm"), langs[len(langs)-1].ID())
}

func TestFullModeWithoutClientOrWithFallbackDisabled(t *testing.T) {
	reg, err := New(Options{Mode: ModeFull, Logger: logger.Nop()})
	require.NoError(t, err)
	assert.Len(t, reg.BuildSystems(), knownBuildSystems)

	reg, err = New(Options{Mode: ModeFull, Client: &forbiddenClient{t: t}, DisableLLMFallback: true, Logger: logger.Nop()})
	require.NoError(t, err)
	assert.Len(t, reg.BuildSystems(), knownBuildSystems)
}

func TestLLMOnlyRequiresClient(t *testing.T) {
	_, err := New(Options{Mode: ModeLLMOnly, Logger: logger.Nop()})
	assert.Error(t, err)

	reg, err := New(Options{Mode: ModeLLMOnly, Client: &forbiddenClient{t: t}, Logger: logger.Nop()})
	require.NoError(t, err)
	assert.Len(t, reg.BuildSystems(), 1)
	assert.Len(t, reg.Languages(), 1)
	assert.Len(t, reg.Orchestrators(), 1)
}

func TestRuntimeMapping(t *testing.T) {
	reg, err := New(Options{Mode: ModeStatic, Logger: logger.Nop()})
	require.NoError(t, err)

	assert.Equal(t, types.RuntimeJVM, reg.RuntimeFor(types.LangKotlin))
	assert.Equal(t, types.RuntimeNode, reg.RuntimeFor(types.LangTypeScript))
	assert.Equal(t, types.RuntimeBeam, reg.RuntimeFor(types.LangElixir))
	// Custom languages fall back to native.
	assert.Equal(t, types.RuntimeNative, reg.RuntimeFor(types.LanguageID("deno")))
}

func TestWorkspaceBuildSystemLookup(t *testing.T) {
	reg, err := New(Options{Mode: ModeStatic, Logger: logger.Nop()})
	require.NoError(t, err)

	ws, ok := reg.WorkspaceBuildSystemFor("package.json")
	require.True(t, ok)
	assert.Equal(t, types.BuildPnpm, ws.ID())

	ws, ok = reg.WorkspaceBuildSystemFor("settings.gradle.kts")
	require.True(t, ok)
	assert.Equal(t, types.BuildGradle, ws.ID())

	_, ok = reg.WorkspaceBuildSystemFor("pom.xml")
	assert.False(t, ok)

	prio, claimed := reg.ClaimManifest("Cargo.toml")
	require.True(t, claimed)
	assert.Equal(t, 1, prio)
	_, claimed = reg.ClaimManifest("random.txt")
	assert.False(t, claimed)
}
