package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLanguageID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  LanguageID
		known bool
	}{
		{"known lowercase", "rust", LangRust, true},
		{"known mixed case", "TypeScript", LangTypeScript, true},
		{"known padded", "  Java ", LangJava, true},
		{"custom", "Deno", LanguageID("Deno"), false},
		{"custom preserved verbatim", "zig", LanguageID("zig"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLanguageID(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, got.Known())
		})
	}
}

func TestParseBuildSystemID(t *testing.T) {
	assert.Equal(t, BuildCargo, ParseBuildSystemID("Cargo"))
	assert.Equal(t, BuildGoMod, ParseBuildSystemID("gomod"))

	custom := ParseBuildSystemID("deno")
	assert.False(t, custom.Known())
	assert.Equal(t, "deno", custom.String())
}

func TestParseFrameworkAndRuntimeIDs(t *testing.T) {
	assert.Equal(t, FwSpringBoot, ParseFrameworkID("SpringBoot"))
	assert.False(t, ParseFrameworkID("fresh").Known())

	assert.Equal(t, RuntimeJVM, ParseRuntimeID("JVM"))
	assert.Equal(t, OrchTurborepo, ParseOrchestratorID("Turborepo"))
	assert.False(t, ParseRuntimeID("wasm").Known())
}
