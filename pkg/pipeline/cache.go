package pipeline

import (
	"context"

	"unibuild/pkg/types"
)

// buildSystemCaches is the deterministic cache-directory table keyed by
// build system.
var buildSystemCaches = map[types.BuildSystemID][]string{
	types.BuildCargo:    {"target/", "~/.cargo/registry"},
	types.BuildGoMod:    {"~/go/pkg/mod"},
	types.BuildMaven:    {"~/.m2/repository"},
	types.BuildGradle:   {"~/.gradle", "build/"},
	types.BuildNpm:      {"node_modules", "~/.npm"},
	types.BuildYarn:     {"node_modules", ".yarn/cache"},
	types.BuildPnpm:     {"node_modules", "~/.local/share/pnpm/store"},
	types.BuildBun:      {"node_modules", "~/.bun/install/cache"},
	types.BuildPip:      {"~/.cache/pip"},
	types.BuildPoetry:   {"~/.cache/pip", "~/.cache/pypoetry"},
	types.BuildPipenv:   {"~/.cache/pip", "~/.cache/pipenv"},
	types.BuildDotNet:   {"~/.nuget/packages"},
	types.BuildComposer: {"vendor/", "~/.composer/cache"},
	types.BuildBundler:  {"vendor/bundle", "~/.bundle"},
	types.BuildCMake:    {"build/"},
	types.BuildMix:      {"deps/", "_build/"},
}

// CachePhase is a pure table lookup from the identified build system to
// its cache directories. Custom build systems carry their caches on the
// build template instead.
type CachePhase struct{}

func (p *CachePhase) Name() string { return "cache" }

func (p *CachePhase) Execute(_ context.Context, sc *ServiceContext) error {
	sc.Caches = buildSystemCaches[sc.Stack.BuildSystem]
	return nil
}
