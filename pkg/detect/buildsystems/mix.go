package buildsystems

import (
	"regexp"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
	"unibuild/pkg/wolfi"
)

type mix struct{ base }

// Mix detects Elixir projects via mix.exs.
func Mix() detect.BuildSystem {
	return &mix{base{
		id:        types.BuildMix,
		manifests: []detect.ManifestSpec{{Filename: "mix.exs", Priority: 1}},
		languages: []types.LanguageID{types.LangElixir},
	}}
}

var (
	hexDepRe     = regexp.MustCompile(`\{:(\w+)\s*,\s*"([^"]*)"`)
	mixElixirRe  = regexp.MustCompile(`elixir:\s*"[^\d]*([\d.]+)"`)
)

func (m *mix) Detect(in *detect.Input) (types.BuildSystemID, bool) {
	if !m.matchesManifest(in) {
		return "", false
	}
	return m.id, true
}

func (m *mix) ParseDependencies(manifest []byte, _ []string) (*types.DependencyInfo, error) {
	info := &types.DependencyInfo{}
	for _, match := range hexDepRe.FindAllStringSubmatch(string(manifest), -1) {
		info.Dependencies = append(info.Dependencies, types.Dependency{
			Name: match[1], Version: match[2], Scope: "runtime", Ecosystem: types.EcosystemHex,
		})
	}
	return info, nil
}

func (m *mix) BuildTemplate(idx wolfi.Index, in *detect.Input) (*types.BuildTemplate, error) {
	hint := ""
	if match := mixElixirRe.FindStringSubmatch(string(in.ManifestContent)); match != nil {
		hint = match[1]
	}
	elixir := resolveToolchain(idx, "elixir", hint)
	return &types.BuildTemplate{
		BuildPackages:    []string{elixir, "build-base"},
		RuntimePackages:  []string{elixir},
		BuildCommands:    []string{"mix deps.get --only prod", "MIX_ENV=prod mix release"},
		ArtifactPaths:    []string{"_build/prod/rel/"},
		CacheDirectories: []string{"deps/", "_build/"},
	}, nil
}
