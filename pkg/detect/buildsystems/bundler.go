package buildsystems

import (
	"regexp"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
	"unibuild/pkg/wolfi"
)

type bundler struct{ base }

// Bundler detects Ruby projects via a Gemfile.
func Bundler() detect.BuildSystem {
	return &bundler{base{
		id:        types.BuildBundler,
		manifests: []detect.ManifestSpec{{Filename: "Gemfile", Priority: 3}},
		languages: []types.LanguageID{types.LangRuby},
	}}
}

var (
	gemRe        = regexp.MustCompile(`(?m)^\s*gem\s+["']([\w\-]+)["'](?:\s*,\s*["']([^"']+)["'])?`)
	gemfileRubyRe = regexp.MustCompile(`(?m)^\s*ruby\s+["']([\d.]+)["']`)
)

func (b *bundler) Detect(in *detect.Input) (types.BuildSystemID, bool) {
	if !b.matchesManifest(in) {
		return "", false
	}
	return b.id, true
}

func (b *bundler) ParseDependencies(manifest []byte, _ []string) (*types.DependencyInfo, error) {
	info := &types.DependencyInfo{}
	for _, m := range gemRe.FindAllStringSubmatch(string(manifest), -1) {
		info.Dependencies = append(info.Dependencies, types.Dependency{
			Name: m[1], Version: m[2], Scope: "runtime", Ecosystem: types.EcosystemGem,
		})
	}
	return info, nil
}

func (b *bundler) BuildTemplate(idx wolfi.Index, in *detect.Input) (*types.BuildTemplate, error) {
	hint := ""
	if m := gemfileRubyRe.FindStringSubmatch(string(in.ManifestContent)); m != nil {
		hint = m[1]
	}
	if hint == "" {
		hint, _ = adjacentVersionHint(in, "ruby")
	}
	ruby := resolveToolchain(idx, "ruby", hint)
	return &types.BuildTemplate{
		BuildPackages:    []string{ruby, "build-base"},
		RuntimePackages:  []string{ruby},
		BuildCommands:    []string{"bundle config set --local deployment true", "bundle install"},
		ArtifactPaths:    []string{"."},
		CacheDirectories: []string{"vendor/bundle", "~/.bundle"},
	}, nil
}
