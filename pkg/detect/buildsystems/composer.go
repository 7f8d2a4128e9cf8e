package buildsystems

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
	"unibuild/pkg/wolfi"
)

type composer struct{ base }

// Composer detects PHP projects via composer.json.
func Composer() detect.BuildSystem {
	return &composer{base{
		id:        types.BuildComposer,
		manifests: []detect.ManifestSpec{{Filename: "composer.json", Priority: 3}},
		languages: []types.LanguageID{types.LangPHP},
	}}
}

type composerJSON struct {
	Require    map[string]string `json:"require"`
	RequireDev map[string]string `json:"require-dev"`
}

func (c *composer) Detect(in *detect.Input) (types.BuildSystemID, bool) {
	if !c.matchesManifest(in) {
		return "", false
	}
	return c.id, true
}

func (c *composer) ParseDependencies(manifest []byte, _ []string) (*types.DependencyInfo, error) {
	var cj composerJSON
	if err := json.Unmarshal(manifest, &cj); err != nil {
		return nil, fmt.Errorf("parsing composer.json: %w", err)
	}
	info := &types.DependencyInfo{}
	appendDeps := func(deps map[string]string, scope string) {
		names := make([]string, 0, len(deps))
		for name := range deps {
			if name == "php" || strings.HasPrefix(name, "ext-") {
				continue
			}
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			info.Dependencies = append(info.Dependencies, types.Dependency{
				Name: name, Version: deps[name], Scope: scope, Ecosystem: types.EcosystemPacky,
			})
		}
	}
	appendDeps(cj.Require, "runtime")
	appendDeps(cj.RequireDev, "dev")
	return info, nil
}

func (c *composer) BuildTemplate(idx wolfi.Index, in *detect.Input) (*types.BuildTemplate, error) {
	var cj composerJSON
	_ = json.Unmarshal(in.ManifestContent, &cj)

	hint := ""
	if v, ok := cj.Require["php"]; ok {
		hint = firstNumericConstraint(v)
	}
	php := resolveToolchain(idx, "php", hint)
	return &types.BuildTemplate{
		BuildPackages:    []string{php, "composer"},
		RuntimePackages:  []string{php},
		BuildCommands:    []string{"composer install --no-dev --optimize-autoloader"},
		ArtifactPaths:    []string{"."},
		CacheDirectories: []string{"vendor/", "~/.composer/cache"},
	}, nil
}
