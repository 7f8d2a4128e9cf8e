package buildsystems

import (
	"regexp"
	"strings"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
	"unibuild/pkg/wolfi"
)

type gomod struct{ base }

// GoMod detects Go module projects. Go is a static-packaged toolchain.
func GoMod() detect.BuildSystem {
	return &gomod{base{
		id:        types.BuildGoMod,
		manifests: []detect.ManifestSpec{{Filename: "go.mod", Priority: 1}},
		languages: []types.LanguageID{types.LangGo},
	}}
}

func (g *gomod) Detect(in *detect.Input) (types.BuildSystemID, bool) {
	if !g.matchesManifest(in) {
		return "", false
	}
	return g.id, true
}

var goRequireRe = regexp.MustCompile(`(?m)^\s*(?:require\s+)?([\w.\-/]+\.[\w.\-/]+)\s+v[\d.]\S*`)

func (g *gomod) ParseDependencies(manifest []byte, _ []string) (*types.DependencyInfo, error) {
	info := &types.DependencyInfo{}
	for _, m := range goRequireRe.FindAllStringSubmatch(string(manifest), -1) {
		dep := types.Dependency{Name: m[1], Ecosystem: types.EcosystemGoPkg, Scope: "runtime"}
		if strings.Contains(m[0], "// indirect") {
			continue
		}
		info.Dependencies = append(info.Dependencies, dep)
	}
	return info, nil
}

func (g *gomod) BuildTemplate(_ wolfi.Index, _ *detect.Input) (*types.BuildTemplate, error) {
	return &types.BuildTemplate{
		BuildPackages:    []string{"go", "build-base"},
		RuntimePackages:  []string{"ca-certificates"},
		BuildCommands:    []string{"CGO_ENABLED=0 go build -o app ."},
		ArtifactPaths:    []string{"app"},
		CacheDirectories: []string{"~/go/pkg/mod"},
	}, nil
}
