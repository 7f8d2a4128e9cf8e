package buildsystems

import (
	"regexp"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
	"unibuild/pkg/wolfi"
)

type cmake struct{ base }

// CMake detects C/C++ projects via CMakeLists.txt. The toolchain is
// static-packaged with no version suffix.
func CMake() detect.BuildSystem {
	return &cmake{base{
		id:        types.BuildCMake,
		manifests: []detect.ManifestSpec{{Filename: "CMakeLists.txt", Priority: 5}},
		languages: []types.LanguageID{types.LangCpp},
	}}
}

var findPackageRe = regexp.MustCompile(`(?mi)^\s*find_package\s*\(\s*([\w]+)`)

func (c *cmake) Detect(in *detect.Input) (types.BuildSystemID, bool) {
	if !c.matchesManifest(in) {
		return "", false
	}
	return c.id, true
}

func (c *cmake) ParseDependencies(manifest []byte, _ []string) (*types.DependencyInfo, error) {
	info := &types.DependencyInfo{}
	for _, m := range findPackageRe.FindAllStringSubmatch(string(manifest), -1) {
		info.Dependencies = append(info.Dependencies, types.Dependency{
			Name: m[1], Scope: "build", Ecosystem: types.EcosystemRegex,
		})
	}
	return info, nil
}

func (c *cmake) BuildTemplate(_ wolfi.Index, _ *detect.Input) (*types.BuildTemplate, error) {
	return &types.BuildTemplate{
		BuildPackages:    []string{"build-base", "cmake"},
		RuntimePackages:  []string{"glibc", "ca-certificates"},
		BuildCommands:    []string{"cmake -B build -DCMAKE_BUILD_TYPE=Release", "cmake --build build"},
		ArtifactPaths:    []string{"build/"},
		CacheDirectories: []string{"build/"},
	}, nil
}
