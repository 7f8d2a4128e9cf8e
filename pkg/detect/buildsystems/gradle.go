package buildsystems

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
	"unibuild/pkg/wolfi"
)

type gradle struct{ base }

// Gradle detects Gradle projects via build scripts, and Gradle
// multiprojects via settings files carrying include statements. A settings
// file without includes does not indicate an independently buildable
// project; the scan phase demotes it.
func Gradle() detect.BuildSystem {
	return &gradle{base{
		id: types.BuildGradle,
		manifests: []detect.ManifestSpec{
			{Filename: "settings.gradle", Priority: 1},
			{Filename: "settings.gradle.kts", Priority: 1},
			{Filename: "build.gradle", Priority: 2},
			{Filename: "build.gradle.kts", Priority: 2},
		},
		languages: []types.LanguageID{types.LangJava, types.LangKotlin},
	}}
}

var (
	gradleIncludeRe  = regexp.MustCompile(`include\s*[(\s]\s*([^)\n]+)`)
	gradleProjectRe  = regexp.MustCompile(`["']:?([\w\-:/]+)["']`)
	gradleDepRe      = regexp.MustCompile(`(?m)(?:implementation|api|compileOnly|runtimeOnly|testImplementation)\s*[(\s]\s*["']([\w.\-]+):([\w.\-]+)(?::([\w.\-]+))?["']`)
	gradleJavaHintRe = regexp.MustCompile(`(?:languageVersion\s*[.=]\s*(?:JavaLanguageVersion\.of\()?|sourceCompatibility\s*=?\s*['"]?(?:JavaVersion\.VERSION_)?)(\d[\d_.]*)`)
	gradleAppRe      = regexp.MustCompile(`(?m)(?:id\s*[("']+application["')]*|apply\s+plugin:\s*["']application["']|plugins\.apply\(["']application["']\))`)
)

func (g *gradle) Detect(in *detect.Input) (types.BuildSystemID, bool) {
	if !g.matchesManifest(in) {
		return "", false
	}
	if strings.HasPrefix(in.Manifest.Name, "settings.gradle") &&
		!gradleIncludeRe.Match(in.ManifestContent) {
		return "", false
	}
	return g.id, true
}

func (g *gradle) ParseDependencies(manifest []byte, _ []string) (*types.DependencyInfo, error) {
	info := &types.DependencyInfo{}
	for _, m := range gradleDepRe.FindAllStringSubmatch(string(manifest), -1) {
		scope := "runtime"
		if strings.HasPrefix(m[0], "testImplementation") {
			scope = "dev"
		}
		info.Dependencies = append(info.Dependencies, types.Dependency{
			Name:      m[1] + ":" + m[2],
			Version:   m[3],
			Scope:     scope,
			Ecosystem: types.EcosystemMaven,
		})
	}
	return info, nil
}

func (g *gradle) BuildTemplate(idx wolfi.Index, in *detect.Input) (*types.BuildTemplate, error) {
	hint := ""
	if m := gradleJavaHintRe.FindStringSubmatch(string(in.ManifestContent)); m != nil {
		hint = strings.ReplaceAll(m[1], "_", ".")
	}
	jdk := resolveToolchain(idx, "openjdk", hint)

	buildCmd := "gradle build -x test"
	if dirHasFile(in, "gradlew") {
		buildCmd = "./gradlew build -x test"
	}
	return &types.BuildTemplate{
		BuildPackages:    []string{jdk, "gradle"},
		RuntimePackages:  []string{jreFor(jdk)},
		BuildCommands:    []string{buildCmd},
		ArtifactPaths:    []string{"build/libs/*.jar"},
		CacheDirectories: []string{"~/.gradle", "build/"},
	}, nil
}

// Workspace capability: settings.gradle include statements name the
// subprojects directly, no globbing involved.

func (g *gradle) ParseWorkspacePatterns(in *detect.Input) ([]string, error) {
	var dirs []string
	content := string(in.ManifestContent)
	if !strings.HasPrefix(in.Manifest.Name, "settings.gradle") {
		// Multiproject membership lives in the settings file, which may sit
		// next to a root build script.
		for _, name := range []string{"settings.gradle", "settings.gradle.kts"} {
			if data, ok := readServiceFile(in, name); ok {
				content = string(data)
				break
			}
		}
	}
	for _, inc := range gradleIncludeRe.FindAllStringSubmatch(content, -1) {
		for _, proj := range gradleProjectRe.FindAllStringSubmatch(inc[1], -1) {
			dirs = append(dirs, strings.ReplaceAll(proj[1], ":", "/"))
		}
	}
	return dirs, nil
}

func (g *gradle) ParsePackageMetadata(path string, manifest []byte) (string, bool, error) {
	name := filepath.Base(filepath.Dir(path))
	if name == "." || name == "/" {
		return "", false, fmt.Errorf("cannot derive project name from %s", path)
	}
	return name, gradleAppRe.Match(manifest), nil
}

func (g *gradle) GlobWorkspacePattern(root, pattern string) ([]string, error) {
	dir := filepath.Join(root, filepath.FromSlash(pattern))
	for _, script := range []string{"build.gradle", "build.gradle.kts"} {
		if _, err := os.Stat(filepath.Join(dir, script)); err == nil {
			return []string{dir}, nil
		}
	}
	return nil, nil
}
