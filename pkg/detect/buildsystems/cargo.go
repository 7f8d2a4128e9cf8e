package buildsystems

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
	"unibuild/pkg/wolfi"
)

type cargo struct{ base }

// Cargo detects Rust projects via Cargo.toml. Rust is a static-packaged
// toolchain: the package list carries no version suffix.
func Cargo() detect.BuildSystem {
	return &cargo{base{
		id:        types.BuildCargo,
		manifests: []detect.ManifestSpec{{Filename: "Cargo.toml", Priority: 1}},
		languages: []types.LanguageID{types.LangRust},
	}}
}

type cargoManifest struct {
	Package struct {
		Name        string `toml:"name"`
		RustVersion string `toml:"rust-version"`
	} `toml:"package"`
	Lib          *struct{}                 `toml:"lib"`
	Bin          []struct{ Name string }   `toml:"bin"`
	Dependencies map[string]toml.Primitive `toml:"dependencies"`
	Workspace    *struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
}

func (c *cargo) Detect(in *detect.Input) (types.BuildSystemID, bool) {
	if !c.matchesManifest(in) {
		return "", false
	}
	return c.id, true
}

func (c *cargo) ParseDependencies(manifest []byte, _ []string) (*types.DependencyInfo, error) {
	var m cargoManifest
	if _, err := toml.Decode(string(manifest), &m); err != nil {
		return nil, fmt.Errorf("parsing Cargo.toml: %w", err)
	}
	info := &types.DependencyInfo{}
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		info.Dependencies = append(info.Dependencies, types.Dependency{
			Name: name, Ecosystem: types.EcosystemCargo, Scope: "runtime",
		})
	}
	return info, nil
}

func (c *cargo) BuildTemplate(_ wolfi.Index, in *detect.Input) (*types.BuildTemplate, error) {
	var m cargoManifest
	_, _ = toml.Decode(string(in.ManifestContent), &m)

	artifact := "target/release/app"
	if m.Package.Name != "" {
		artifact = "target/release/" + m.Package.Name
	}
	return &types.BuildTemplate{
		BuildPackages:    []string{"rust", "build-base"},
		RuntimePackages:  []string{"glibc", "ca-certificates"},
		BuildCommands:    []string{"cargo build --release"},
		ArtifactPaths:    []string{artifact},
		CacheDirectories: []string{"target/", "~/.cargo/registry"},
	}, nil
}

// Workspace capability: [workspace].members globs.

func (c *cargo) ParseWorkspacePatterns(in *detect.Input) ([]string, error) {
	var m cargoManifest
	if _, err := toml.Decode(string(in.ManifestContent), &m); err != nil {
		return nil, fmt.Errorf("parsing Cargo.toml workspace: %w", err)
	}
	if m.Workspace == nil {
		return nil, nil
	}
	return m.Workspace.Members, nil
}

func (c *cargo) ParsePackageMetadata(path string, manifest []byte) (string, bool, error) {
	var m cargoManifest
	if _, err := toml.Decode(string(manifest), &m); err != nil {
		return "", false, fmt.Errorf("parsing %s: %w", path, err)
	}
	name := m.Package.Name
	if name == "" {
		name = filepath.Base(filepath.Dir(path))
	}
	// A crate is an application when it declares binaries or is not a pure
	// library crate.
	isApp := len(m.Bin) > 0 || m.Lib == nil
	return name, isApp, nil
}

func (c *cargo) GlobWorkspacePattern(root, pattern string) ([]string, error) {
	matches, err := expandPattern(root, pattern)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, dir := range matches {
		if _, err := os.Stat(filepath.Join(dir, "Cargo.toml")); err == nil {
			out = append(out, dir)
		}
	}
	return out, nil
}
