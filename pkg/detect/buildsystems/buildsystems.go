// Package buildsystems holds the known build-system detectors. Each
// detector claims its manifest filenames, parses dependencies, and emits a
// BuildTemplate with Wolfi package names resolved against the index.
package buildsystems

import (
	"os"
	"path"
	"path/filepath"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
)

// base carries the boilerplate shared by every known build system.
type base struct {
	id        types.BuildSystemID
	manifests []detect.ManifestSpec
	languages []types.LanguageID
}

func (b *base) ID() types.BuildSystemID                   { return b.id }
func (b *base) Manifests() []detect.ManifestSpec          { return b.manifests }
func (b *base) CompatibleLanguages() []types.LanguageID   { return b.languages }

// matchesManifest reports whether the input's manifest basename is one of
// the claimed specs. Specs of the form "*.ext" match by extension.
func (b *base) matchesManifest(in *detect.Input) bool {
	if in == nil || in.Manifest == nil {
		return false
	}
	return ClaimsFilename(b.manifests, in.Manifest.Name)
}

// ClaimsFilename reports whether any spec claims the basename.
func ClaimsFilename(specs []detect.ManifestSpec, name string) bool {
	for _, spec := range specs {
		if ok, _ := path.Match(spec.Filename, name); ok {
			return true
		}
	}
	return false
}

// PriorityFor returns the claimed priority for a basename.
func PriorityFor(specs []detect.ManifestSpec, name string) (int, bool) {
	for _, spec := range specs {
		if ok, _ := path.Match(spec.Filename, name); ok {
			return spec.Priority, true
		}
	}
	return 0, false
}

// dirHasFile reports whether the service directory contains the named file
// according to the scan.
func dirHasFile(in *detect.Input, name string) bool {
	rel := name
	if in.Dir != "." && in.Dir != "" {
		rel = in.Dir + "/" + name
	}
	return in.Scan != nil && in.Scan.HasFile(rel)
}

// readServiceFile reads a file from the service directory, tolerating
// absence.
func readServiceFile(in *detect.Input, name string) ([]byte, bool) {
	data, err := os.ReadFile(filepath.Join(in.RepoPath, filepath.FromSlash(in.Dir), name))
	if err != nil {
		return nil, false
	}
	return data, true
}

// All returns the known build systems in registry order. Lockfile-keyed
// systems (pnpm, yarn, bun) precede npm so the first Detect win resolves
// the package-manager ambiguity of a bare package.json.
func All() []detect.BuildSystem {
	return []detect.BuildSystem{
		Cargo(), GoMod(), Maven(), Gradle(),
		Pnpm(), Yarn(), Bun(), Npm(),
		Poetry(), Pipenv(), Pip(),
		DotNet(), Composer(), Bundler(), Mix(), CMake(),
	}
}
