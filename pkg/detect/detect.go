// Package detect defines the five detector contracts the registry stores:
// build systems, languages, frameworks, monorepo orchestrators, and
// runtimes. Implementations may be deterministic or LLM-backed; phases
// treat them uniformly.
package detect

import (
	"regexp"

	"unibuild/pkg/types"
	"unibuild/pkg/wolfi"
)

// Input is the read-only view a detector gets of one service (or of the
// repository root when Dir is "."). Manifest and ManifestContent are set
// when the caller has already located the service's most authoritative
// manifest.
type Input struct {
	RepoPath        string
	Dir             string // package path relative to repo root, "." for root
	Scan            *types.ScanResult
	Manifest        *types.ManifestCandidate
	ManifestContent []byte
}

// Files returns the scanned files of the service directory.
func (in *Input) Files() []string {
	if in.Scan == nil {
		return nil
	}
	return in.Scan.FilesUnder(in.Dir)
}

// ManifestSpec is one manifest filename a build system claims, with its
// authority (lower is more authoritative).
type ManifestSpec struct {
	Filename string
	Priority int
}

// BuildSystem detects and describes one build system.
type BuildSystem interface {
	ID() types.BuildSystemID
	// Manifests lists the filenames this build system recognizes.
	Manifests() []ManifestSpec
	// Detect reports whether this build system matches the input's
	// manifest. The returned id differs from ID() only for LLM-backed
	// detectors reporting a custom system.
	Detect(in *Input) (types.BuildSystemID, bool)
	CompatibleLanguages() []types.LanguageID
	// ParseDependencies extracts declared dependencies from the manifest.
	ParseDependencies(manifest []byte, repoFiles []string) (*types.DependencyInfo, error)
	// BuildTemplate produces the build description, resolving toolchain
	// versions against the package index. The input carries the manifest
	// and the service directory so adjacent version files (.nvmrc,
	// .python-version, …) can be consulted.
	BuildTemplate(idx wolfi.Index, in *Input) (*types.BuildTemplate, error)
}

// WorkspaceBuildSystem is the optional workspace capability of a build
// system (npm/yarn/pnpm workspaces, Gradle multiprojects, Cargo
// workspaces).
type WorkspaceBuildSystem interface {
	BuildSystem
	// ParseWorkspacePatterns extracts member glob patterns from the
	// workspace manifest (or a sibling workspace file such as
	// pnpm-workspace.yaml); empty means no workspace is declared.
	ParseWorkspacePatterns(in *Input) ([]string, error)
	// ParsePackageMetadata reads a member manifest's name and whether it is
	// an application (has a start entry) or a library.
	ParsePackageMetadata(path string, manifest []byte) (name string, isApp bool, err error)
	// GlobWorkspacePattern expands one member pattern under root to
	// directories containing a member manifest.
	GlobWorkspacePattern(root, pattern string) ([]string, error)
}

// Language detects one programming language.
type Language interface {
	ID() types.LanguageID
	FileExtensions() []string
	// Detect reports the language's presence in the service. A zero file
	// count with a configuring manifest is still a detection.
	Detect(in *Input) (*types.LanguageUsage, bool)
	CompatibleFrameworks() []types.FrameworkID
	// DetectVersion extracts a language version hint from the manifest.
	DetectVersion(manifest []byte) (string, bool)
}

// Framework detects one application framework from parsed dependencies and
// knows its runtime defaults.
type Framework interface {
	ID() types.FrameworkID
	CompatibleLanguages() []types.LanguageID
	CompatibleBuildSystems() []types.BuildSystemID
	DependencyPatterns() []types.DependencyPattern
	Detect(deps *types.DependencyInfo) (*types.FrameworkUsage, bool)
	DefaultPorts() []int
	HealthEndpoints() []string
	EnvVarPatterns() []*regexp.Regexp
	ConfigFiles() []string
	// ParseConfig reads one of the framework's own config files. False
	// means the file carried nothing usable.
	ParseConfig(path string, content []byte) (*types.FrameworkConfig, bool)
}

// Orchestrator detects a monorepo orchestration tool and derives the
// workspace layout from its configuration.
type Orchestrator interface {
	ID() types.OrchestratorID
	Detect(in *Input) bool
	WorkspaceStructure(repoPath string, in *Input) (*types.WorkspaceStructure, error)
	BuildCommand(pkg types.Package) string
}

// Runtime describes the execution environment of a language family and
// performs the deterministic runtime-config extraction.
type Runtime interface {
	ID() types.RuntimeID
	RequiredPackages() []string
	StartCommand(entrypoint string) string
	// TryExtract scans source and framework config for ports, env vars,
	// health routes and native deps. An empty RuntimeConfig is a valid
	// answer; false means the runtime declines entirely.
	TryExtract(in *Input, fw Framework) (*types.RuntimeConfig, bool)
}
