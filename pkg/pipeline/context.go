// Package pipeline threads a typed context through the repository-level
// phases (scan → workspace → root cache → services → assemble) and the
// per-service phases (stack → runtime config → build → cache). Phases
// never branch on detection mode; mode lives entirely in how the registry
// was composed.
package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"unibuild/pkg/registry"
	"unibuild/pkg/schema"
	"unibuild/pkg/types"
	"unibuild/pkg/wolfi"
)

// AnalysisContext is the repository-level context. Fields after RepoPath,
// Registry and Index start empty; each phase populates exactly one and
// must find its prerequisites already populated.
type AnalysisContext struct {
	RepoPath string
	Registry *registry.Registry
	Index    wolfi.Index
	Logger   zerolog.Logger

	Scan       *types.ScanResult
	Workspace  *types.WorkspaceStructure
	RootCaches []string
	Services   []*types.ServiceAnalysis
	Failures   []ServiceFailure
	Documents  []*schema.UniversalBuild
}

// ServiceFailure records a service-local error; the run continues across
// the remaining services.
type ServiceFailure struct {
	Package types.Package
	Err     error
}

// ServiceContext is the per-service context derived from the analysis
// context once per package.
type ServiceContext struct {
	RepoPath string
	Registry *registry.Registry
	Index    wolfi.Index
	Scan     *types.ScanResult
	Package  types.Package
	Logger   zerolog.Logger

	Stack         *types.Stack
	RuntimeConfig *types.RuntimeConfig
	Build         *types.BuildTemplate
	Caches        []string

	// manifest state resolved during stack identification and shared by
	// the later service phases.
	Manifest        *types.ManifestCandidate
	ManifestContent []byte
	Dependencies    *types.DependencyInfo
}

// Phase is one repository-level step.
type Phase interface {
	Name() string
	Execute(ctx context.Context, ac *AnalysisContext) error
}

// ServicePhase is one per-service step.
type ServicePhase interface {
	Name() string
	Execute(ctx context.Context, sc *ServiceContext) error
}
