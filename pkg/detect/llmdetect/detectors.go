package llmdetect

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"unibuild/pkg/ai"
	"unibuild/pkg/detect"
	"unibuild/pkg/types"
	"unibuild/pkg/wolfi"
)

// Custom names that lexically equal a known identifier normalize to the
// known variant, matching the source behavior; see DESIGN.md.

// BuildSystem is the LLM-backed build-system detector.
type BuildSystem struct{ memo *memo }

func NewBuildSystem(client ai.Client, log zerolog.Logger) *BuildSystem {
	return &BuildSystem{memo: newMemo(client, log, "build_system")}
}

func (b *BuildSystem) ID() types.BuildSystemID { return "llm" }

func (b *BuildSystem) Manifests() []detect.ManifestSpec { return nil }

func (b *BuildSystem) Detect(in *detect.Input) (types.BuildSystemID, bool) {
	rep := b.memo.ask(buildPrompt("build system", in,
		`{"name", "manifests": [...], "languages": [...], "build_packages": [...], "runtime_packages": [...], "build_commands": [...], "artifact_paths": [...], "cache_directories": [...], "entrypoint"}`))
	if rep == nil {
		return "", false
	}
	return types.ParseBuildSystemID(rep.Name), true
}

func (b *BuildSystem) CompatibleLanguages() []types.LanguageID {
	rep := b.memo.cached()
	if rep == nil {
		return nil
	}
	out := make([]types.LanguageID, 0, len(rep.Languages))
	for _, l := range rep.Languages {
		out = append(out, types.ParseLanguageID(l))
	}
	return out
}

func (b *BuildSystem) ParseDependencies(_ []byte, _ []string) (*types.DependencyInfo, error) {
	// Dependency semantics of an unknown build system are not worth a
	// second LLM round-trip; framework detection degrades gracefully.
	return &types.DependencyInfo{}, nil
}

func (b *BuildSystem) BuildTemplate(_ wolfi.Index, _ *detect.Input) (*types.BuildTemplate, error) {
	rep := b.memo.cached()
	if rep == nil {
		return nil, fmt.Errorf("build template requested before a successful detection")
	}
	return &types.BuildTemplate{
		BuildPackages:    rep.BuildPackages,
		RuntimePackages:  rep.RuntimePackages,
		BuildCommands:    rep.BuildCommands,
		ArtifactPaths:    rep.ArtifactPaths,
		CacheDirectories: rep.CacheDirectories,
	}, nil
}

// Language is the LLM-backed language detector.
type Language struct{ memo *memo }

func NewLanguage(client ai.Client, log zerolog.Logger) *Language {
	return &Language{memo: newMemo(client, log, "language")}
}

func (l *Language) ID() types.LanguageID { return "llm" }

func (l *Language) FileExtensions() []string {
	if rep := l.memo.cached(); rep != nil {
		return rep.Extensions
	}
	return nil
}

func (l *Language) Detect(in *detect.Input) (*types.LanguageUsage, bool) {
	rep := l.memo.ask(buildPrompt("programming language", in,
		`{"name", "extensions": [".ext", ...], "version"}`))
	if rep == nil {
		return nil, false
	}
	count := 0
	for _, f := range in.Files() {
		ext := path.Ext(f)
		for _, e := range rep.Extensions {
			if ext == e || ext == "."+strings.TrimPrefix(e, ".") {
				count++
				break
			}
		}
	}
	return &types.LanguageUsage{Language: types.ParseLanguageID(rep.Name), FileCount: count}, true
}

func (l *Language) CompatibleFrameworks() []types.FrameworkID { return nil }

func (l *Language) DetectVersion(_ []byte) (string, bool) {
	if rep := l.memo.cached(); rep != nil && rep.Version != "" {
		return rep.Version, true
	}
	return "", false
}

// Framework is the LLM-backed framework detector. Unlike its deterministic
// peers it classifies from the dependency listing alone.
type Framework struct{ memo *memo }

func NewFramework(client ai.Client, log zerolog.Logger) *Framework {
	return &Framework{memo: newMemo(client, log, "framework")}
}

func (f *Framework) ID() types.FrameworkID { return "llm" }

func (f *Framework) CompatibleLanguages() []types.LanguageID       { return nil }
func (f *Framework) CompatibleBuildSystems() []types.BuildSystemID { return nil }
func (f *Framework) DependencyPatterns() []types.DependencyPattern { return nil }

func (f *Framework) Detect(deps *types.DependencyInfo) (*types.FrameworkUsage, bool) {
	var names []string
	if deps != nil {
		for _, d := range deps.Dependencies {
			names = append(names, d.Name)
		}
	}
	sort.Strings(names)
	var sb strings.Builder
	sb.WriteString("Classify the application framework from these declared dependencies.\n")
	sb.WriteString(`Reply with a single JSON object, no prose: {"name", "default_ports": [...], "health_endpoints": [...]}`)
	sb.WriteString("\n\nDependencies:\n")
	for _, n := range ai.TruncateFiles(names, ai.MaxPromptFiles) {
		sb.WriteString("  ")
		sb.WriteString(n)
		sb.WriteByte('\n')
	}
	rep := f.memo.ask(sb.String())
	if rep == nil || rep.Name == "" || strings.EqualFold(rep.Name, "none") {
		return nil, false
	}
	return &types.FrameworkUsage{
		Framework:   types.ParseFrameworkID(rep.Name),
		Confidence:  0.7,
		Specificity: specificityLLM,
	}, true
}

const specificityLLM = 0.7

func (f *Framework) DefaultPorts() []int {
	if rep := f.memo.cached(); rep != nil {
		if len(rep.DefaultPorts) > 0 {
			return rep.DefaultPorts
		}
		if rep.Port != 0 {
			return []int{rep.Port}
		}
	}
	return nil
}

func (f *Framework) HealthEndpoints() []string {
	if rep := f.memo.cached(); rep != nil {
		return rep.HealthEndpoints
	}
	return nil
}

func (f *Framework) EnvVarPatterns() []*regexp.Regexp { return nil }
func (f *Framework) ConfigFiles() []string {
	if rep := f.memo.cached(); rep != nil {
		return rep.ConfigFiles
	}
	return nil
}
func (f *Framework) ParseConfig(string, []byte) (*types.FrameworkConfig, bool) { return nil, false }

// Orchestrator is the LLM-backed monorepo orchestrator detector.
type Orchestrator struct{ memo *memo }

func NewOrchestrator(client ai.Client, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{memo: newMemo(client, log, "orchestrator")}
}

func (o *Orchestrator) ID() types.OrchestratorID { return "llm" }

func (o *Orchestrator) Detect(in *detect.Input) bool {
	rep := o.memo.ask(buildPrompt("monorepo orchestrator (or \"none\")", in,
		`{"name", "config_files": [...], "package_dirs": [...]}`))
	return rep != nil && !strings.EqualFold(rep.Name, "none") && len(rep.PackageDirs) > 0
}

func (o *Orchestrator) WorkspaceStructure(_ string, _ *detect.Input) (*types.WorkspaceStructure, error) {
	rep := o.memo.cached()
	if rep == nil {
		return nil, fmt.Errorf("workspace structure requested before a successful detection")
	}
	ws := &types.WorkspaceStructure{Orchestrator: types.ParseOrchestratorID(rep.Name)}
	for _, dir := range rep.PackageDirs {
		dir = strings.Trim(path.Clean(dir), "/")
		if dir == "" || dir == "." {
			continue
		}
		ws.Packages = append(ws.Packages, types.Package{
			Path: dir, Name: path.Base(dir), IsApplication: true,
		})
	}
	return ws, nil
}

func (o *Orchestrator) BuildCommand(pkg types.Package) string {
	return "build " + pkg.Name
}

// Runtime is the LLM-backed runtime detector. It contributes the runtime
// identity, its baseline packages and the start command shape; TryExtract
// also reports the entrypoint and port from the reply. Env vars, health
// checks and native deps are not extracted.
type Runtime struct{ memo *memo }

func NewRuntime(client ai.Client, log zerolog.Logger) *Runtime {
	return &Runtime{memo: newMemo(client, log, "runtime")}
}

func (r *Runtime) ID() types.RuntimeID { return "llm" }

func (r *Runtime) RequiredPackages() []string {
	if rep := r.memo.cached(); rep != nil {
		return rep.RuntimePackages
	}
	return []string{"glibc", "ca-certificates"}
}

func (r *Runtime) StartCommand(entrypoint string) string {
	if rep := r.memo.cached(); rep != nil && rep.StartCommand != "" {
		if strings.Contains(rep.StartCommand, "%s") {
			return fmt.Sprintf(rep.StartCommand, entrypoint)
		}
		return rep.StartCommand
	}
	return entrypoint
}

func (r *Runtime) TryExtract(in *detect.Input, _ detect.Framework) (*types.RuntimeConfig, bool) {
	rep := r.memo.ask(buildPrompt("runtime environment", in,
		`{"name", "runtime_packages": [...], "start_command", "entrypoint", "port"}`))
	if rep == nil {
		return nil, false
	}
	rc := &types.RuntimeConfig{Entrypoint: rep.Entrypoint, Port: rep.Port}
	return rc, true
}

// cached returns the memoized reply without triggering a call.
func (m *memo) cached() *reply {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rep
}
