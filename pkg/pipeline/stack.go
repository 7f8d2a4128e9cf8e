package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"unibuild/pkg/detect"
	"unibuild/pkg/errdefs"
	"unibuild/pkg/types"
)

// StackPhase identifies one service's build system, languages, framework
// and runtime from its most authoritative manifest.
type StackPhase struct{}

func (p *StackPhase) Name() string { return "stack" }

func (p *StackPhase) Execute(_ context.Context, sc *ServiceContext) error {
	in := p.serviceInput(sc)

	// 1. First build system whose Detect succeeds, in registry order.
	var (
		buildSystem detect.BuildSystem
		detectedID  types.BuildSystemID
	)
	for _, bs := range sc.Registry.BuildSystems() {
		if id, ok := bs.Detect(in); ok {
			buildSystem, detectedID = bs, id
			break
		}
	}
	if buildSystem == nil {
		return errdefs.New(errdefs.KindNoBuildSystem, p.Name(), "no build system matched").ForService(sc.Package.Path)
	}

	// 2. Dependencies of the detected manifest.
	deps, err := buildSystem.ParseDependencies(sc.ManifestContent, sc.Scan.FilesUnder(sc.Package.Path))
	if err != nil {
		sc.Logger.Warn().Err(err).Msg("dependency parse failed, continuing without dependencies")
		deps = &types.DependencyInfo{}
	}
	sc.Dependencies = deps

	// 3. Languages filtered to the build system's compatibility set. An
	// empty set (LLM-backed systems) leaves all languages eligible.
	compat := map[types.LanguageID]bool{}
	for _, l := range buildSystem.CompatibleLanguages() {
		compat[l] = true
	}
	var usages []*types.LanguageUsage
	for _, lang := range sc.Registry.Languages() {
		// Custom-id detectors (the LLM tail) pass the compatibility
		// filter; their identity is only known after Detect.
		if len(compat) > 0 && lang.ID().Known() && !compat[lang.ID()] {
			continue
		}
		if usage, ok := lang.Detect(in); ok {
			usages = append(usages, usage)
		}
	}
	if len(usages) == 0 {
		return errdefs.New(errdefs.KindNoLanguage, p.Name(), "no compatible language detected").ForService(sc.Package.Path)
	}

	// 4. Exactly one primary: highest file count, registry order on ties.
	primary := usages[0]
	for _, u := range usages[1:] {
		if u.FileCount > primary.FileCount {
			primary = u
		}
	}
	primary.IsPrimary = true

	// 5. Framework election by confidence × specificity, registry order
	// breaking ties. Only frameworks compatible with the primary language
	// compete; an empty compatibility list (LLM) is always eligible.
	var (
		bestUsage *types.FrameworkUsage
		runnerUp  *types.FrameworkUsage
	)
	for _, fw := range sc.Registry.Frameworks() {
		langs := fw.CompatibleLanguages()
		if len(langs) > 0 && !containsLanguage(langs, primary.Language) {
			continue
		}
		usage, ok := fw.Detect(deps)
		if !ok {
			continue
		}
		if bestUsage == nil || usage.Score() > bestUsage.Score() {
			if bestUsage != nil {
				runnerUp = bestUsage
			}
			bestUsage = usage
		} else if runnerUp == nil || usage.Score() > runnerUp.Score() {
			runnerUp = usage
		}
	}
	if runnerUp != nil {
		sc.Logger.Debug().
			Str("framework", string(bestUsage.Framework)).
			Str("runner_up", string(runnerUp.Framework)).
			Msg("multiple frameworks matched")
	}

	// 6–7. Runtime mapping and language version.
	stack := &types.Stack{
		Language:    primary.Language,
		BuildSystem: detectedID,
		Runtime:     sc.Registry.RuntimeFor(primary.Language),
	}
	if bestUsage != nil {
		stack.Framework = bestUsage.Framework
	}
	if lang, ok := sc.Registry.Language(primary.Language); ok {
		if v, ok := lang.DetectVersion(sc.ManifestContent); ok {
			stack.LanguageVersion = v
		}
	} else {
		// Custom languages are only reachable through the LLM detector,
		// which sits at the tail of the iteration order.
		for _, lang := range sc.Registry.Languages() {
			if v, ok := lang.DetectVersion(sc.ManifestContent); ok {
				stack.LanguageVersion = v
				break
			}
		}
	}

	sc.Stack = stack
	sc.Logger.Info().
		Str("language", string(stack.Language)).
		Str("build_system", string(stack.BuildSystem)).
		Str("framework", string(stack.Framework)).
		Str("runtime", string(stack.Runtime)).
		Msg("stack identified")
	return nil
}

// serviceInput loads the service's most authoritative manifest into the
// detector input, caching the content on the service context.
func (p *StackPhase) serviceInput(sc *ServiceContext) *detect.Input {
	in := &detect.Input{RepoPath: sc.RepoPath, Dir: sc.Package.Path, Scan: sc.Scan}
	if sc.Manifest == nil {
		if ms := sc.Scan.ManifestsIn(sc.Package.Path); len(ms) > 0 {
			m := ms[0]
			sc.Manifest = &m
			if data, err := os.ReadFile(filepath.Join(sc.RepoPath, filepath.FromSlash(m.Path))); err == nil {
				sc.ManifestContent = data
			}
		}
	}
	in.Manifest = sc.Manifest
	in.ManifestContent = sc.ManifestContent
	return in
}

func containsLanguage(langs []types.LanguageID, want types.LanguageID) bool {
	for _, l := range langs {
		if l == want {
			return true
		}
	}
	return false
}
