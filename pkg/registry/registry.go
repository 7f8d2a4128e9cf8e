// Package registry composes the detector families for one run. The
// registry is constructed once at startup and immutable afterwards; all
// fallback behavior ("try the LLM only when deterministic detectors fail")
// emerges purely from registration order.
package registry

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"unibuild/pkg/ai"
	"unibuild/pkg/detect"
	"unibuild/pkg/detect/buildsystems"
	"unibuild/pkg/detect/frameworks"
	"unibuild/pkg/detect/languages"
	"unibuild/pkg/detect/llmdetect"
	"unibuild/pkg/detect/orchestrators"
	"unibuild/pkg/detect/runtimes"
	"unibuild/pkg/types"
)

// Mode selects which detectors the registry holds.
type Mode int

const (
	// ModeFull registers known detectors, then LLM-backed ones last.
	ModeFull Mode = iota
	// ModeStatic registers only known detectors; the LLM is never called.
	ModeStatic
	// ModeLLMOnly registers only LLM-backed detectors.
	ModeLLMOnly
)

func (m Mode) String() string {
	switch m {
	case ModeStatic:
		return "static"
	case ModeLLMOnly:
		return "llm_only"
	default:
		return "full"
	}
}

// ParseMode reads the detection-mode environment value.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return ModeFull, nil
	case "static":
		return ModeStatic, nil
	case "llm_only", "llmonly", "llm-only":
		return ModeLLMOnly, nil
	default:
		return ModeFull, fmt.Errorf("unknown detection mode %q", s)
	}
}

// Options control registry construction.
type Options struct {
	Mode Mode
	// Client is required for ModeLLMOnly and enables the LLM tail of
	// ModeFull.
	Client ai.Client
	// DisableLLMFallback keeps ModeFull purely deterministic even when a
	// client is configured.
	DisableLLMFallback bool
	Logger             zerolog.Logger
}

// Registry holds the ordered detector collections and the
// language-to-runtime mapping.
type Registry struct {
	buildSystems  []detect.BuildSystem
	languages     []detect.Language
	frameworks    []detect.Framework
	orchestrators []detect.Orchestrator
	runtimes      []detect.Runtime

	buildSystemByID  map[types.BuildSystemID]detect.BuildSystem
	languageByID     map[types.LanguageID]detect.Language
	frameworkByID    map[types.FrameworkID]detect.Framework
	orchestratorByID map[types.OrchestratorID]detect.Orchestrator
	runtimeByID      map[types.RuntimeID]detect.Runtime

	runtimeForLanguage map[types.LanguageID]types.RuntimeID
}

// languageRuntimes is the dense language→runtime table. Unmapped
// languages run native.
var languageRuntimes = map[types.LanguageID]types.RuntimeID{
	types.LangRust:       types.RuntimeNative,
	types.LangGo:         types.RuntimeNative,
	types.LangCpp:        types.RuntimeNative,
	types.LangJava:       types.RuntimeJVM,
	types.LangKotlin:     types.RuntimeJVM,
	types.LangJavaScript: types.RuntimeNode,
	types.LangTypeScript: types.RuntimeNode,
	types.LangPython:     types.RuntimePython,
	types.LangRuby:       types.RuntimeRuby,
	types.LangPHP:        types.RuntimePHP,
	types.LangCSharp:     types.RuntimeDotNet,
	types.LangFSharp:     types.RuntimeDotNet,
	types.LangElixir:     types.RuntimeBeam,
}

// New constructs the registry for the given mode.
func New(opts Options) (*Registry, error) {
	r := &Registry{
		buildSystemByID:    make(map[types.BuildSystemID]detect.BuildSystem),
		languageByID:       make(map[types.LanguageID]detect.Language),
		frameworkByID:      make(map[types.FrameworkID]detect.Framework),
		orchestratorByID:   make(map[types.OrchestratorID]detect.Orchestrator),
		runtimeByID:        make(map[types.RuntimeID]detect.Runtime),
		runtimeForLanguage: languageRuntimes,
	}

	registerKnown := func() {
		for _, bs := range buildsystems.All() {
			r.registerBuildSystem(bs)
		}
		for _, lang := range languages.All() {
			r.registerLanguage(lang)
		}
		for _, fw := range frameworks.All() {
			r.registerFramework(fw)
		}
		for _, orch := range orchestrators.All() {
			r.registerOrchestrator(orch)
		}
		for _, rt := range runtimes.All() {
			r.registerRuntime(rt)
		}
	}
	registerLLM := func() {
		log := opts.Logger
		r.registerBuildSystem(llmdetect.NewBuildSystem(opts.Client, log))
		r.registerLanguage(llmdetect.NewLanguage(opts.Client, log))
		r.registerFramework(llmdetect.NewFramework(opts.Client, log))
		r.registerOrchestrator(llmdetect.NewOrchestrator(opts.Client, log))
		r.registerRuntime(llmdetect.NewRuntime(opts.Client, log))
	}

	switch opts.Mode {
	case ModeStatic:
		registerKnown()
	case ModeLLMOnly:
		if opts.Client == nil {
			return nil, fmt.Errorf("detection mode llm_only requires an LLM client")
		}
		registerLLM()
	default:
		registerKnown()
		if opts.Client != nil && !opts.DisableLLMFallback {
			registerLLM()
		}
	}
	return r, nil
}

func (r *Registry) registerBuildSystem(bs detect.BuildSystem) {
	r.buildSystems = append(r.buildSystems, bs)
	r.buildSystemByID[bs.ID()] = bs
}

func (r *Registry) registerLanguage(l detect.Language) {
	r.languages = append(r.languages, l)
	r.languageByID[l.ID()] = l
}

func (r *Registry) registerFramework(f detect.Framework) {
	r.frameworks = append(r.frameworks, f)
	r.frameworkByID[f.ID()] = f
}

func (r *Registry) registerOrchestrator(o detect.Orchestrator) {
	r.orchestrators = append(r.orchestrators, o)
	r.orchestratorByID[o.ID()] = o
}

func (r *Registry) registerRuntime(rt detect.Runtime) {
	r.runtimes = append(r.runtimes, rt)
	r.runtimeByID[rt.ID()] = rt
}

// BuildSystems returns the detectors in registration order.
func (r *Registry) BuildSystems() []detect.BuildSystem  { return r.buildSystems }
func (r *Registry) Languages() []detect.Language        { return r.languages }
func (r *Registry) Frameworks() []detect.Framework      { return r.frameworks }
func (r *Registry) Orchestrators() []detect.Orchestrator { return r.orchestrators }
func (r *Registry) Runtimes() []detect.Runtime          { return r.runtimes }

// BuildSystem looks up a detector by id.
func (r *Registry) BuildSystem(id types.BuildSystemID) (detect.BuildSystem, bool) {
	bs, ok := r.buildSystemByID[id]
	return bs, ok
}

func (r *Registry) Language(id types.LanguageID) (detect.Language, bool) {
	l, ok := r.languageByID[id]
	return l, ok
}

func (r *Registry) Framework(id types.FrameworkID) (detect.Framework, bool) {
	f, ok := r.frameworkByID[id]
	return f, ok
}

func (r *Registry) Orchestrator(id types.OrchestratorID) (detect.Orchestrator, bool) {
	o, ok := r.orchestratorByID[id]
	return o, ok
}

// Runtime resolves a runtime detector by id, falling back to the native
// runtime for unknown (custom) ids in deterministic modes.
func (r *Registry) Runtime(id types.RuntimeID) (detect.Runtime, bool) {
	if rt, ok := r.runtimeByID[id]; ok {
		return rt, true
	}
	if rt, ok := r.runtimeByID[types.RuntimeNative]; ok {
		return rt, true
	}
	if rt, ok := r.runtimeByID["llm"]; ok {
		return rt, true
	}
	return nil, false
}

// RuntimeFor maps a language to its runtime family; unmapped languages are
// native.
func (r *Registry) RuntimeFor(lang types.LanguageID) types.RuntimeID {
	if rt, ok := r.runtimeForLanguage[lang]; ok {
		return rt
	}
	return types.RuntimeNative
}

// ClaimManifest reports whether any registered build system claims the
// basename, and the strongest (lowest) priority claimed.
func (r *Registry) ClaimManifest(name string) (int, bool) {
	best := 0
	claimed := false
	for _, bs := range r.buildSystems {
		if prio, ok := buildsystems.PriorityFor(bs.Manifests(), name); ok {
			if !claimed || prio < best {
				best = prio
				claimed = true
			}
		}
	}
	return best, claimed
}

// WorkspaceBuildSystemFor finds the first registered build system that
// claims the manifest basename and offers the workspace capability.
func (r *Registry) WorkspaceBuildSystemFor(name string) (detect.WorkspaceBuildSystem, bool) {
	for _, bs := range r.buildSystems {
		if !buildsystems.ClaimsFilename(bs.Manifests(), name) {
			continue
		}
		if ws, ok := bs.(detect.WorkspaceBuildSystem); ok {
			return ws, true
		}
	}
	return nil, false
}
