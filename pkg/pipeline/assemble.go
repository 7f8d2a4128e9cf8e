package pipeline

import (
	"context"

	"unibuild/pkg/schema"
	"unibuild/pkg/types"
)

// AssemblePhase emits one UniversalBuild document per application
// package; libraries are omitted. A validation failure aborts that
// document's emission but not the others.
type AssemblePhase struct{}

func (p *AssemblePhase) Name() string { return "assemble" }

func (p *AssemblePhase) Execute(_ context.Context, ac *AnalysisContext) error {
	log := ac.Logger.With().Str("phase", p.Name()).Logger()

	for _, svc := range ac.Services {
		if !svc.Package.IsApplication {
			log.Debug().Str("service", svc.Package.Path).Msg("library package, no document")
			continue
		}
		doc := p.document(ac, svc)
		if err := schema.Validate(doc, ac.Index); err != nil {
			log.Error().Err(err).Str("service", svc.Package.Path).Msg("document failed validation")
			ac.Failures = append(ac.Failures, ServiceFailure{Package: svc.Package, Err: err})
			continue
		}
		ac.Documents = append(ac.Documents, doc)
	}

	log.Info().Int("documents", len(ac.Documents)).Msg("assembly complete")
	return nil
}

func (p *AssemblePhase) document(ac *AnalysisContext, svc *types.ServiceAnalysis) *schema.UniversalBuild {
	tpl := svc.BuildTemplate
	rc := svc.RuntimeConfig
	if tpl == nil {
		tpl = &types.BuildTemplate{}
	}
	if rc == nil {
		rc = &types.RuntimeConfig{}
	}

	name := svc.Package.Name
	if name == "" {
		name = schema.ProjectNameFromPath(svc.Package.Path)
	}

	meta := schema.Metadata{
		ProjectName: name,
		Language:    svc.Stack.Language.String(),
		BuildSystem: svc.Stack.BuildSystem.String(),
		Framework:   svc.Stack.Framework.String(),
		Runtime:     svc.Stack.Runtime.String(),
	}

	cache := dedupe(tpl.CacheDirectories, svc.CacheDirectories, ac.RootCaches)

	// Orchestrated monorepos delegate the build step to the orchestrator;
	// the template keeps the dependency-install step.
	commands := tpl.BuildCommands
	if ac.Workspace != nil && ac.Workspace.Orchestrator != "" {
		if orch, ok := ac.Registry.Orchestrator(ac.Workspace.Orchestrator); ok {
			commands = nil
			if len(tpl.BuildCommands) > 0 {
				commands = append(commands, tpl.BuildCommands[0])
			}
			commands = append(commands, orch.BuildCommand(svc.Package))
		}
	}

	runtimePackages := append([]string{}, tpl.RuntimePackages...)
	if rt, ok := ac.Registry.Runtime(svc.Stack.Runtime); ok {
		runtimePackages = dedupe(runtimePackages, rt.RequiredPackages())
	}

	return &schema.UniversalBuild{
		Version:  schema.Version,
		Metadata: meta,
		Build: schema.BuildStage{
			Packages:  emptyNotNil(tpl.BuildPackages),
			Commands:  emptyNotNil(commands),
			Artifacts: emptyNotNil(tpl.ArtifactPaths),
			Cache:     emptyNotNil(cache),
		},
		Runtime: schema.RuntimeStage{
			Base:       schema.RuntimeBase,
			Packages:   emptyNotNil(runtimePackages),
			Entrypoint: p.entrypoint(ac, svc, rc, tpl),
			Port:       rc.Port,
			Env:        emptyNotNil(rc.EnvVars),
			Health:     rc.Health,
		},
	}
}

// entrypoint resolves the start command: an extracted entry file first,
// then the first build artifact, rendered through the runtime's start
// command shape. An orchestrated package without either falls back to the
// orchestrator's build command target.
func (p *AssemblePhase) entrypoint(ac *AnalysisContext, svc *types.ServiceAnalysis, rc *types.RuntimeConfig, tpl *types.BuildTemplate) string {
	rt, ok := ac.Registry.Runtime(svc.Stack.Runtime)
	if !ok {
		return rc.Entrypoint
	}
	if rc.Entrypoint != "" {
		return rt.StartCommand(rc.Entrypoint)
	}
	for _, artifact := range tpl.ArtifactPaths {
		if artifact != "" && artifact != "." {
			return rt.StartCommand(artifact)
		}
	}
	switch svc.Stack.Runtime {
	case types.RuntimeNode:
		return "npm start"
	default:
		return rt.StartCommand("app")
	}
}

func dedupe(groups ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, group := range groups {
		for _, v := range group {
			if v != "" && !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

func emptyNotNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
