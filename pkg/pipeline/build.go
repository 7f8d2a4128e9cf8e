package pipeline

import (
	"context"

	"unibuild/pkg/detect"
	"unibuild/pkg/errdefs"
)

// BuildPhase produces the service's build template via the detected build
// system, including dynamic toolchain version resolution against the
// package index.
type BuildPhase struct{}

func (p *BuildPhase) Name() string { return "build" }

func (p *BuildPhase) Execute(_ context.Context, sc *ServiceContext) error {
	bs, ok := sc.Registry.BuildSystem(sc.Stack.BuildSystem)
	if !ok {
		// Custom build systems come from the LLM detector registered under
		// its own id at the tail of the sequence.
		for _, candidate := range sc.Registry.BuildSystems() {
			if candidate.ID() == "llm" {
				bs, ok = candidate, true
				break
			}
		}
	}
	if !ok {
		return errdefs.New(errdefs.KindNoBuildSystem, p.Name(), "no build system instance for %s", sc.Stack.BuildSystem).ForService(sc.Package.Path)
	}

	in := &detect.Input{
		RepoPath: sc.RepoPath, Dir: sc.Package.Path, Scan: sc.Scan,
		Manifest: sc.Manifest, ManifestContent: sc.ManifestContent,
	}
	tpl, err := bs.BuildTemplate(sc.Index, in)
	if err != nil {
		return errdefs.Wrap(errdefs.KindNoBuildSystem, p.Name(), err, "building template").ForService(sc.Package.Path)
	}
	sc.Build = tpl

	sc.Logger.Debug().
		Strs("build_packages", tpl.BuildPackages).
		Strs("commands", tpl.BuildCommands).
		Msg("build template produced")
	return nil
}
