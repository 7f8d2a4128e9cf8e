package pipeline

import (
	"context"

	"unibuild/pkg/detect"
	"unibuild/pkg/errdefs"
	"unibuild/pkg/types"
)

// RuntimeConfigPhase extracts the service's deterministic runtime surface:
// ports, env vars, health route, native deps. An empty result is valid.
type RuntimeConfigPhase struct{}

func (p *RuntimeConfigPhase) Name() string { return "runtime_config" }

func (p *RuntimeConfigPhase) Execute(_ context.Context, sc *ServiceContext) error {
	rt, ok := sc.Registry.Runtime(sc.Stack.Runtime)
	if !ok {
		return errdefs.New(errdefs.KindNoLanguage, p.Name(), "no runtime registered for %s", sc.Stack.Runtime).ForService(sc.Package.Path)
	}

	var fw detect.Framework
	if sc.Stack.Framework != "" {
		fw, _ = sc.Registry.Framework(sc.Stack.Framework)
	}

	in := &detect.Input{
		RepoPath: sc.RepoPath, Dir: sc.Package.Path, Scan: sc.Scan,
		Manifest: sc.Manifest, ManifestContent: sc.ManifestContent,
	}
	rc, ok := rt.TryExtract(in, fw)
	if !ok {
		// The runtime declined; an empty config keeps the service going.
		rc = &types.RuntimeConfig{}
	}
	sc.RuntimeConfig = rc

	sc.Logger.Debug().
		Int("port", rc.Port).
		Int("env_vars", len(rc.EnvVars)).
		Bool("health", rc.Health != nil).
		Msg("runtime config extracted")
	return nil
}
