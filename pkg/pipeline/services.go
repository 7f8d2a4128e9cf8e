package pipeline

import (
	"context"

	"unibuild/pkg/types"
)

// ServicesPhase fans out into the per-service phase sequence. A failure in
// one service is recorded and skipped; the remaining services continue.
type ServicesPhase struct {
	Phases []ServicePhase
}

// NewServicesPhase wires the standard service sequence.
func NewServicesPhase() *ServicesPhase {
	return &ServicesPhase{Phases: []ServicePhase{
		&StackPhase{}, &RuntimeConfigPhase{}, &BuildPhase{}, &CachePhase{},
	}}
}

func (p *ServicesPhase) Name() string { return "services" }

func (p *ServicesPhase) Execute(ctx context.Context, ac *AnalysisContext) error {
	for _, pkg := range ac.Workspace.Packages {
		if err := ctx.Err(); err != nil {
			return err
		}
		log := ac.Logger.With().Str("service", pkg.Path).Logger()
		sc := &ServiceContext{
			RepoPath: ac.RepoPath,
			Registry: ac.Registry,
			Index:    ac.Index,
			Scan:     ac.Scan,
			Package:  pkg,
			Logger:   log,
		}

		if err := p.runService(ctx, sc); err != nil {
			// Deadline expiry aborts the run; anything else stays local to
			// this service.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Msg("service analysis failed, skipping")
			ac.Failures = append(ac.Failures, ServiceFailure{Package: pkg, Err: err})
			continue
		}

		ac.Services = append(ac.Services, &types.ServiceAnalysis{
			Package:          pkg,
			Stack:            *sc.Stack,
			BuildTemplate:    sc.Build,
			RuntimeConfig:    sc.RuntimeConfig,
			CacheDirectories: sc.Caches,
		})
	}
	return nil
}

func (p *ServicesPhase) runService(ctx context.Context, sc *ServiceContext) error {
	for _, phase := range p.Phases {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := phase.Execute(ctx, sc); err != nil {
			return err
		}
	}
	return nil
}
