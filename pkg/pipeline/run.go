package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"unibuild/pkg/errdefs"
	"unibuild/pkg/registry"
	"unibuild/pkg/schema"
	"unibuild/pkg/wolfi"
)

// Runner drives the repository-level phases in declaration order. A phase
// error aborts the run; prior partial results are discarded.
type Runner struct {
	Phases  []Phase
	Timeout time.Duration
	Logger  zerolog.Logger
}

// NewRunner wires the standard phase sequence.
func NewRunner(log zerolog.Logger, scanDepth int, timeout time.Duration) *Runner {
	return &Runner{
		Phases: []Phase{
			&ScanPhase{MaxDepth: scanDepth},
			&WorkspacePhase{},
			&RootCachePhase{},
			NewServicesPhase(),
			&AssemblePhase{},
		},
		Timeout: timeout,
		Logger:  log,
	}
}

// Result is the outcome of one pipeline run.
type Result struct {
	Documents []*schema.UniversalBuild
	Services  []ServiceStatus
}

// ServiceStatus is one line of the run summary.
type ServiceStatus struct {
	Path   string
	Name   string
	Status string // "succeeded", "skipped", "failed"
	Reason string
}

// Run executes the pipeline against a repository.
func (r *Runner) Run(ctx context.Context, repoPath string, reg *registry.Registry, idx wolfi.Index) (*Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	ac := &AnalysisContext{
		RepoPath: repoPath,
		Registry: reg,
		Index:    idx,
		Logger:   r.Logger,
	}

	for _, phase := range r.Phases {
		if err := ctx.Err(); err != nil {
			return nil, errdefs.Wrap(errdefs.KindTimeout, phase.Name(), err, "deadline exceeded before phase")
		}
		start := time.Now()
		if err := phase.Execute(ctx, ac); err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil, errdefs.Wrap(errdefs.KindTimeout, phase.Name(), err, "deadline exceeded during phase")
			}
			return nil, err
		}
		r.Logger.Debug().Str("phase", phase.Name()).Dur("elapsed", time.Since(start)).Msg("phase complete")
	}

	return &Result{Documents: ac.Documents, Services: summarize(ac)}, nil
}

func summarize(ac *AnalysisContext) []ServiceStatus {
	failed := make(map[string]error, len(ac.Failures))
	for _, f := range ac.Failures {
		failed[f.Package.Path] = f.Err
	}

	var out []ServiceStatus
	if ac.Workspace == nil {
		return out
	}
	for _, pkg := range ac.Workspace.Packages {
		st := ServiceStatus{Path: pkg.Path, Name: pkg.Name}
		switch {
		case failed[pkg.Path] != nil:
			st.Status = "failed"
			st.Reason = string(errdefs.KindOf(failed[pkg.Path]))
			if st.Reason == "" {
				st.Reason = failed[pkg.Path].Error()
			}
		case !pkg.IsApplication:
			st.Status = "skipped"
			st.Reason = "library"
		default:
			st.Status = "succeeded"
		}
		out = append(out, st)
	}
	return out
}
