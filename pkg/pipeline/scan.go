package pipeline

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"unibuild/pkg/errdefs"
	"unibuild/pkg/types"
)

// skipDirs are never descended into, matching the fixed skip-set.
var skipDirs = map[string]bool{
	".git": true, "node_modules": true, "target": true, "vendor": true,
	"__pycache__": true, ".venv": true, "venv": true, "dist": true,
	"build": true, ".next": true, ".nuxt": true, "coverage": true, ".cache": true,
}

// lockfiles are retained in the file list but never surface as manifest
// candidates.
var lockfiles = map[string]bool{
	"package-lock.json": true, "yarn.lock": true, "pnpm-lock.yaml": true,
	"bun.lockb": true, "bun.lock": true, "Cargo.lock": true, "go.sum": true,
	"poetry.lock": true, "Pipfile.lock": true, "composer.lock": true,
	"Gemfile.lock": true, "gradle.lockfile": true, "mix.lock": true,
}

const defaultMaxDepth = 12

// ScanPhase walks the repository and produces the ScanResult: relative
// file paths, extension counts, and manifest candidates claimed by the
// registered build systems.
type ScanPhase struct {
	// MaxDepth bounds directory depth; 0 means the default.
	MaxDepth int
}

func (p *ScanPhase) Name() string { return "scan" }

func (p *ScanPhase) Execute(_ context.Context, ac *AnalysisContext) error {
	maxDepth := p.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	log := ac.Logger.With().Str("phase", p.Name()).Logger()

	if info, err := os.Stat(ac.RepoPath); err != nil || !info.IsDir() {
		return errdefs.New(errdefs.KindScan, p.Name(), "repository path %q is not a readable directory", ac.RepoPath)
	}

	matcher := gitignoreMatcher(ac.RepoPath)
	result := &types.ScanResult{Extensions: make(map[string]int)}

	err := filepath.WalkDir(ac.RepoPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(ac.RepoPath, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		depth := strings.Count(rel, "/")

		if d.IsDir() {
			if skipDirs[d.Name()] || depth >= maxDepth {
				return filepath.SkipDir
			}
			if matcher != nil && matcher.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}

		result.Files = append(result.Files, rel)
		if ext := strings.TrimPrefix(filepath.Ext(d.Name()), "."); ext != "" {
			result.Extensions[ext]++
		}

		if lockfiles[d.Name()] {
			return nil
		}
		prio, claimed := ac.Registry.ClaimManifest(d.Name())
		if !claimed {
			return nil
		}
		if demoted, err := p.demoted(path, d.Name()); err != nil {
			return err
		} else if demoted {
			return nil
		}
		result.Manifests = append(result.Manifests, types.ManifestCandidate{
			Path: rel, Name: d.Name(), Depth: depth, Priority: prio,
		})
		return nil
	})
	if err != nil {
		return errdefs.Wrap(errdefs.KindScan, p.Name(), err, "walking repository")
	}

	types.SortManifests(result.Manifests)
	ac.Scan = result
	log.Info().
		Int("files", len(result.Files)).
		Int("manifests", len(result.Manifests)).
		Msg("repository scanned")
	return nil
}

// demoted reports whether a claimed file is pure workspace configuration
// that does not indicate an independently buildable project: a Gradle
// settings file without include statements.
func (p *ScanPhase) demoted(fullPath, name string) (bool, error) {
	if !strings.HasPrefix(name, "settings.gradle") {
		return false, nil
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return false, errdefs.Wrap(errdefs.KindScan, p.Name(), err, "reading manifest %s", fullPath)
	}
	return !strings.Contains(string(data), "include"), nil
}

// gitignoreMatcher compiles the repo's .gitignore when present, the way
// the teacher's tree walker does.
func gitignoreMatcher(repoPath string) *ignore.GitIgnore {
	data, err := os.ReadFile(filepath.Join(repoPath, ".gitignore"))
	if err != nil {
		return nil
	}
	return ignore.CompileIgnoreLines(strings.Split(string(data), "\n")...)
}
