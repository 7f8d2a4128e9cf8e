package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"unibuild/pkg/detect"
	"unibuild/pkg/errdefs"
	"unibuild/pkg/types"
)

// maxWorkspaceDepth caps nested workspace resolution so a workspace
// manifest referencing a directory that itself declares a workspace
// cannot recurse indefinitely.
const maxWorkspaceDepth = 3

// WorkspacePhase resolves the workspace layout: an orchestrator if one
// matches, else the primary build system's workspace declaration, else a
// single package at the repository root.
type WorkspacePhase struct{}

func (p *WorkspacePhase) Name() string { return "workspace" }

func (p *WorkspacePhase) Execute(_ context.Context, ac *AnalysisContext) error {
	log := ac.Logger.With().Str("phase", p.Name()).Logger()
	in := &detect.Input{RepoPath: ac.RepoPath, Dir: ".", Scan: ac.Scan}

	for _, orch := range ac.Registry.Orchestrators() {
		if !orch.Detect(in) {
			continue
		}
		ws, err := orch.WorkspaceStructure(ac.RepoPath, in)
		if err != nil {
			return errdefs.Wrap(errdefs.KindWorkspace, p.Name(), err, "resolving %s workspace", orch.ID())
		}
		log.Info().Str("orchestrator", string(orch.ID())).Int("packages", len(ws.Packages)).Msg("workspace detected")
		ac.Workspace = ws
		return nil
	}

	if manifest, ok := ac.Scan.PrimaryManifest(); ok {
		if wbs, ok := ac.Registry.WorkspaceBuildSystemFor(manifest.Name); ok {
			packages, err := p.resolveMembers(ac, wbs, manifest, 1)
			if err != nil {
				return err
			}
			if len(packages) > 0 {
				log.Info().Int("packages", len(packages)).Msg("workspace resolved from build system")
				ac.Workspace = &types.WorkspaceStructure{Packages: packages}
				return nil
			}
		}
	}

	pkg, err := p.rootPackage(ac)
	if err != nil {
		return err
	}
	ac.Workspace = &types.WorkspaceStructure{Packages: []types.Package{pkg}}
	log.Info().Str("package", pkg.Name).Bool("application", pkg.IsApplication).Msg("single-package repository")
	return nil
}

// resolveMembers expands the workspace declaration of one manifest,
// recursing into members that declare workspaces of their own.
func (p *WorkspacePhase) resolveMembers(ac *AnalysisContext, wbs detect.WorkspaceBuildSystem, manifest types.ManifestCandidate, depth int) ([]types.Package, error) {
	if depth > maxWorkspaceDepth {
		return nil, errdefs.New(errdefs.KindWorkspace, p.Name(),
			"workspace nesting exceeds depth %d at %s", maxWorkspaceDepth, manifest.Path)
	}
	content, err := os.ReadFile(filepath.Join(ac.RepoPath, filepath.FromSlash(manifest.Path)))
	if err != nil {
		return nil, errdefs.Wrap(errdefs.KindWorkspace, p.Name(), err, "reading %s", manifest.Path)
	}
	in := &detect.Input{
		RepoPath: ac.RepoPath, Dir: manifest.Dir(), Scan: ac.Scan,
		Manifest: &manifest, ManifestContent: content,
	}
	patterns, err := wbs.ParseWorkspacePatterns(in)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.KindWorkspace, p.Name(), err, "parsing workspace patterns of %s", manifest.Path)
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	var packages []types.Package
	seen := map[string]bool{}
	for _, pattern := range patterns {
		dirs, err := wbs.GlobWorkspacePattern(filepath.Join(ac.RepoPath, filepath.FromSlash(manifest.Dir())), pattern)
		if err != nil {
			return nil, errdefs.Wrap(errdefs.KindWorkspace, p.Name(), err, "expanding pattern %q", pattern)
		}
		for _, dir := range dirs {
			rel, err := filepath.Rel(ac.RepoPath, dir)
			if err != nil {
				return nil, errdefs.Wrap(errdefs.KindWorkspace, p.Name(), err, "relativizing %s", dir)
			}
			rel = filepath.ToSlash(rel)
			if seen[rel] {
				continue
			}
			seen[rel] = true

			member, ok := p.memberManifest(ac, wbs, rel)
			if !ok {
				continue
			}
			memberContent, err := os.ReadFile(filepath.Join(ac.RepoPath, filepath.FromSlash(member.Path)))
			if err != nil {
				return nil, errdefs.Wrap(errdefs.KindWorkspace, p.Name(), err, "reading %s", member.Path)
			}

			// A member may itself declare a workspace; descend instead of
			// treating it as a leaf.
			memberIn := &detect.Input{
				RepoPath: ac.RepoPath, Dir: rel, Scan: ac.Scan,
				Manifest: &member, ManifestContent: memberContent,
			}
			if nested, err := wbs.ParseWorkspacePatterns(memberIn); err == nil && len(nested) > 0 {
				nestedPkgs, err := p.resolveMembers(ac, wbs, member, depth+1)
				if err != nil {
					return nil, err
				}
				packages = append(packages, nestedPkgs...)
				continue
			}

			name, isApp, err := wbs.ParsePackageMetadata(member.Path, memberContent)
			if err != nil {
				return nil, errdefs.Wrap(errdefs.KindWorkspace, p.Name(), err, "parsing member %s", member.Path)
			}
			packages = append(packages, types.Package{Path: rel, Name: name, IsApplication: isApp})
		}
	}
	return packages, nil
}

// memberManifest locates the member directory's manifest among the build
// system's claimed filenames.
func (p *WorkspacePhase) memberManifest(ac *AnalysisContext, wbs detect.WorkspaceBuildSystem, dir string) (types.ManifestCandidate, bool) {
	if ms := ac.Scan.ManifestsIn(dir); len(ms) > 0 {
		return ms[0], true
	}
	// The scan may have demoted or missed the member manifest; fall back
	// to a direct stat over the claimed filenames.
	for _, spec := range wbs.Manifests() {
		rel := dir + "/" + spec.Filename
		if _, err := os.Stat(filepath.Join(ac.RepoPath, filepath.FromSlash(rel))); err == nil {
			return types.ManifestCandidate{Path: rel, Name: spec.Filename, Priority: spec.Priority}, true
		}
	}
	return types.ManifestCandidate{}, false
}

// rootPackage builds the single fallback package. The application flag
// derives from the manifest metadata when the build system can read it;
// otherwise a buildable project defaults to being an application.
func (p *WorkspacePhase) rootPackage(ac *AnalysisContext) (types.Package, error) {
	name := filepath.Base(ac.RepoPath)
	pkg := types.Package{Path: ".", Name: name, IsApplication: true}

	manifest, ok := ac.Scan.PrimaryManifest()
	if !ok {
		return pkg, nil
	}
	wbs, ok := ac.Registry.WorkspaceBuildSystemFor(manifest.Name)
	if !ok {
		return pkg, nil
	}
	content, err := os.ReadFile(filepath.Join(ac.RepoPath, filepath.FromSlash(manifest.Path)))
	if err != nil {
		return pkg, errdefs.Wrap(errdefs.KindWorkspace, p.Name(), err, "reading %s", manifest.Path)
	}
	if metaName, isApp, err := wbs.ParsePackageMetadata(manifest.Path, content); err == nil {
		if metaName != "" && metaName != "." {
			pkg.Name = metaName
		}
		pkg.IsApplication = isApp
	}
	return pkg, nil
}
