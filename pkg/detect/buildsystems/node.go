package buildsystems

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
	"unibuild/pkg/wolfi"
)

// packageJSON is the subset of package.json the detectors read.
type packageJSON struct {
	Name    string `json:"name"`
	Engines struct {
		Node string `json:"node"`
	} `json:"engines"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Workspaces      json.RawMessage   `json:"workspaces"`
}

// workspacePatterns handles both the array form and the object form
// {"packages": [...]} of the workspaces field.
func (p *packageJSON) workspacePatterns() []string {
	if len(p.Workspaces) == 0 {
		return nil
	}
	var arr []string
	if err := json.Unmarshal(p.Workspaces, &arr); err == nil {
		return arr
	}
	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(p.Workspaces, &obj); err == nil {
		return obj.Packages
	}
	return nil
}

// nodeBS is the shared implementation of the four JavaScript package
// managers; they differ in lockfile, install commands and cache layout.
type nodeBS struct {
	base
	lockfiles  []string // any present in the service dir selects this manager
	exclusive  bool     // true when a lockfile is required to match
	install    []string
	buildPkgs  []string
	cacheDirs  []string
}

func (n *nodeBS) Detect(in *detect.Input) (types.BuildSystemID, bool) {
	if !n.matchesManifest(in) {
		return "", false
	}
	if n.exclusive {
		// Workspace members share the root lockfile, so the repo root
		// counts as well as the service directory.
		for _, lf := range n.lockfiles {
			if dirHasFile(in, lf) || (in.Scan != nil && in.Scan.HasFile(lf)) {
				return n.id, true
			}
		}
		return "", false
	}
	return n.id, true
}

func (n *nodeBS) ParseDependencies(manifest []byte, _ []string) (*types.DependencyInfo, error) {
	var pkg packageJSON
	if err := json.Unmarshal(manifest, &pkg); err != nil {
		return nil, fmt.Errorf("parsing package.json: %w", err)
	}
	info := &types.DependencyInfo{}
	appendDeps := func(deps map[string]string, scope string) {
		names := make([]string, 0, len(deps))
		for name := range deps {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			info.Dependencies = append(info.Dependencies, types.Dependency{
				Name: name, Version: deps[name], Scope: scope, Ecosystem: types.EcosystemNpm,
			})
		}
	}
	appendDeps(pkg.Dependencies, "runtime")
	appendDeps(pkg.DevDependencies, "dev")
	return info, nil
}

func (n *nodeBS) BuildTemplate(idx wolfi.Index, in *detect.Input) (*types.BuildTemplate, error) {
	var pkg packageJSON
	_ = json.Unmarshal(in.ManifestContent, &pkg)

	hint := firstNumericConstraint(pkg.Engines.Node)
	if hint == "" {
		hint, _ = adjacentVersionHint(in, "nodejs")
	}
	node := resolveToolchain(idx, "nodejs", hint)

	commands := append([]string{}, n.install...)
	if _, ok := pkg.Scripts["build"]; ok {
		commands = append(commands, buildScriptCommand(n.id))
	}
	return &types.BuildTemplate{
		BuildPackages:    append([]string{node}, n.buildPkgs...),
		RuntimePackages:  []string{node},
		BuildCommands:    commands,
		ArtifactPaths:    []string{"."},
		CacheDirectories: n.cacheDirs,
	}, nil
}

func buildScriptCommand(id types.BuildSystemID) string {
	switch id {
	case types.BuildYarn:
		return "yarn build"
	case types.BuildPnpm:
		return "pnpm build"
	case types.BuildBun:
		return "bun run build"
	default:
		return "npm run build"
	}
}

// Workspace capability. npm and yarn read package.json "workspaces"; pnpm
// reads pnpm-workspace.yaml.

func (n *nodeBS) ParseWorkspacePatterns(in *detect.Input) ([]string, error) {
	var pkg packageJSON
	if err := json.Unmarshal(in.ManifestContent, &pkg); err != nil {
		return nil, fmt.Errorf("parsing package.json workspaces: %w", err)
	}
	return pkg.workspacePatterns(), nil
}

func (n *nodeBS) ParsePackageMetadata(path string, manifest []byte) (string, bool, error) {
	var pkg packageJSON
	if err := json.Unmarshal(manifest, &pkg); err != nil {
		return "", false, fmt.Errorf("parsing %s: %w", path, err)
	}
	name := pkg.Name
	if name == "" {
		name = filepath.Base(filepath.Dir(path))
	}
	_, isApp := pkg.Scripts["start"]
	return name, isApp, nil
}

func (n *nodeBS) GlobWorkspacePattern(root, pattern string) ([]string, error) {
	matches, err := expandPattern(root, pattern)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, dir := range matches {
		if _, err := os.Stat(filepath.Join(dir, "package.json")); err == nil {
			out = append(out, dir)
		}
	}
	return out, nil
}

// pnpmBS additionally reads pnpm-workspace.yaml, which the package.json
// manifest does not carry.
type pnpmBS struct{ nodeBS }

func (p *pnpmBS) ParseWorkspacePatterns(in *detect.Input) ([]string, error) {
	if patterns, err := p.nodeBS.ParseWorkspacePatterns(in); err == nil && len(patterns) > 0 {
		return patterns, nil
	}
	data, ok := readServiceFile(in, "pnpm-workspace.yaml")
	if !ok {
		return nil, nil
	}
	var ws struct {
		Packages []string `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("parsing pnpm-workspace.yaml: %w", err)
	}
	return ws.Packages, nil
}

// Npm detects package.json projects with no competing lockfile.
func Npm() detect.BuildSystem {
	return &nodeBS{
		base: base{
			id:        types.BuildNpm,
			manifests: []detect.ManifestSpec{{Filename: "package.json", Priority: 3}},
			languages: []types.LanguageID{types.LangJavaScript, types.LangTypeScript},
		},
		install:   []string{"npm ci"},
		cacheDirs: []string{"node_modules", "~/.npm"},
	}
}

// Yarn detects package.json projects with a yarn.lock.
func Yarn() detect.BuildSystem {
	return &nodeBS{
		base: base{
			id:        types.BuildYarn,
			manifests: []detect.ManifestSpec{{Filename: "package.json", Priority: 3}},
			languages: []types.LanguageID{types.LangJavaScript, types.LangTypeScript},
		},
		lockfiles: []string{"yarn.lock"},
		exclusive: true,
		install:   []string{"yarn install --frozen-lockfile"},
		buildPkgs: []string{"yarn"},
		cacheDirs: []string{"node_modules", ".yarn/cache"},
	}
}

// Pnpm detects package.json projects with a pnpm lockfile or workspace
// file.
func Pnpm() detect.BuildSystem {
	return &pnpmBS{nodeBS{
		base: base{
			id:        types.BuildPnpm,
			manifests: []detect.ManifestSpec{{Filename: "package.json", Priority: 3}},
			languages: []types.LanguageID{types.LangJavaScript, types.LangTypeScript},
		},
		lockfiles: []string{"pnpm-lock.yaml", "pnpm-workspace.yaml"},
		exclusive: true,
		install:   []string{"pnpm install --frozen-lockfile"},
		buildPkgs: []string{"pnpm"},
		cacheDirs: []string{"node_modules", "~/.local/share/pnpm/store"},
	}}
}

// Bun detects package.json projects with a bun lockfile.
func Bun() detect.BuildSystem {
	return &nodeBS{
		base: base{
			id:        types.BuildBun,
			manifests: []detect.ManifestSpec{{Filename: "package.json", Priority: 3}},
			languages: []types.LanguageID{types.LangJavaScript, types.LangTypeScript},
		},
		lockfiles: []string{"bun.lockb", "bun.lock"},
		exclusive: true,
		install:   []string{"bun install"},
		buildPkgs: []string{"bun"},
		cacheDirs: []string{"node_modules", "~/.bun/install/cache"},
	}
}

// firstNumericConstraint extracts the leading numeric version from an
// engines-style range like ">=18 <21".
func firstNumericConstraint(constraint string) string {
	for i := 0; i < len(constraint); i++ {
		if constraint[i] >= '0' && constraint[i] <= '9' {
			j := i
			for j < len(constraint) && (constraint[j] >= '0' && constraint[j] <= '9' || constraint[j] == '.') {
				j++
			}
			return constraint[i:j]
		}
	}
	return ""
}
