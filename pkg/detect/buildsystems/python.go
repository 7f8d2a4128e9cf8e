package buildsystems

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
	"unibuild/pkg/wolfi"
)

var (
	requiresPythonRe = regexp.MustCompile(`requires-python\s*=\s*"[^\d]*([\d.]+)`)
	pipfilePythonRe  = regexp.MustCompile(`python_version\s*=\s*"([\d.]+)"`)
	// Requirement lines split on the first comparator or extras marker.
	reqSplitRe = regexp.MustCompile(`[>=<~!\[;]`)
)

// resolvePython returns the versioned interpreter package and the matching
// pip subpackage (python-3.12 / py3.12-pip).
func resolvePython(idx wolfi.Index, hint string) (string, string) {
	py := resolveToolchain(idx, "python", hint)
	version := strings.TrimPrefix(py, "python-")
	if version == py {
		return py, "py3-pip"
	}
	return py, "py" + version + "-pip"
}

type pip struct{ base }

// Pip detects plain requirements.txt / setup.py projects. It also claims
// pyproject.toml as a fallback for PEP 621 projects that poetry declined.
func Pip() detect.BuildSystem {
	return &pip{base{
		id: types.BuildPip,
		manifests: []detect.ManifestSpec{
			{Filename: "requirements.txt", Priority: 4},
			{Filename: "setup.py", Priority: 4},
			{Filename: "pyproject.toml", Priority: 4},
		},
		languages: []types.LanguageID{types.LangPython},
	}}
}

func (p *pip) Detect(in *detect.Input) (types.BuildSystemID, bool) {
	if !p.matchesManifest(in) {
		return "", false
	}
	return p.id, true
}

func (p *pip) ParseDependencies(manifest []byte, _ []string) (*types.DependencyInfo, error) {
	info := &types.DependencyInfo{}
	content := string(manifest)
	if strings.Contains(content, "[project]") || strings.Contains(content, "[build-system]") {
		return parsePyprojectDeps(manifest)
	}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		name := strings.TrimSpace(reqSplitRe.Split(line, 2)[0])
		if name == "" {
			continue
		}
		info.Dependencies = append(info.Dependencies, types.Dependency{
			Name: strings.ToLower(name), Ecosystem: types.EcosystemPyPI, Scope: "runtime",
		})
	}
	return info, nil
}

func parsePyprojectDeps(manifest []byte) (*types.DependencyInfo, error) {
	var project struct {
		Project struct {
			Dependencies []string `toml:"dependencies"`
		} `toml:"project"`
	}
	if _, err := toml.Decode(string(manifest), &project); err != nil {
		return nil, fmt.Errorf("parsing pyproject.toml: %w", err)
	}
	info := &types.DependencyInfo{}
	for _, spec := range project.Project.Dependencies {
		name := strings.TrimSpace(reqSplitRe.Split(spec, 2)[0])
		if name == "" {
			continue
		}
		info.Dependencies = append(info.Dependencies, types.Dependency{
			Name: strings.ToLower(name), Ecosystem: types.EcosystemPyPI, Scope: "runtime",
		})
	}
	return info, nil
}

func (p *pip) BuildTemplate(idx wolfi.Index, in *detect.Input) (*types.BuildTemplate, error) {
	hint := pythonHint(in)
	py, pipPkg := resolvePython(idx, hint)

	install := "pip install -r requirements.txt"
	if in.Manifest != nil && in.Manifest.Name != "requirements.txt" {
		install = "pip install ."
	}
	return &types.BuildTemplate{
		BuildPackages:    []string{py, pipPkg, "build-base"},
		RuntimePackages:  []string{py},
		BuildCommands:    []string{install},
		ArtifactPaths:    []string{"."},
		CacheDirectories: []string{"~/.cache/pip"},
	}, nil
}

func pythonHint(in *detect.Input) string {
	content := string(in.ManifestContent)
	for _, re := range []*regexp.Regexp{requiresPythonRe, pipfilePythonRe} {
		if m := re.FindStringSubmatch(content); m != nil {
			return m[1]
		}
	}
	hint, _ := adjacentVersionHint(in, "python")
	return hint
}

type poetry struct{ base }

// Poetry detects pyproject.toml projects managed by Poetry.
func Poetry() detect.BuildSystem {
	return &poetry{base{
		id:        types.BuildPoetry,
		manifests: []detect.ManifestSpec{{Filename: "pyproject.toml", Priority: 3}},
		languages: []types.LanguageID{types.LangPython},
	}}
}

func (p *poetry) Detect(in *detect.Input) (types.BuildSystemID, bool) {
	if !p.matchesManifest(in) {
		return "", false
	}
	if !strings.Contains(string(in.ManifestContent), "[tool.poetry") {
		return "", false
	}
	return p.id, true
}

func (p *poetry) ParseDependencies(manifest []byte, _ []string) (*types.DependencyInfo, error) {
	var project struct {
		Tool struct {
			Poetry struct {
				Dependencies map[string]toml.Primitive `toml:"dependencies"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if _, err := toml.Decode(string(manifest), &project); err != nil {
		return nil, fmt.Errorf("parsing pyproject.toml: %w", err)
	}
	names := make([]string, 0, len(project.Tool.Poetry.Dependencies))
	for name := range project.Tool.Poetry.Dependencies {
		if strings.EqualFold(name, "python") {
			continue
		}
		names = append(names, strings.ToLower(name))
	}
	sort.Strings(names)
	info := &types.DependencyInfo{}
	for _, name := range names {
		info.Dependencies = append(info.Dependencies, types.Dependency{
			Name: name, Ecosystem: types.EcosystemPyPI, Scope: "runtime",
		})
	}
	return info, nil
}

func (p *poetry) BuildTemplate(idx wolfi.Index, in *detect.Input) (*types.BuildTemplate, error) {
	py, pipPkg := resolvePython(idx, pythonHint(in))
	return &types.BuildTemplate{
		BuildPackages:    []string{py, pipPkg, "poetry", "build-base"},
		RuntimePackages:  []string{py},
		BuildCommands:    []string{"poetry install --only main"},
		ArtifactPaths:    []string{"."},
		CacheDirectories: []string{"~/.cache/pip", "~/.cache/pypoetry"},
	}, nil
}

type pipenv struct{ base }

// Pipenv detects Pipfile projects.
func Pipenv() detect.BuildSystem {
	return &pipenv{base{
		id:        types.BuildPipenv,
		manifests: []detect.ManifestSpec{{Filename: "Pipfile", Priority: 3}},
		languages: []types.LanguageID{types.LangPython},
	}}
}

func (p *pipenv) Detect(in *detect.Input) (types.BuildSystemID, bool) {
	if !p.matchesManifest(in) {
		return "", false
	}
	return p.id, true
}

func (p *pipenv) ParseDependencies(manifest []byte, _ []string) (*types.DependencyInfo, error) {
	var pipfile struct {
		Packages map[string]toml.Primitive `toml:"packages"`
	}
	if _, err := toml.Decode(string(manifest), &pipfile); err != nil {
		return nil, fmt.Errorf("parsing Pipfile: %w", err)
	}
	names := make([]string, 0, len(pipfile.Packages))
	for name := range pipfile.Packages {
		names = append(names, strings.ToLower(name))
	}
	sort.Strings(names)
	info := &types.DependencyInfo{}
	for _, name := range names {
		info.Dependencies = append(info.Dependencies, types.Dependency{
			Name: name, Ecosystem: types.EcosystemPyPI, Scope: "runtime",
		})
	}
	return info, nil
}

func (p *pipenv) BuildTemplate(idx wolfi.Index, in *detect.Input) (*types.BuildTemplate, error) {
	py, pipPkg := resolvePython(idx, pythonHint(in))
	return &types.BuildTemplate{
		BuildPackages:    []string{py, pipPkg, "pipenv", "build-base"},
		RuntimePackages:  []string{py},
		BuildCommands:    []string{"pipenv install --deploy"},
		ArtifactPaths:    []string{"."},
		CacheDirectories: []string{"~/.cache/pip", "~/.cache/pipenv"},
	}, nil
}
