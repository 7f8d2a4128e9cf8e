package buildsystems

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
	"unibuild/pkg/wolfi"
)

func testIndex() wolfi.Index {
	return wolfi.NewStaticIndex(
		"nodejs-22", "nodejs-20", "nodejs-18",
		"openjdk-21", "openjdk-17", "openjdk-21-jre", "openjdk-17-jre",
		"python-3.12", "python-3.11", "py3.12-pip",
		"ruby-3.3", "ruby-3.2", "php-8.3", "elixir-1.16", "dotnet-8",
	)
}

func manifestInput(t *testing.T, files map[string]string, manifestRel string) *detect.Input {
	t.Helper()
	root := t.TempDir()
	scan := &types.ScanResult{Extensions: map[string]int{}}
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
		scan.Files = append(scan.Files, rel)
	}
	in := &detect.Input{RepoPath: root, Dir: ".", Scan: scan}
	if manifestRel != "" {
		in.Manifest = &types.ManifestCandidate{Path: manifestRel, Name: filepath.Base(manifestRel)}
		in.ManifestContent = []byte(files[manifestRel])
	}
	return in
}

func TestClaimsFilenameGlobs(t *testing.T) {
	specs := DotNet().Manifests()
	assert.True(t, ClaimsFilename(specs, "api.csproj"))
	assert.True(t, ClaimsFilename(specs, "svc.fsproj"))
	assert.False(t, ClaimsFilename(specs, "api.vbproj"))

	prio, ok := PriorityFor(Cargo().Manifests(), "Cargo.toml")
	require.True(t, ok)
	assert.Equal(t, 1, prio)
}

func TestRegistryOrderPutsLockfileManagersBeforeNpm(t *testing.T) {
	var order []types.BuildSystemID
	for _, bs := range All() {
		order = append(order, bs.ID())
	}
	idx := func(id types.BuildSystemID) int {
		for i, got := range order {
			if got == id {
				return i
			}
		}
		return -1
	}
	assert.Less(t, idx(types.BuildPnpm), idx(types.BuildNpm))
	assert.Less(t, idx(types.BuildYarn), idx(types.BuildNpm))
	assert.Less(t, idx(types.BuildBun), idx(types.BuildNpm))
	assert.Less(t, idx(types.BuildPoetry), idx(types.BuildPip))
}

func TestCargo(t *testing.T) {
	manifest := `[package]
name = "acme"

[dependencies]
serde = "1"
tokio = { version = "1", features = ["full"] }
`
	in := manifestInput(t, map[string]string{"Cargo.toml": manifest, "src/main.rs": "fn main() {}"}, "Cargo.toml")

	id, ok := Cargo().Detect(in)
	require.True(t, ok)
	assert.Equal(t, types.BuildCargo, id)

	deps, err := Cargo().ParseDependencies([]byte(manifest), nil)
	require.NoError(t, err)
	require.Len(t, deps.Dependencies, 2)
	assert.Equal(t, "serde", deps.Dependencies[0].Name)
	assert.Equal(t, types.EcosystemCargo, deps.Dependencies[0].Ecosystem)

	tpl, err := Cargo().BuildTemplate(testIndex(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"rust", "build-base"}, tpl.BuildPackages)
	assert.Equal(t, []string{"glibc", "ca-certificates"}, tpl.RuntimePackages)
	assert.Contains(t, tpl.BuildCommands, "cargo build --release")
	assert.Equal(t, []string{"target/release/acme"}, tpl.ArtifactPaths)
}

func TestCargoWorkspace(t *testing.T) {
	ws := Cargo().(detect.WorkspaceBuildSystem)

	in := manifestInput(t, map[string]string{
		"Cargo.toml": "[workspace]\nmembers = [\"crates/*\"]\n",
	}, "Cargo.toml")
	patterns, err := ws.ParseWorkspacePatterns(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"crates/*"}, patterns)

	name, isApp, err := ws.ParsePackageMetadata("crates/api/Cargo.toml", []byte("[package]\nname = \"api\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "api", name)
	assert.True(t, isApp)

	_, isApp, err = ws.ParsePackageMetadata("crates/core/Cargo.toml", []byte("[package]\nname = \"core\"\n\n[lib]\n"))
	require.NoError(t, err)
	assert.False(t, isApp)
}

func TestMaven(t *testing.T) {
	manifest := `<project>
  <properties><maven.compiler.source>21</maven.compiler.source></properties>
  <dependencies>
    <dependency>
      <groupId>org.springframework.boot</groupId>
      <artifactId>spring-boot-starter-web</artifactId>
    </dependency>
  </dependencies>
</project>`
	in := manifestInput(t, map[string]string{"pom.xml": manifest}, "pom.xml")

	deps, err := Maven().ParseDependencies([]byte(manifest), nil)
	require.NoError(t, err)
	require.Len(t, deps.Dependencies, 1)
	assert.Equal(t, "org.springframework.boot:spring-boot-starter-web", deps.Dependencies[0].Name)

	tpl, err := Maven().BuildTemplate(testIndex(), in)
	require.NoError(t, err)
	assert.Contains(t, tpl.BuildPackages, "openjdk-21")
	assert.Contains(t, tpl.BuildPackages, "maven")
	assert.Equal(t, []string{"openjdk-21-jre"}, tpl.RuntimePackages)
}

func TestGradleSettingsWithoutIncludeDeclines(t *testing.T) {
	in := manifestInput(t, map[string]string{"settings.gradle": `rootProject.name = "solo"`}, "settings.gradle")
	_, ok := Gradle().Detect(in)
	assert.False(t, ok)

	in = manifestInput(t, map[string]string{"settings.gradle.kts": `include(":api", ":shared")`}, "settings.gradle.kts")
	_, ok = Gradle().Detect(in)
	assert.True(t, ok)
}

func TestGradleWorkspace(t *testing.T) {
	ws := Gradle().(detect.WorkspaceBuildSystem)

	in := manifestInput(t, map[string]string{
		"settings.gradle.kts": `include(":api", ":shared")` + "\n" + `include(":services:worker")`,
	}, "settings.gradle.kts")
	patterns, err := ws.ParseWorkspacePatterns(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "shared", "services/worker"}, patterns)

	name, isApp, err := ws.ParsePackageMetadata("api/build.gradle.kts", []byte("plugins { id(\"application\") }\n"))
	require.NoError(t, err)
	assert.Equal(t, "api", name)
	assert.True(t, isApp)

	_, isApp, err = ws.ParsePackageMetadata("shared/build.gradle.kts", []byte("plugins { `java-library` }\n"))
	require.NoError(t, err)
	assert.False(t, isApp)
}

func TestNodeManagerSelectionByLockfile(t *testing.T) {
	pkg := `{"name":"web","dependencies":{"next":"14.0.0"}}`

	in := manifestInput(t, map[string]string{"package.json": pkg, "pnpm-lock.yaml": ""}, "package.json")
	id, ok := Pnpm().Detect(in)
	require.True(t, ok)
	assert.Equal(t, types.BuildPnpm, id)
	_, ok = Yarn().Detect(in)
	assert.False(t, ok)

	// npm is the fallback with no lockfile at all.
	in = manifestInput(t, map[string]string{"package.json": pkg}, "package.json")
	_, ok = Pnpm().Detect(in)
	assert.False(t, ok)
	id, ok = Npm().Detect(in)
	require.True(t, ok)
	assert.Equal(t, types.BuildNpm, id)
}

func TestNodeWorkspaceMembersShareRootLockfile(t *testing.T) {
	pkg := `{"name":"web"}`
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "apps/web"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "apps/web/package.json"), []byte(pkg), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "yarn.lock"), nil, 0o644))

	in := &detect.Input{
		RepoPath: root, Dir: "apps/web",
		Scan:     &types.ScanResult{Files: []string{"yarn.lock", "apps/web/package.json"}},
		Manifest: &types.ManifestCandidate{Path: "apps/web/package.json", Name: "package.json"},
	}
	_, ok := Yarn().Detect(in)
	assert.True(t, ok)
}

func TestNodeBuildTemplateResolvesEngineVersion(t *testing.T) {
	pkg := `{"name":"web","engines":{"node":">=20"},"scripts":{"build":"next build"}}`
	in := manifestInput(t, map[string]string{"package.json": pkg}, "package.json")

	tpl, err := Npm().BuildTemplate(testIndex(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"nodejs-20"}, tpl.BuildPackages)
	assert.Equal(t, []string{"nodejs-20"}, tpl.RuntimePackages)
	assert.Equal(t, []string{"npm ci", "npm run build"}, tpl.BuildCommands)
}

func TestNodeBuildTemplateReadsNvmrc(t *testing.T) {
	in := manifestInput(t, map[string]string{
		"package.json": `{"name":"web"}`,
		".nvmrc":       "v18.19.0\n",
	}, "package.json")

	tpl, err := Npm().BuildTemplate(testIndex(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"nodejs-18"}, tpl.BuildPackages)
}

func TestNodeWorkspacePatterns(t *testing.T) {
	ws := Npm().(detect.WorkspaceBuildSystem)

	in := manifestInput(t, map[string]string{
		"package.json": `{"name":"root","workspaces":["apps/*","packages/*"]}`,
	}, "package.json")
	patterns, err := ws.ParseWorkspacePatterns(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"apps/*", "packages/*"}, patterns)

	name, isApp, err := ws.ParsePackageMetadata("apps/web/package.json",
		[]byte(`{"name":"web","scripts":{"start":"next start"}}`))
	require.NoError(t, err)
	assert.Equal(t, "web", name)
	assert.True(t, isApp)

	_, isApp, err = ws.ParsePackageMetadata("packages/ui/package.json", []byte(`{"name":"ui"}`))
	require.NoError(t, err)
	assert.False(t, isApp)
}

func TestPnpmWorkspaceYAML(t *testing.T) {
	ws := Pnpm().(detect.WorkspaceBuildSystem)
	in := manifestInput(t, map[string]string{
		"package.json":        `{"name":"root"}`,
		"pnpm-workspace.yaml": "packages:\n  - apps/*\n  - packages/*\n",
	}, "package.json")

	patterns, err := ws.ParseWorkspacePatterns(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"apps/*", "packages/*"}, patterns)
}

func TestPoetryRequiresPoetrySection(t *testing.T) {
	plain := `[project]
name = "svc"
dependencies = ["fastapi>=0.100", "uvicorn[standard]"]
`
	in := manifestInput(t, map[string]string{"pyproject.toml": plain}, "pyproject.toml")
	_, ok := Poetry().Detect(in)
	assert.False(t, ok)
	id, ok := Pip().Detect(in)
	require.True(t, ok)
	assert.Equal(t, types.BuildPip, id)

	deps, err := Pip().ParseDependencies([]byte(plain), nil)
	require.NoError(t, err)
	require.Len(t, deps.Dependencies, 2)
	assert.Equal(t, "fastapi", deps.Dependencies[0].Name)
	assert.Equal(t, "uvicorn", deps.Dependencies[1].Name)

	poetryManifest := `[tool.poetry]
name = "svc"

[tool.poetry.dependencies]
python = "^3.12"
django = "^5.0"
`
	in = manifestInput(t, map[string]string{"pyproject.toml": poetryManifest}, "pyproject.toml")
	_, ok = Poetry().Detect(in)
	assert.True(t, ok)

	deps, err = Poetry().ParseDependencies([]byte(poetryManifest), nil)
	require.NoError(t, err)
	require.Len(t, deps.Dependencies, 1)
	assert.Equal(t, "django", deps.Dependencies[0].Name)
}

func TestPipRequirementsAndVersionResolution(t *testing.T) {
	reqs := "flask>=3.0\npsycopg2-binary==2.9.9\n# comment\n-r dev.txt\n"
	in := manifestInput(t, map[string]string{
		"requirements.txt": reqs,
		".python-version":  "3.12\n",
	}, "requirements.txt")

	deps, err := Pip().ParseDependencies([]byte(reqs), nil)
	require.NoError(t, err)
	require.Len(t, deps.Dependencies, 2)
	assert.Equal(t, "flask", deps.Dependencies[0].Name)

	tpl, err := Pip().BuildTemplate(testIndex(), in)
	require.NoError(t, err)
	assert.Contains(t, tpl.BuildPackages, "python-3.12")
	assert.Contains(t, tpl.BuildPackages, "py3.12-pip")
	assert.Equal(t, []string{"python-3.12"}, tpl.RuntimePackages)
}

func TestDotNetTemplate(t *testing.T) {
	manifest := `<Project Sdk="Microsoft.NET.Sdk.Web">
  <PropertyGroup><TargetFramework>net8.0</TargetFramework></PropertyGroup>
  <ItemGroup>
    <PackageReference Include="Swashbuckle.AspNetCore" Version="6.5.0" />
  </ItemGroup>
</Project>`
	in := manifestInput(t, map[string]string{"api.csproj": manifest}, "api.csproj")

	id, ok := DotNet().Detect(in)
	require.True(t, ok)
	assert.Equal(t, types.BuildDotNet, id)

	deps, err := DotNet().ParseDependencies([]byte(manifest), nil)
	require.NoError(t, err)
	require.Len(t, deps.Dependencies, 1)
	assert.Equal(t, "Swashbuckle.AspNetCore", deps.Dependencies[0].Name)

	tpl, err := DotNet().BuildTemplate(testIndex(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"dotnet-8-sdk"}, tpl.BuildPackages)
	assert.Equal(t, []string{"dotnet-8-runtime"}, tpl.RuntimePackages)
}

func TestBundlerAndMixAndComposer(t *testing.T) {
	gemfile := "source \"https://rubygems.org\"\nruby \"3.3.0\"\ngem \"rails\", \"~> 7.1\"\ngem \"pg\"\n"
	in := manifestInput(t, map[string]string{"Gemfile": gemfile}, "Gemfile")
	deps, err := Bundler().ParseDependencies([]byte(gemfile), nil)
	require.NoError(t, err)
	assert.Len(t, deps.Dependencies, 2)
	tpl, err := Bundler().BuildTemplate(testIndex(), in)
	require.NoError(t, err)
	assert.Contains(t, tpl.BuildPackages, "ruby-3.3")

	mixExs := `defp deps do
    [{:phoenix, "~> 1.7"}, {:ecto, "~> 3.11"}]
  end
  def project, do: [elixir: "~> 1.16"]`
	in = manifestInput(t, map[string]string{"mix.exs": mixExs}, "mix.exs")
	deps, err = Mix().ParseDependencies([]byte(mixExs), nil)
	require.NoError(t, err)
	assert.Len(t, deps.Dependencies, 2)
	assert.Equal(t, "phoenix", deps.Dependencies[0].Name)
	tpl, err = Mix().BuildTemplate(testIndex(), in)
	require.NoError(t, err)
	assert.Contains(t, tpl.BuildPackages, "elixir-1.16")

	composerJSON := `{"require":{"php":"^8.3","laravel/framework":"^11.0","ext-gd":"*"}}`
	in = manifestInput(t, map[string]string{"composer.json": composerJSON}, "composer.json")
	deps, err = Composer().ParseDependencies([]byte(composerJSON), nil)
	require.NoError(t, err)
	require.Len(t, deps.Dependencies, 1)
	assert.Equal(t, "laravel/framework", deps.Dependencies[0].Name)
	tpl, err = Composer().BuildTemplate(testIndex(), in)
	require.NoError(t, err)
	assert.Contains(t, tpl.BuildPackages, "php-8.3")
}
