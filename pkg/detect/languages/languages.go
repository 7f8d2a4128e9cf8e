// Package languages holds the known language detectors. Each detector
// counts source files by extension and can recognize a language configured
// purely through its build manifest (a pom.xml with no .java files yet is
// still a Java project).
package languages

import (
	"path"
	"strings"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
)

// language is the shared implementation; the per-language constructors
// below configure it.
type language struct {
	id            types.LanguageID
	extensions    []string
	frameworks    []types.FrameworkID
	manifestNames []string // manifests that configure this language even with zero files
	versionFn     func(manifest []byte) (string, bool)
}

func (l *language) ID() types.LanguageID                     { return l.id }
func (l *language) FileExtensions() []string                 { return l.extensions }
func (l *language) CompatibleFrameworks() []types.FrameworkID { return l.frameworks }

func (l *language) Detect(in *detect.Input) (*types.LanguageUsage, bool) {
	count := 0
	for _, f := range in.Files() {
		ext := strings.TrimPrefix(path.Ext(f), ".")
		for _, e := range l.extensions {
			if ext == e {
				count++
				break
			}
		}
	}
	if count > 0 {
		return &types.LanguageUsage{Language: l.id, FileCount: count}, true
	}
	if in.Manifest != nil {
		for _, name := range l.manifestNames {
			if in.Manifest.Name == name {
				return &types.LanguageUsage{Language: l.id, FileCount: 0}, true
			}
		}
	}
	return nil, false
}

func (l *language) DetectVersion(manifest []byte) (string, bool) {
	if l.versionFn == nil || len(manifest) == 0 {
		return "", false
	}
	return l.versionFn(manifest)
}

// All returns the known language detectors in registry order. Order is an
// observable tie-break: Java precedes Kotlin, JavaScript precedes
// TypeScript.
func All() []detect.Language {
	return []detect.Language{
		Rust(), Java(), Kotlin(), JavaScript(), TypeScript(), Python(),
		Go(), CSharp(), FSharp(), Ruby(), PHP(), Cpp(), Elixir(),
	}
}

func Rust() detect.Language {
	return &language{
		id:            types.LangRust,
		extensions:    []string{"rs"},
		manifestNames: []string{"Cargo.toml"},
		versionFn:     rustVersion,
	}
}

func Java() detect.Language {
	return &language{
		id:            types.LangJava,
		extensions:    []string{"java"},
		frameworks:    []types.FrameworkID{types.FwSpringBoot, types.FwQuarkus, types.FwMicronaut},
		manifestNames: []string{"pom.xml", "build.gradle"},
		versionFn:     javaVersion,
	}
}

func Kotlin() detect.Language {
	return &language{
		id:            types.LangKotlin,
		extensions:    []string{"kt", "kts"},
		frameworks:    []types.FrameworkID{types.FwSpringBoot, types.FwKtor, types.FwQuarkus, types.FwMicronaut},
		manifestNames: []string{"build.gradle.kts"},
		versionFn:     javaVersion,
	}
}

func JavaScript() detect.Language {
	return &language{
		id:            types.LangJavaScript,
		extensions:    []string{"js", "jsx", "mjs", "cjs"},
		frameworks:    []types.FrameworkID{types.FwExpress, types.FwNextJs, types.FwNestJs, types.FwFastify},
		manifestNames: []string{"package.json"},
		versionFn:     nodeVersion,
	}
}

func TypeScript() detect.Language {
	return &language{
		id:         types.LangTypeScript,
		extensions: []string{"ts", "tsx", "mts", "cts"},
		frameworks: []types.FrameworkID{types.FwExpress, types.FwNextJs, types.FwNestJs, types.FwFastify},
		versionFn:  nodeVersion,
	}
}

func Python() detect.Language {
	return &language{
		id:            types.LangPython,
		extensions:    []string{"py"},
		frameworks:    []types.FrameworkID{types.FwDjango, types.FwFlask, types.FwFastAPI},
		manifestNames: []string{"pyproject.toml", "requirements.txt", "Pipfile"},
		versionFn:     pythonVersion,
	}
}

func Go() detect.Language {
	return &language{
		id:            types.LangGo,
		extensions:    []string{"go"},
		frameworks:    []types.FrameworkID{types.FwGin, types.FwEcho},
		manifestNames: []string{"go.mod"},
		versionFn:     goVersion,
	}
}

func CSharp() detect.Language {
	return &language{
		id:         types.LangCSharp,
		extensions: []string{"cs"},
		frameworks: []types.FrameworkID{types.FwAspNetCore},
		versionFn:  dotnetVersion,
	}
}

func FSharp() detect.Language {
	return &language{
		id:         types.LangFSharp,
		extensions: []string{"fs", "fsx"},
		frameworks: []types.FrameworkID{types.FwAspNetCore},
		versionFn:  dotnetVersion,
	}
}

func Ruby() detect.Language {
	return &language{
		id:            types.LangRuby,
		extensions:    []string{"rb"},
		frameworks:    []types.FrameworkID{types.FwRails, types.FwSinatra},
		manifestNames: []string{"Gemfile"},
		versionFn:     rubyVersion,
	}
}

func PHP() detect.Language {
	return &language{
		id:            types.LangPHP,
		extensions:    []string{"php"},
		frameworks:    []types.FrameworkID{types.FwLaravel, types.FwSymfony},
		manifestNames: []string{"composer.json"},
		versionFn:     phpVersion,
	}
}

func Cpp() detect.Language {
	return &language{
		id:            types.LangCpp,
		extensions:    []string{"cpp", "cc", "cxx", "hpp", "h"},
		manifestNames: []string{"CMakeLists.txt"},
	}
}

func Elixir() detect.Language {
	return &language{
		id:            types.LangElixir,
		extensions:    []string{"ex", "exs"},
		frameworks:    []types.FrameworkID{types.FwPhoenix},
		manifestNames: []string{"mix.exs"},
		versionFn:     elixirVersion,
	}
}
