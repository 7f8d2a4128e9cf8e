// Package frameworks holds the known framework detectors. A framework is
// recognized from parsed dependencies via ecosystem-tagged patterns; each
// detector also knows its default port, health endpoint, env-var idioms
// and config files.
package frameworks

import (
	"regexp"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
)

// Pattern specificity: an exact coordinate pins the framework; a regex
// only suggests it.
const (
	specificityExact = 1.0
	specificityRegex = 0.5
)

type framework struct {
	id           types.FrameworkID
	languages    []types.LanguageID
	buildSystems []types.BuildSystemID
	patterns     []types.DependencyPattern
	ports        []int
	health       []string
	envPatterns  []*regexp.Regexp
	configFiles  []string
	configFn     func(path string, content []byte) (*types.FrameworkConfig, bool)
}

func (f *framework) ID() types.FrameworkID                        { return f.id }
func (f *framework) CompatibleLanguages() []types.LanguageID      { return f.languages }
func (f *framework) CompatibleBuildSystems() []types.BuildSystemID { return f.buildSystems }
func (f *framework) DependencyPatterns() []types.DependencyPattern { return f.patterns }
func (f *framework) DefaultPorts() []int                          { return f.ports }
func (f *framework) HealthEndpoints() []string                    { return f.health }
func (f *framework) EnvVarPatterns() []*regexp.Regexp             { return f.envPatterns }
func (f *framework) ConfigFiles() []string                        { return f.configFiles }

func (f *framework) Detect(deps *types.DependencyInfo) (*types.FrameworkUsage, bool) {
	if deps == nil {
		return nil, false
	}
	var best *types.FrameworkUsage
	for _, p := range f.patterns {
		specificity := specificityExact
		var matched bool
		if p.Ecosystem == types.EcosystemRegex {
			specificity = specificityRegex
			re, err := regexp.Compile(p.Pattern)
			if err != nil {
				continue
			}
			for _, d := range deps.Dependencies {
				if re.MatchString(d.Name) {
					matched = true
					break
				}
			}
		} else {
			for _, d := range deps.Dependencies {
				if d.Ecosystem == p.Ecosystem && d.Name == p.Pattern {
					matched = true
					break
				}
			}
		}
		if !matched {
			continue
		}
		usage := &types.FrameworkUsage{Framework: f.id, Confidence: p.Confidence, Specificity: specificity}
		if best == nil || usage.Score() > best.Score() {
			best = usage
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

func (f *framework) ParseConfig(path string, content []byte) (*types.FrameworkConfig, bool) {
	if f.configFn == nil {
		return nil, false
	}
	return f.configFn(path, content)
}

func maven(pattern string, confidence float64) types.DependencyPattern {
	return types.DependencyPattern{Ecosystem: types.EcosystemMaven, Pattern: pattern, Confidence: confidence}
}
func npm(pattern string, confidence float64) types.DependencyPattern {
	return types.DependencyPattern{Ecosystem: types.EcosystemNpm, Pattern: pattern, Confidence: confidence}
}
func pypi(pattern string, confidence float64) types.DependencyPattern {
	return types.DependencyPattern{Ecosystem: types.EcosystemPyPI, Pattern: pattern, Confidence: confidence}
}
func gem(pattern string, confidence float64) types.DependencyPattern {
	return types.DependencyPattern{Ecosystem: types.EcosystemGem, Pattern: pattern, Confidence: confidence}
}
func gopkg(pattern string, confidence float64) types.DependencyPattern {
	return types.DependencyPattern{Ecosystem: types.EcosystemGoPkg, Pattern: pattern, Confidence: confidence}
}
func nuget(pattern string, confidence float64) types.DependencyPattern {
	return types.DependencyPattern{Ecosystem: types.EcosystemNuget, Pattern: pattern, Confidence: confidence}
}
func hex(pattern string, confidence float64) types.DependencyPattern {
	return types.DependencyPattern{Ecosystem: types.EcosystemHex, Pattern: pattern, Confidence: confidence}
}
func packagist(pattern string, confidence float64) types.DependencyPattern {
	return types.DependencyPattern{Ecosystem: types.EcosystemPacky, Pattern: pattern, Confidence: confidence}
}
func regex(pattern string, confidence float64) types.DependencyPattern {
	return types.DependencyPattern{Ecosystem: types.EcosystemRegex, Pattern: pattern, Confidence: confidence}
}

var (
	jsEnvRe     = regexp.MustCompile(`process\.env\.([A-Z][A-Z0-9_]*)`)
	pyEnvRe     = regexp.MustCompile(`os\.environ(?:\.get)?[(\[]['"]([A-Z][A-Z0-9_]*)['"]`)
	javaEnvRe   = regexp.MustCompile(`System\.getenv\("([A-Z][A-Z0-9_]*)"\)`)
	rubyEnvRe   = regexp.MustCompile(`ENV\[['"]([A-Z][A-Z0-9_]*)['"]\]`)
	phpEnvRe    = regexp.MustCompile(`\$_ENV\[['"]([A-Z][A-Z0-9_]*)['"]\]`)
	elixirEnvRe = regexp.MustCompile(`System\.get_env\("([A-Z][A-Z0-9_]*)"\)`)
	goEnvRe     = regexp.MustCompile(`os\.Getenv\("([A-Z][A-Z0-9_]*)"\)`)
	csEnvRe     = regexp.MustCompile(`Environment\.GetEnvironmentVariable\("([A-Z][A-Z0-9_]*)"\)`)
)

// All returns the known framework detectors in registry order.
func All() []detect.Framework {
	return []detect.Framework{
		SpringBoot(), Quarkus(), Micronaut(), Ktor(),
		Express(), NextJs(), NestJs(), Fastify(),
		Django(), Flask(), FastAPI(),
		Rails(), Sinatra(), Laravel(), Symfony(),
		Gin(), Echo(), AspNetCore(), Phoenix(),
	}
}

func SpringBoot() detect.Framework {
	return &framework{
		id:           types.FwSpringBoot,
		languages:    []types.LanguageID{types.LangJava, types.LangKotlin},
		buildSystems: []types.BuildSystemID{types.BuildMaven, types.BuildGradle},
		patterns: []types.DependencyPattern{
			maven("org.springframework.boot:spring-boot-starter-web", 1.0),
			maven("org.springframework.boot:spring-boot-starter-webflux", 1.0),
			maven("org.springframework.boot:spring-boot-starter", 0.9),
			regex(`^org\.springframework\.boot:`, 0.8),
		},
		ports:       []int{8080},
		health:      []string{"/actuator/health"},
		envPatterns: []*regexp.Regexp{javaEnvRe},
		configFiles: []string{
			"application.properties", "application.yml", "application.yaml",
			"src/main/resources/application.properties",
			"src/main/resources/application.yml",
			"src/main/resources/application.yaml",
		},
		configFn: parseSpringConfig,
	}
}

func Quarkus() detect.Framework {
	return &framework{
		id:           types.FwQuarkus,
		languages:    []types.LanguageID{types.LangJava, types.LangKotlin},
		buildSystems: []types.BuildSystemID{types.BuildMaven, types.BuildGradle},
		patterns: []types.DependencyPattern{
			maven("io.quarkus:quarkus-resteasy-reactive", 1.0),
			maven("io.quarkus:quarkus-rest", 1.0),
			regex(`^io\.quarkus:`, 0.9),
		},
		ports:       []int{8080},
		health:      []string{"/q/health"},
		envPatterns: []*regexp.Regexp{javaEnvRe},
		configFiles: []string{"application.properties", "src/main/resources/application.properties"},
		configFn:    parseQuarkusConfig,
	}
}

func Micronaut() detect.Framework {
	return &framework{
		id:           types.FwMicronaut,
		languages:    []types.LanguageID{types.LangJava, types.LangKotlin},
		buildSystems: []types.BuildSystemID{types.BuildMaven, types.BuildGradle},
		patterns: []types.DependencyPattern{
			maven("io.micronaut:micronaut-http-server-netty", 1.0),
			regex(`^io\.micronaut`, 0.9),
		},
		ports:       []int{8080},
		health:      []string{"/health"},
		envPatterns: []*regexp.Regexp{javaEnvRe},
	}
}

func Ktor() detect.Framework {
	return &framework{
		id:           types.FwKtor,
		languages:    []types.LanguageID{types.LangKotlin},
		buildSystems: []types.BuildSystemID{types.BuildGradle, types.BuildMaven},
		patterns: []types.DependencyPattern{
			maven("io.ktor:ktor-server-netty", 1.0),
			regex(`^io\.ktor:ktor-server`, 0.9),
		},
		ports:       []int{8080},
		envPatterns: []*regexp.Regexp{javaEnvRe},
	}
}

func Express() detect.Framework {
	return &framework{
		id:           types.FwExpress,
		languages:    []types.LanguageID{types.LangJavaScript, types.LangTypeScript},
		buildSystems: []types.BuildSystemID{types.BuildNpm, types.BuildYarn, types.BuildPnpm, types.BuildBun},
		patterns:     []types.DependencyPattern{npm("express", 0.9)},
		ports:        []int{3000},
		envPatterns:  []*regexp.Regexp{jsEnvRe},
	}
}

func NextJs() detect.Framework {
	return &framework{
		id:           types.FwNextJs,
		languages:    []types.LanguageID{types.LangJavaScript, types.LangTypeScript},
		buildSystems: []types.BuildSystemID{types.BuildNpm, types.BuildYarn, types.BuildPnpm, types.BuildBun},
		patterns:     []types.DependencyPattern{npm("next", 1.0)},
		ports:        []int{3000},
		health:       []string{"/api/health"},
		envPatterns:  []*regexp.Regexp{jsEnvRe},
		configFiles:  []string{"next.config.js", "next.config.mjs", "next.config.ts"},
	}
}

func NestJs() detect.Framework {
	return &framework{
		id:           types.FwNestJs,
		languages:    []types.LanguageID{types.LangTypeScript, types.LangJavaScript},
		buildSystems: []types.BuildSystemID{types.BuildNpm, types.BuildYarn, types.BuildPnpm, types.BuildBun},
		patterns:     []types.DependencyPattern{npm("@nestjs/core", 1.0)},
		ports:        []int{3000},
		envPatterns:  []*regexp.Regexp{jsEnvRe},
	}
}

func Fastify() detect.Framework {
	return &framework{
		id:           types.FwFastify,
		languages:    []types.LanguageID{types.LangJavaScript, types.LangTypeScript},
		buildSystems: []types.BuildSystemID{types.BuildNpm, types.BuildYarn, types.BuildPnpm, types.BuildBun},
		patterns:     []types.DependencyPattern{npm("fastify", 1.0)},
		ports:        []int{3000},
		envPatterns:  []*regexp.Regexp{jsEnvRe},
	}
}

func Django() detect.Framework {
	return &framework{
		id:           types.FwDjango,
		languages:    []types.LanguageID{types.LangPython},
		buildSystems: []types.BuildSystemID{types.BuildPip, types.BuildPoetry, types.BuildPipenv},
		patterns:     []types.DependencyPattern{pypi("django", 1.0)},
		ports:        []int{8000},
		envPatterns:  []*regexp.Regexp{pyEnvRe},
		configFiles:  []string{"manage.py"},
	}
}

func Flask() detect.Framework {
	return &framework{
		id:           types.FwFlask,
		languages:    []types.LanguageID{types.LangPython},
		buildSystems: []types.BuildSystemID{types.BuildPip, types.BuildPoetry, types.BuildPipenv},
		patterns:     []types.DependencyPattern{pypi("flask", 1.0)},
		ports:        []int{5000},
		envPatterns:  []*regexp.Regexp{pyEnvRe},
	}
}

func FastAPI() detect.Framework {
	return &framework{
		id:           types.FwFastAPI,
		languages:    []types.LanguageID{types.LangPython},
		buildSystems: []types.BuildSystemID{types.BuildPip, types.BuildPoetry, types.BuildPipenv},
		patterns:     []types.DependencyPattern{pypi("fastapi", 1.0)},
		ports:        []int{8000},
		health:       []string{"/health"},
		envPatterns:  []*regexp.Regexp{pyEnvRe},
	}
}

func Rails() detect.Framework {
	return &framework{
		id:           types.FwRails,
		languages:    []types.LanguageID{types.LangRuby},
		buildSystems: []types.BuildSystemID{types.BuildBundler},
		patterns:     []types.DependencyPattern{gem("rails", 1.0)},
		ports:        []int{3000},
		health:       []string{"/up"},
		envPatterns:  []*regexp.Regexp{rubyEnvRe},
		configFiles:  []string{"config/puma.rb"},
		configFn:     parsePumaConfig,
	}
}

func Sinatra() detect.Framework {
	return &framework{
		id:           types.FwSinatra,
		languages:    []types.LanguageID{types.LangRuby},
		buildSystems: []types.BuildSystemID{types.BuildBundler},
		patterns:     []types.DependencyPattern{gem("sinatra", 1.0)},
		ports:        []int{4567},
		envPatterns:  []*regexp.Regexp{rubyEnvRe},
	}
}

func Laravel() detect.Framework {
	return &framework{
		id:           types.FwLaravel,
		languages:    []types.LanguageID{types.LangPHP},
		buildSystems: []types.BuildSystemID{types.BuildComposer},
		patterns:     []types.DependencyPattern{packagist("laravel/framework", 1.0)},
		ports:        []int{8000},
		health:       []string{"/up"},
		envPatterns:  []*regexp.Regexp{phpEnvRe},
	}
}

func Symfony() detect.Framework {
	return &framework{
		id:           types.FwSymfony,
		languages:    []types.LanguageID{types.LangPHP},
		buildSystems: []types.BuildSystemID{types.BuildComposer},
		patterns: []types.DependencyPattern{
			packagist("symfony/framework-bundle", 1.0),
			regex(`^symfony/`, 0.8),
		},
		ports:       []int{8000},
		envPatterns: []*regexp.Regexp{phpEnvRe},
	}
}

func Gin() detect.Framework {
	return &framework{
		id:           types.FwGin,
		languages:    []types.LanguageID{types.LangGo},
		buildSystems: []types.BuildSystemID{types.BuildGoMod},
		patterns:     []types.DependencyPattern{gopkg("github.com/gin-gonic/gin", 1.0)},
		ports:        []int{8080},
		envPatterns:  []*regexp.Regexp{goEnvRe},
	}
}

func Echo() detect.Framework {
	return &framework{
		id:           types.FwEcho,
		languages:    []types.LanguageID{types.LangGo},
		buildSystems: []types.BuildSystemID{types.BuildGoMod},
		patterns: []types.DependencyPattern{
			gopkg("github.com/labstack/echo/v4", 1.0),
			gopkg("github.com/labstack/echo", 0.9),
		},
		ports:       []int{8080},
		envPatterns: []*regexp.Regexp{goEnvRe},
	}
}

func AspNetCore() detect.Framework {
	return &framework{
		id:           types.FwAspNetCore,
		languages:    []types.LanguageID{types.LangCSharp, types.LangFSharp},
		buildSystems: []types.BuildSystemID{types.BuildDotNet},
		patterns: []types.DependencyPattern{
			nuget("Microsoft.AspNetCore.OpenApi", 0.9),
			nuget("Swashbuckle.AspNetCore", 0.8),
			regex(`^Microsoft\.AspNetCore`, 0.9),
		},
		ports:       []int{8080},
		health:      []string{"/healthz"},
		envPatterns: []*regexp.Regexp{csEnvRe},
		configFiles: []string{"appsettings.json"},
		configFn:    parseAppSettings,
	}
}

func Phoenix() detect.Framework {
	return &framework{
		id:           types.FwPhoenix,
		languages:    []types.LanguageID{types.LangElixir},
		buildSystems: []types.BuildSystemID{types.BuildMix},
		patterns:     []types.DependencyPattern{hex("phoenix", 1.0)},
		ports:        []int{4000},
		envPatterns:  []*regexp.Regexp{elixirEnvRe},
	}
}
