// Package runtimes holds the known runtime detectors: one per execution
// environment family. A runtime contributes its baseline packages, the
// start command shape, and the deterministic runtime-config extraction
// (ports, env vars, health routes, native deps) — regex and manifest
// based, never LLM.
package runtimes

import (
	"regexp"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
)

type runtime struct {
	id         types.RuntimeID
	packages   []string
	startFn    func(entrypoint string) string
	extensions []string
	portRes    []*regexp.Regexp
	envRes     []*regexp.Regexp
	entries    []string          // entrypoint candidates, most specific first
	nativeMap  map[string]string // manifest needle -> native package
}

func (r *runtime) ID() types.RuntimeID        { return r.id }
func (r *runtime) RequiredPackages() []string { return r.packages }

func (r *runtime) StartCommand(entrypoint string) string {
	if r.startFn == nil {
		return entrypoint
	}
	return r.startFn(entrypoint)
}

func (r *runtime) TryExtract(in *detect.Input, fw detect.Framework) (*types.RuntimeConfig, bool) {
	if in == nil || in.Scan == nil {
		return nil, false
	}
	envRes := append([]*regexp.Regexp{}, r.envRes...)
	if fw != nil {
		envRes = append(envRes, fw.EnvVarPatterns()...)
	}
	found := scanSource(in, r.extensions, r.portRes, envRes)
	cfg := frameworkConfig(in, fw)
	entrypoint := firstExisting(in, r.entries)

	rc := merge(found, cfg, fw, entrypoint)
	rc.NativeDeps = nativeDepsFromManifest(in.ManifestContent, r.nativeMap)
	return rc, true
}

var (
	nodeListenRe   = regexp.MustCompile(`\.listen\(\s*(\d{2,5})`)
	nodeListenEnv  = regexp.MustCompile(`\.listen\(\s*process\.env\.\w+\s*(?:\|\||\?\?)\s*(\d{2,5})`)
	pyRunPortRe    = regexp.MustCompile(`(?:\.run|uvicorn\.run)\([^)]*port\s*=\s*(\d{2,5})`)
	pyBindRe       = regexp.MustCompile(`bind\s*=?\s*["'][\d.]+:(\d{2,5})["']`)
	jvmSocketRe    = regexp.MustCompile(`new\s+ServerSocket\(\s*(\d{2,5})`)
	jvmPortCallRe  = regexp.MustCompile(`(?:\.port|port\s*=)\s*\(?\s*(\d{2,5})`)
	rubyPortRe     = regexp.MustCompile(`set\s+:port\s*,\s*(\d{2,5})`)
	goListenRe     = regexp.MustCompile(`(?:ListenAndServe|\.Run|\.Start)\(\s*":(\d{2,5})"`)
	kestrelURLRe   = regexp.MustCompile(`UseUrls?\([^)]*:(\d{2,5})`)
	elixirPortRe   = regexp.MustCompile(`port:\s*(\d{2,5})`)
	phpServerRe    = regexp.MustCompile(`-S\s+[\d.]+:(\d{2,5})`)

	jsEnvRe     = regexp.MustCompile(`process\.env\.([A-Z][A-Z0-9_]*)`)
	pyEnvRe     = regexp.MustCompile(`os\.environ(?:\.get)?[(\[]['"]([A-Z][A-Z0-9_]*)['"]`)
	javaEnvRe   = regexp.MustCompile(`System\.getenv\("([A-Z][A-Z0-9_]*)"\)`)
	rubyEnvRe   = regexp.MustCompile(`ENV\[['"]([A-Z][A-Z0-9_]*)['"]\]`)
	phpEnvRe    = regexp.MustCompile(`\$_ENV\[['"]([A-Z][A-Z0-9_]*)['"]\]`)
	csEnvRe     = regexp.MustCompile(`Environment\.GetEnvironmentVariable\("([A-Z][A-Z0-9_]*)"\)`)
	elixirEnvRe = regexp.MustCompile(`System\.get_env\("([A-Z][A-Z0-9_]*)"\)`)
	goEnvRe     = regexp.MustCompile(`os\.Getenv\("([A-Z][A-Z0-9_]*)"\)`)
)

// All returns the known runtimes in registry order.
func All() []detect.Runtime {
	return []detect.Runtime{
		JVM(), Node(), Python(), Ruby(), PHP(), DotNet(), Beam(), Native(),
	}
}

func JVM() detect.Runtime {
	return &runtime{
		id:         types.RuntimeJVM,
		packages:   []string{"ca-certificates"},
		startFn:    func(entry string) string { return "java -jar " + entry },
		extensions: []string{"java", "kt"},
		portRes:    []*regexp.Regexp{jvmSocketRe, jvmPortCallRe},
		envRes:     []*regexp.Regexp{javaEnvRe},
		nativeMap: map[string]string{
			"netty-tcnative": "openssl",
			"sqlite-jdbc":    "sqlite-libs",
		},
	}
}

func Node() detect.Runtime {
	return &runtime{
		id:         types.RuntimeNode,
		packages:   []string{"ca-certificates"},
		startFn:    func(entry string) string { return "node " + entry },
		extensions: []string{"js", "mjs", "cjs", "ts", "tsx", "jsx"},
		portRes:    []*regexp.Regexp{nodeListenEnv, nodeListenRe},
		envRes:     []*regexp.Regexp{jsEnvRe},
		entries:    []string{"server.js", "index.js", "app.js", "src/index.js", "src/server.js", "src/main.js", "dist/main.js"},
		nativeMap: map[string]string{
			"\"sharp\"":     "vips",
			"\"canvas\"":    "cairo",
			"\"bcrypt\"":    "build-base",
			"\"sqlite3\"":   "sqlite-libs",
			"better-sqlite3": "sqlite-libs",
		},
	}
}

func Python() detect.Runtime {
	return &runtime{
		id:         types.RuntimePython,
		packages:   []string{"ca-certificates"},
		startFn:    func(entry string) string { return "python " + entry },
		extensions: []string{"py"},
		portRes:    []*regexp.Regexp{pyRunPortRe, pyBindRe},
		envRes:     []*regexp.Regexp{pyEnvRe},
		entries:    []string{"main.py", "app.py", "manage.py", "src/main.py", "wsgi.py", "asgi.py"},
		nativeMap: map[string]string{
			"psycopg2": "libpq",
			"psycopg":  "libpq",
			"mysqlclient": "mariadb-connector-c",
			"pillow":   "libjpeg-turbo",
			"lxml":     "libxml2",
			"cryptography": "openssl",
		},
	}
}

func Ruby() detect.Runtime {
	return &runtime{
		id:         types.RuntimeRuby,
		packages:   []string{"ca-certificates"},
		startFn:    func(entry string) string { return "bundle exec ruby " + entry },
		extensions: []string{"rb"},
		portRes:    []*regexp.Regexp{rubyPortRe},
		envRes:     []*regexp.Regexp{rubyEnvRe},
		entries:    []string{"config.ru", "app.rb", "main.rb"},
		nativeMap: map[string]string{
			"pg":      "libpq",
			"mysql2":  "mariadb-connector-c",
			"nokogiri": "libxml2",
		},
	}
}

func PHP() detect.Runtime {
	return &runtime{
		id:         types.RuntimePHP,
		packages:   []string{"ca-certificates"},
		startFn:    func(entry string) string { return "php " + entry },
		extensions: []string{"php"},
		portRes:    []*regexp.Regexp{phpServerRe},
		envRes:     []*regexp.Regexp{phpEnvRe},
		entries:    []string{"public/index.php", "index.php", "artisan"},
		nativeMap: map[string]string{
			"ext-gd":   "libgd",
			"ext-intl": "icu-libs",
		},
	}
}

func DotNet() detect.Runtime {
	return &runtime{
		id:         types.RuntimeDotNet,
		packages:   []string{"ca-certificates"},
		startFn:    func(entry string) string { return "dotnet " + entry },
		extensions: []string{"cs", "fs"},
		portRes:    []*regexp.Regexp{kestrelURLRe},
		envRes:     []*regexp.Regexp{csEnvRe},
	}
}

func Beam() detect.Runtime {
	return &runtime{
		id:         types.RuntimeBeam,
		packages:   []string{"ca-certificates", "libstdc++"},
		startFn:    func(entry string) string { return entry + " start" },
		extensions: []string{"ex", "exs"},
		portRes:    []*regexp.Regexp{elixirPortRe},
		envRes:     []*regexp.Regexp{elixirEnvRe},
	}
}

func Native() detect.Runtime {
	return &runtime{
		id:         types.RuntimeNative,
		packages:   []string{"glibc", "ca-certificates"},
		startFn:    func(entry string) string { return "./" + entry },
		extensions: []string{"go", "rs", "c", "cpp", "cc"},
		portRes:    []*regexp.Regexp{goListenRe},
		envRes:     []*regexp.Regexp{goEnvRe},
	}
}
