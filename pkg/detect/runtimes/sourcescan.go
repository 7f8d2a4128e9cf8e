package runtimes

import (
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
)

const (
	maxScanFiles    = 400
	maxScanFileSize = 256 * 1024
)

// healthRouteRe matches route string literals that look like health
// endpoints, across ecosystems.
var healthRouteRe = regexp.MustCompile(`["'](/(?:healthz|health|livez|readyz|up|ping|actuator/health|q/health)(?:/[\w-]+)?)["']`)

// scanFindings is what a source sweep discovered for one service.
type scanFindings struct {
	port    int
	envVars []string
	health  string
}

// scanSource sweeps the service's source files with the runtime's port and
// env regexes. The first port hit wins; env vars accumulate and dedupe.
func scanSource(in *detect.Input, exts []string, portRes, envRes []*regexp.Regexp) scanFindings {
	var out scanFindings
	envSeen := make(map[string]bool)

	files := in.Files()
	scanned := 0
	for _, rel := range files {
		if scanned >= maxScanFiles {
			break
		}
		ext := strings.TrimPrefix(path.Ext(rel), ".")
		keep := false
		for _, e := range exts {
			if ext == e {
				keep = true
				break
			}
		}
		if !keep {
			continue
		}
		data, err := os.ReadFile(filepath.Join(in.RepoPath, filepath.FromSlash(rel)))
		if err != nil || len(data) > maxScanFileSize {
			continue
		}
		scanned++
		content := string(data)

		if out.port == 0 {
			for _, re := range portRes {
				if m := re.FindStringSubmatch(content); m != nil {
					if port, err := strconv.Atoi(m[1]); err == nil && port > 0 && port < 65536 {
						out.port = port
						break
					}
				}
			}
		}
		for _, re := range envRes {
			for _, m := range re.FindAllStringSubmatch(content, -1) {
				if !envSeen[m[1]] {
					envSeen[m[1]] = true
					out.envVars = append(out.envVars, m[1])
				}
			}
		}
		if out.health == "" {
			if m := healthRouteRe.FindStringSubmatch(content); m != nil {
				out.health = m[1]
			}
		}
	}
	sort.Strings(out.envVars)
	return out
}

// frameworkConfig applies the framework's own config files. Parsed config
// ranks below explicit source findings and above framework defaults.
func frameworkConfig(in *detect.Input, fw detect.Framework) *types.FrameworkConfig {
	if fw == nil {
		return nil
	}
	for _, rel := range fw.ConfigFiles() {
		full := filepath.Join(in.RepoPath, filepath.FromSlash(in.Dir), filepath.FromSlash(rel))
		data, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		if cfg, ok := fw.ParseConfig(rel, data); ok {
			return cfg
		}
	}
	return nil
}

// merge layers findings, parsed config and framework defaults into the
// final RuntimeConfig.
func merge(found scanFindings, cfg *types.FrameworkConfig, fw detect.Framework, entrypoint string) *types.RuntimeConfig {
	rc := &types.RuntimeConfig{
		Entrypoint: entrypoint,
		Port:       found.port,
		EnvVars:    found.envVars,
	}
	if found.health != "" {
		rc.Health = &types.HealthCheck{Endpoint: found.health}
	}

	if cfg != nil {
		if rc.Port == 0 && cfg.Port != 0 {
			rc.Port = cfg.Port
		}
		if rc.Health == nil && cfg.HealthEndpoint != "" {
			rc.Health = &types.HealthCheck{Endpoint: cfg.HealthEndpoint}
		}
		rc.EnvVars = mergeEnv(rc.EnvVars, cfg.EnvVars)
	}

	if fw != nil {
		if rc.Port == 0 && len(fw.DefaultPorts()) > 0 {
			rc.Port = fw.DefaultPorts()[0]
		}
		if rc.Health == nil && len(fw.HealthEndpoints()) > 0 {
			rc.Health = &types.HealthCheck{Endpoint: fw.HealthEndpoints()[0]}
		}
	}
	return rc
}

func mergeEnv(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	out := append([]string{}, a...)
	for _, v := range a {
		seen[v] = true
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// firstExisting returns the first candidate present in the service dir.
func firstExisting(in *detect.Input, candidates []string) string {
	for _, c := range candidates {
		rel := c
		if in.Dir != "." && in.Dir != "" {
			rel = in.Dir + "/" + c
		}
		if in.Scan != nil && in.Scan.HasFile(rel) {
			return c
		}
	}
	return ""
}

// nativeDepsFromManifest maps well-known manifest dependencies to the
// native packages they need at runtime.
func nativeDepsFromManifest(manifest []byte, table map[string]string) []string {
	content := string(manifest)
	var out []string
	seen := make(map[string]bool)
	for needle, pkg := range table {
		if strings.Contains(content, needle) && !seen[pkg] {
			seen[pkg] = true
			out = append(out, pkg)
		}
	}
	sort.Strings(out)
	return out
}
