package types

// BuildTemplate is produced by a build system for one service: what to
// install, how to build, what to keep, what to cache. Package names are
// Wolfi package names, versioned where the toolchain is versioned.
type BuildTemplate struct {
	BuildPackages    []string `json:"build_packages"`
	RuntimePackages  []string `json:"runtime_packages"`
	BuildCommands    []string `json:"build_commands"`
	ArtifactPaths    []string `json:"artifact_paths"`
	CacheDirectories []string `json:"cache_directories"`
}

// HealthCheck is an HTTP health endpoint.
type HealthCheck struct {
	Endpoint string `json:"endpoint"`
}

// RuntimeConfig is the deterministically extracted runtime surface of a
// service. The zero value is a valid outcome: nothing discoverable.
type RuntimeConfig struct {
	Entrypoint string       `json:"entrypoint,omitempty"`
	Port       int          `json:"port,omitempty"`
	EnvVars    []string     `json:"env_vars,omitempty"`
	Health     *HealthCheck `json:"health,omitempty"`
	NativeDeps []string     `json:"native_deps,omitempty"`
}

// Empty reports whether nothing was discovered.
func (r *RuntimeConfig) Empty() bool {
	return r == nil || (r.Entrypoint == "" && r.Port == 0 && len(r.EnvVars) == 0 &&
		r.Health == nil && len(r.NativeDeps) == 0)
}

// FrameworkConfig is the result of parsing a framework's own config file
// (application.yaml, appsettings.json, …).
type FrameworkConfig struct {
	Port           int      `json:"port,omitempty"`
	EnvVars        []string `json:"env_vars,omitempty"`
	HealthEndpoint string   `json:"health_endpoint,omitempty"`
}

// ServiceAnalysis aggregates everything detected for one service.
type ServiceAnalysis struct {
	Package          Package        `json:"package"`
	Stack            Stack          `json:"stack"`
	BuildTemplate    *BuildTemplate `json:"build_template"`
	RuntimeConfig    *RuntimeConfig `json:"runtime_config"`
	CacheDirectories []string       `json:"cache_directories"`
}
