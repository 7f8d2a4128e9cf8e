package frameworks

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"unibuild/pkg/types"
)

// parseSpringConfig reads server.port from application.properties /
// application.yml. No other key is read.
func parseSpringConfig(path string, content []byte) (*types.FrameworkConfig, bool) {
	if strings.HasSuffix(path, ".properties") {
		return parseProperties(content, "server.port")
	}

	var doc struct {
		Server struct {
			Port any `yaml:"port"`
		} `yaml:"server"`
	}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, false
	}
	port := coercePort(doc.Server.Port)
	if port == 0 {
		return nil, false
	}
	return &types.FrameworkConfig{Port: port}, true
}

// parseQuarkusConfig reads quarkus.http.port from application.properties.
func parseQuarkusConfig(_ string, content []byte) (*types.FrameworkConfig, bool) {
	return parseProperties(content, "quarkus.http.port")
}

func parseProperties(content []byte, key string) (*types.FrameworkConfig, bool) {
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, key) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, key))
		rest = strings.TrimSpace(strings.TrimLeft(rest, "=:"))
		if port, err := strconv.Atoi(rest); err == nil && port > 0 {
			return &types.FrameworkConfig{Port: port}, true
		}
	}
	return nil, false
}

var pumaPortRe = regexp.MustCompile(`(?m)^\s*port\s+(?:ENV\.fetch\("PORT"[^)]*\)\s*\{\s*)?(\d+)`)

// parsePumaConfig reads the port declaration from config/puma.rb.
func parsePumaConfig(_ string, content []byte) (*types.FrameworkConfig, bool) {
	if m := pumaPortRe.FindStringSubmatch(string(content)); m != nil {
		if port, err := strconv.Atoi(m[1]); err == nil {
			return &types.FrameworkConfig{Port: port}, true
		}
	}
	return nil, false
}

// parseAppSettings reads Kestrel endpoint URLs from appsettings.json.
func parseAppSettings(_ string, content []byte) (*types.FrameworkConfig, bool) {
	var doc struct {
		Kestrel struct {
			Endpoints map[string]struct {
				URL string `json:"Url"`
			} `json:"Endpoints"`
		} `json:"Kestrel"`
		URLs string `json:"Urls"`
	}
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, false
	}
	candidates := []string{doc.URLs}
	for _, ep := range doc.Kestrel.Endpoints {
		candidates = append(candidates, ep.URL)
	}
	for _, raw := range candidates {
		for _, one := range strings.Split(raw, ";") {
			if one == "" {
				continue
			}
			u, err := url.Parse(strings.ReplaceAll(one, "*", "localhost"))
			if err != nil {
				continue
			}
			if port, err := strconv.Atoi(u.Port()); err == nil && port > 0 {
				return &types.FrameworkConfig{Port: port}, true
			}
		}
	}
	return nil, false
}

func coercePort(v any) int {
	switch p := v.(type) {
	case int:
		return p
	case string:
		if n, err := strconv.Atoi(p); err == nil {
			return n
		}
	case float64:
		return int(p)
	}
	return 0
}
