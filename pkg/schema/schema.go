// Package schema defines the emitted universal-build document (stable
// schema 1.0) and its emission-time validation.
package schema

import (
	"encoding/json"

	"unibuild/pkg/types"
)

const (
	// Version is the stable schema version of every emitted document.
	Version = "1.0"
	// RuntimeBase is the hardcoded distroless final-stage base image.
	RuntimeBase = "cgr.dev/chainguard/static:latest"
	// BuildBase is the build-stage base image.
	BuildBase = "cgr.dev/chainguard/wolfi-base:latest"
)

// Metadata names the detected stack of one application.
type Metadata struct {
	ProjectName string `json:"project_name"`
	Language    string `json:"language"`
	BuildSystem string `json:"build_system"`
	Framework   string `json:"framework,omitempty"`
	Runtime     string `json:"runtime"`
}

// BuildStage describes how the application is built.
type BuildStage struct {
	Packages  []string `json:"packages"`
	Commands  []string `json:"commands"`
	Artifacts []string `json:"artifacts"`
	Cache     []string `json:"cache"`
}

// RuntimeStage describes the distroless final image.
type RuntimeStage struct {
	Base       string             `json:"base"`
	Packages   []string           `json:"packages"`
	Entrypoint string             `json:"entrypoint"`
	Port       int                `json:"port,omitempty"`
	Env        []string           `json:"env"`
	Health     *types.HealthCheck `json:"health,omitempty"`
}

// UniversalBuild is one emitted document; one per detected application.
type UniversalBuild struct {
	Version  string       `json:"version"`
	Metadata Metadata     `json:"metadata"`
	Build    BuildStage   `json:"build"`
	Runtime  RuntimeStage `json:"runtime"`
}

// Marshal serializes the document with the canonical field order and
// two-space indentation. Re-serializing a parsed document yields the
// original bytes.
func (u *UniversalBuild) Marshal() ([]byte, error) {
	return json.MarshalIndent(u, "", "  ")
}

// Parse reads a document back from its serialized form.
func Parse(data []byte) (*UniversalBuild, error) {
	var u UniversalBuild
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
