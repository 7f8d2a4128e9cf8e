package types

import (
	"path"
	"sort"
	"strings"
)

// ManifestCandidate is a file claimed by a registered build system as
// indicating a buildable project.
type ManifestCandidate struct {
	Path     string `json:"path"`     // relative to repo root, forward slashes
	Name     string `json:"name"`     // basename
	Depth    int    `json:"depth"`    // directory depth from root; root files are 0
	Priority int    `json:"priority"` // lower is more authoritative
}

// Dir returns the directory the manifest lives in, relative to the repo
// root. Root-level manifests return ".".
func (m ManifestCandidate) Dir() string {
	d := path.Dir(m.Path)
	if d == "" {
		return "."
	}
	return d
}

// ScanResult is the outcome of walking the repository. It is built once by
// the scan phase and read-only afterwards.
type ScanResult struct {
	Files      []string            `json:"files"`      // relative paths, walk order
	Extensions map[string]int      `json:"extensions"` // extension (no dot) -> count
	Manifests  []ManifestCandidate `json:"manifests"`  // sorted, most authoritative first
}

// SortManifests orders candidates by ascending priority, then shorter path,
// then lexicographic path.
func SortManifests(ms []ManifestCandidate) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Priority != ms[j].Priority {
			return ms[i].Priority < ms[j].Priority
		}
		if len(ms[i].Path) != len(ms[j].Path) {
			return len(ms[i].Path) < len(ms[j].Path)
		}
		return ms[i].Path < ms[j].Path
	})
}

// PrimaryManifest returns the most authoritative candidate, if any.
func (s *ScanResult) PrimaryManifest() (ManifestCandidate, bool) {
	if len(s.Manifests) == 0 {
		return ManifestCandidate{}, false
	}
	return s.Manifests[0], true
}

// ManifestsIn returns the candidates whose directory equals dir (relative
// path, "." for root), preserving authority order.
func (s *ScanResult) ManifestsIn(dir string) []ManifestCandidate {
	dir = path.Clean(dir)
	var out []ManifestCandidate
	for _, m := range s.Manifests {
		if m.Dir() == dir {
			out = append(out, m)
		}
	}
	return out
}

// FilesUnder returns the scanned files located under dir ("." for the whole
// repository).
func (s *ScanResult) FilesUnder(dir string) []string {
	dir = path.Clean(dir)
	if dir == "." {
		return s.Files
	}
	prefix := dir + "/"
	var out []string
	for _, f := range s.Files {
		if strings.HasPrefix(f, prefix) {
			out = append(out, f)
		}
	}
	return out
}

// HasFile reports whether the exact relative path was scanned.
func (s *ScanResult) HasFile(rel string) bool {
	for _, f := range s.Files {
		if f == rel {
			return true
		}
	}
	return false
}
