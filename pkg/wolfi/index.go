// Package wolfi provides the package-presence oracle backed by the Wolfi
// APK index: package existence, versioned toolchain lookup, and semantic
// version matching. The oracle is a pure data source; interpreting version
// hints is the caller's job.
package wolfi

import "sort"

// Index is the oracle consumed by build-system detectors and emission
// validation.
type Index interface {
	// HasPackage reports whether the exact package name exists.
	HasPackage(name string) bool
	// GetVersions returns the version suffixes available for a versioned
	// toolchain prefix (e.g. "nodejs" -> ["22","20"]), descending
	// semantically.
	GetVersions(prefix string) []string
	// GetLatestVersion returns the highest available version suffix for the
	// prefix.
	GetLatestVersion(prefix string) (string, bool)
	// Names returns every known package name, unordered.
	Names() []string
}

// StaticIndex is an in-memory Index used in tests and offline runs.
type StaticIndex struct {
	names map[string]struct{}
}

// NewStaticIndex builds an index containing exactly the given names.
func NewStaticIndex(names ...string) *StaticIndex {
	idx := &StaticIndex{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		idx.names[n] = struct{}{}
	}
	return idx
}

func (s *StaticIndex) HasPackage(name string) bool {
	_, ok := s.names[name]
	return ok
}

func (s *StaticIndex) GetVersions(prefix string) []string {
	return versionsFromNames(s.Names(), prefix)
}

func (s *StaticIndex) GetLatestVersion(prefix string) (string, bool) {
	vs := s.GetVersions(prefix)
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func (s *StaticIndex) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
