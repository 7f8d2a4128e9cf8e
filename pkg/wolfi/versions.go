package wolfi

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// parseLoose parses partial versions ("21", "3.11") as well as full
// semantic versions.
func parseLoose(v string) (*semver.Version, bool) {
	sv, err := semver.NewVersion(strings.TrimSpace(v))
	if err != nil {
		return nil, false
	}
	return sv, true
}

// SortVersionsDesc orders version strings highest-first by semantic
// comparison, never lexicographically: 1.92 sorts above 1.81. Unparseable
// entries sink to the end.
func SortVersionsDesc(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		vi, oki := parseLoose(versions[i])
		vj, okj := parseLoose(versions[j])
		if oki != okj {
			return oki
		}
		if !oki {
			return versions[i] > versions[j]
		}
		return vi.GreaterThan(vj)
	})
}

// versionsFromNames extracts version suffixes of packages named
// "<prefix>-<version>" where the suffix starts with a digit, descending.
func versionsFromNames(names []string, prefix string) []string {
	lead := prefix + "-"
	var out []string
	for _, n := range names {
		if !strings.HasPrefix(n, lead) {
			continue
		}
		suffix := n[len(lead):]
		if suffix == "" || suffix[0] < '0' || suffix[0] > '9' {
			continue
		}
		if strings.Contains(suffix, "-") {
			// subpackages like nodejs-22-doc
			continue
		}
		out = append(out, suffix)
	}
	SortVersionsDesc(out)
	return out
}

// MatchVersion selects from available the version best satisfying the
// requested hint: exact major.minor first, then the highest with the same
// major. No same-major candidate means no match.
func MatchVersion(requested string, available []string) (string, bool) {
	req, ok := parseLoose(requested)
	if !ok || len(available) == 0 {
		return "", false
	}

	sorted := make([]string, len(available))
	copy(sorted, available)
	SortVersionsDesc(sorted)

	wantMinor := strings.Contains(strings.TrimSpace(requested), ".")
	var sameMajor string
	for _, v := range sorted {
		sv, ok := parseLoose(v)
		if !ok || sv.Major() != req.Major() {
			continue
		}
		if wantMinor && sv.Minor() == req.Minor() {
			return v, true
		}
		if sameMajor == "" {
			sameMajor = v
		}
	}
	if sameMajor != "" {
		return sameMajor, true
	}
	return "", false
}
