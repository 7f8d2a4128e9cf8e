package wolfi

import "github.com/agnivade/levenshtein"

// maxSuggestDistance bounds how far a fuzzy match may drift before it is
// noise rather than a typo.
const maxSuggestDistance = 3

// Suggest returns the closest known package name to the given one, for
// validation diagnostics when a package is missing from the index.
func Suggest(idx Index, name string) (string, bool) {
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, candidate := range idx.Names() {
		d := levenshtein.ComputeDistance(name, candidate)
		if d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best, best != ""
}
