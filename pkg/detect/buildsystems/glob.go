package buildsystems

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// expandPattern expands a workspace member pattern beneath root to
// directories. Plain single-star globs go through filepath.Glob; a
// trailing "/**" or "/*" segment after a literal prefix enumerates
// subdirectories one level deep, which covers the patterns npm, pnpm and
// Cargo workspaces use in practice. No pack library offers doublestar
// globbing, so the bounded expansion lives here.
func expandPattern(root, pattern string) ([]string, error) {
	pattern = strings.TrimSuffix(strings.TrimSpace(pattern), "/")
	if pattern == "" {
		return nil, nil
	}

	if strings.HasSuffix(pattern, "/**") {
		pattern = strings.TrimSuffix(pattern, "/**") + "/*"
	}

	matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.IsDir() {
			dirs = append(dirs, m)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}
