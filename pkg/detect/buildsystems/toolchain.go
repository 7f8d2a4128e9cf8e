package buildsystems

import (
	"strings"

	"unibuild/pkg/detect"
	"unibuild/pkg/wolfi"
)

// versionFiles lists the adjacent files consulted per toolchain prefix
// when the manifest itself carries no hint.
var versionFiles = map[string][]string{
	"nodejs": {".nvmrc", ".node-version"},
	"python": {".python-version", "runtime.txt"},
	"ruby":   {".ruby-version"},
}

// adjacentVersionHint reads toolchain version files next to the manifest.
func adjacentVersionHint(in *detect.Input, prefix string) (string, bool) {
	for _, name := range versionFiles[prefix] {
		data, ok := readServiceFile(in, name)
		if !ok {
			continue
		}
		hint := strings.TrimSpace(string(data))
		// runtime.txt carries "python-3.11"-style values.
		hint = strings.TrimPrefix(hint, prefix+"-")
		hint = strings.TrimPrefix(hint, "v")
		if hint != "" {
			return hint, true
		}
	}
	return "", false
}

// resolveToolchain picks the versioned Wolfi package for a toolchain
// prefix: the available version matching the hint's major (and minor where
// present), else the highest available, else the bare prefix when the
// index knows no versioned packages.
func resolveToolchain(idx wolfi.Index, prefix, hint string) string {
	available := idx.GetVersions(prefix)
	if len(available) == 0 {
		return prefix
	}
	if hint != "" {
		if v, ok := wolfi.MatchVersion(hint, available); ok {
			return prefix + "-" + v
		}
	}
	return prefix + "-" + available[0]
}

// jreFor derives the runtime package from a versioned JDK package by the
// suffix rule: openjdk-21 -> openjdk-21-jre.
func jreFor(jdk string) string { return jdk + "-jre" }
