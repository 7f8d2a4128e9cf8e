package schema

import (
	"fmt"
	"regexp"
	"strings"

	"unibuild/pkg/errdefs"
	"unibuild/pkg/wolfi"
)

var imageRefRe = regexp.MustCompile(`^[a-z0-9]+([._\-/:][a-z0-9]+)*(:[\w.\-]+)?$`)

// Validate checks an assembled document before emission: required fields,
// a well-formed base image, and every package present in the index. A
// missing package fails with the closest known name as a suggestion.
func Validate(doc *UniversalBuild, idx wolfi.Index) error {
	const stage = "assemble"

	if doc.Version != Version {
		return errdefs.New(errdefs.KindValidation, stage, "schema version must be %q, got %q", Version, doc.Version)
	}
	if doc.Metadata.ProjectName == "" {
		return errdefs.New(errdefs.KindValidation, stage, "metadata.project_name is required")
	}
	if doc.Metadata.Language == "" {
		return errdefs.New(errdefs.KindValidation, stage, "metadata.language is required")
	}
	if doc.Metadata.BuildSystem == "" {
		return errdefs.New(errdefs.KindValidation, stage, "metadata.build_system is required")
	}
	if doc.Metadata.Runtime == "" {
		return errdefs.New(errdefs.KindValidation, stage, "metadata.runtime is required")
	}
	if doc.Runtime.Base == "" || !imageRefRe.MatchString(doc.Runtime.Base) {
		return errdefs.New(errdefs.KindValidation, stage, "malformed runtime base image %q", doc.Runtime.Base)
	}
	if doc.Runtime.Entrypoint == "" {
		return errdefs.New(errdefs.KindValidation, stage, "runtime.entrypoint is required")
	}
	if doc.Runtime.Port < 0 || doc.Runtime.Port > 65535 {
		return errdefs.New(errdefs.KindValidation, stage, "runtime.port %d out of range", doc.Runtime.Port)
	}

	for _, group := range []struct {
		field    string
		packages []string
	}{
		{"build.packages", doc.Build.Packages},
		{"runtime.packages", doc.Runtime.Packages},
	} {
		for _, pkg := range group.packages {
			if idx.HasPackage(pkg) {
				continue
			}
			err := errdefs.New(errdefs.KindValidation, stage,
				"%s: package %q not found in the Wolfi index", group.field, pkg)
			if suggestion, ok := wolfi.Suggest(idx, pkg); ok {
				err = err.WithSuggestion(fmt.Sprintf("did you mean %q?", suggestion))
			}
			return err
		}
	}
	return nil
}

// ProjectNameFromPath derives a fallback project name from a package path.
func ProjectNameFromPath(path string) string {
	path = strings.Trim(path, "/.")
	if path == "" {
		return "app"
	}
	parts := strings.Split(path, "/")
	return parts[len(parts)-1]
}
