package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unibuild/pkg/errdefs"
	"unibuild/pkg/types"
	"unibuild/pkg/wolfi"
)

func validDoc() *UniversalBuild {
	return &UniversalBuild{
		Version: Version,
		Metadata: Metadata{
			ProjectName: "x",
			Language:    "rust",
			BuildSystem: "cargo",
			Runtime:     "native",
		},
		Build: BuildStage{
			Packages:  []string{"rust", "build-base"},
			Commands:  []string{"cargo build --release"},
			Artifacts: []string{"target/release/x"},
			Cache:     []string{"target/"},
		},
		Runtime: RuntimeStage{
			Base:       RuntimeBase,
			Packages:   []string{"glibc", "ca-certificates"},
			Entrypoint: "./target/release/x",
			Env:        []string{},
		},
	}
}

func testIndex() wolfi.Index {
	return wolfi.NewStaticIndex("rust", "build-base", "glibc", "ca-certificates")
}

func TestMarshalRoundTrip(t *testing.T) {
	doc := validDoc()
	doc.Runtime.Port = 8080
	doc.Runtime.Health = &types.HealthCheck{Endpoint: "/healthz"}

	data, err := doc.Marshal()
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	again, err := parsed.Marshal()
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestValidateAcceptsCompleteDocument(t *testing.T) {
	assert.NoError(t, Validate(validDoc(), testIndex()))
}

func TestValidateRequiredFields(t *testing.T) {
	mutations := map[string]func(*UniversalBuild){
		"version":     func(d *UniversalBuild) { d.Version = "2.0" },
		"name":        func(d *UniversalBuild) { d.Metadata.ProjectName = "" },
		"language":    func(d *UniversalBuild) { d.Metadata.Language = "" },
		"buildsystem": func(d *UniversalBuild) { d.Metadata.BuildSystem = "" },
		"runtime":     func(d *UniversalBuild) { d.Metadata.Runtime = "" },
		"base":        func(d *UniversalBuild) { d.Runtime.Base = "NOT AN IMAGE" },
		"entrypoint":  func(d *UniversalBuild) { d.Runtime.Entrypoint = "" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			doc := validDoc()
			mutate(doc)
			err := Validate(doc, testIndex())
			require.Error(t, err)
			assert.True(t, errdefs.IsKind(err, errdefs.KindValidation))
		})
	}
}

func TestValidateMissingPackageSuggests(t *testing.T) {
	doc := validDoc()
	doc.Build.Packages = []string{"rusty"}

	err := Validate(doc, testIndex())
	require.Error(t, err)
	var e *errdefs.Error
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Suggestion, "rust")
}

func TestProjectNameFromPath(t *testing.T) {
	assert.Equal(t, "app", ProjectNameFromPath("."))
	assert.Equal(t, "web", ProjectNameFromPath("apps/web"))
}
