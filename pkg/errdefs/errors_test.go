package errdefs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindFatality(t *testing.T) {
	assert.True(t, KindScan.Fatal())
	assert.True(t, KindWorkspace.Fatal())
	assert.True(t, KindValidation.Fatal())
	assert.True(t, KindTimeout.Fatal())
	assert.False(t, KindNoBuildSystem.Fatal())
	assert.False(t, KindNoLanguage.Fatal())
	assert.False(t, KindLLMDeclined.Fatal())
}

func TestKindOfThroughWrapping(t *testing.T) {
	base := New(KindNoBuildSystem, "stack", "no build system matched")
	wrapped := fmt.Errorf("service failed: %w", base.ForService("apps/web"))

	assert.Equal(t, KindNoBuildSystem, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindNoBuildSystem))
	assert.False(t, IsFatal(wrapped))

	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.True(t, IsFatal(errors.New("plain")))
}

func TestErrorRendering(t *testing.T) {
	err := Wrap(KindScan, "scan", errors.New("permission denied"), "walking repository")
	assert.Contains(t, err.Error(), "scan_failure")
	assert.Contains(t, err.Error(), "walking repository")

	svc := New(KindValidation, "assemble", "package %q missing", "nodej-22").
		ForService("apps/web").
		WithSuggestion(`did you mean "nodejs-22"?`)
	assert.Contains(t, svc.Error(), "apps/web")
	assert.Equal(t, `did you mean "nodejs-22"?`, svc.Suggestion)
}
