package wolfi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortVersionsDescIsSemantic(t *testing.T) {
	vs := []string{"1.81", "1.92", "1.75"}
	SortVersionsDesc(vs)
	assert.Equal(t, []string{"1.92", "1.81", "1.75"}, vs)

	vs = []string{"3.9", "3.11", "3.10"}
	SortVersionsDesc(vs)
	assert.Equal(t, []string{"3.11", "3.10", "3.9"}, vs)
}

func TestMatchVersion(t *testing.T) {
	available := []string{"22", "20", "18"}

	tests := []struct {
		name      string
		requested string
		want      string
		ok        bool
	}{
		{"exact major", "20", "20", true},
		{"highest major", "22", "22", true},
		{"no same major", "16", "", false},
		{"minor preferred", "20.11", "20", true},
		{"unparseable", "latest", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchVersion(tt.requested, available)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchVersionMinorExact(t *testing.T) {
	got, ok := MatchVersion("3.11", []string{"3.12", "3.11", "3.9"})
	assert.True(t, ok)
	assert.Equal(t, "3.11", got)

	// Missing minor falls back to the highest of the same major.
	got, ok = MatchVersion("3.8", []string{"3.12", "3.11"})
	assert.True(t, ok)
	assert.Equal(t, "3.12", got)
}

// The selected version always comes from the available set and shares the
// requested major whenever any candidate does.
func TestMatchVersionMonotone(t *testing.T) {
	available := []string{"21", "17", "11"}
	for _, req := range []string{"21", "17", "11", "17.0"} {
		got, ok := MatchVersion(req, available)
		assert.True(t, ok, req)
		assert.Contains(t, available, got)
		assert.Equal(t, req[:2], got[:2])
	}
}
