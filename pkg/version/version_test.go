package version_test

import (
	"testing"

	"github.com/archsync/syncengine/pkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"equal", "1.2-1", "1.2-1", 0},
		{"upstream greater", "1.3-1", "1.2-1", 1},
		{"upstream lesser", "1.2-1", "1.3-1", -1},
		{"revision greater", "1.2-2", "1.2-1", 1},
		{"epoch wins", "1:1.0-1", "2.0-1", 1},
		{"tilde sorts before end", "1.0~rc1-1", "1.0-1", -1},
		{"native vs revisioned", "1.0", "1.0-1", -1},
		{"tanglu fork revision", "1.0-0tanglu1", "1.0-1", -1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := version.Compare(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompare_MalformedVersion(t *testing.T) {
	t.Parallel()

	_, err := version.Compare("not a version!!", "1.0-1")
	require.Error(t, err)

	var parseErr *version.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "not a version!!", parseErr.Raw)
}

func TestDebianRevision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version string
		want    string
	}{
		{"1.2-1", "1"},
		{"1.2-0tanglu1", "0tanglu1"},
		{"1.2", ""},
		{"1:2.0-3", "3"},
		{"1.0-1b2", "1b2"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, version.DebianRevision(tt.version), tt.version)
	}
}

func TestLooksLikeRebuildUpload(t *testing.T) {
	t.Parallel()

	assert.True(t, version.LooksLikeRebuildUpload("1.0-1b2"))
	assert.False(t, version.LooksLikeRebuildUpload("1.0-1"))
	assert.False(t, version.LooksLikeRebuildUpload("1.0+deb11u1b1-1"))
}
