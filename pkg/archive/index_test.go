package archive_test

import (
	"testing"

	"github.com/archsync/syncengine/pkg/archive"
	"github.com/archsync/syncengine/pkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewestMap_KeepsHighestVersion(t *testing.T) {
	t.Parallel()

	pkgs := []archive.SourcePackage{
		{Name: "foo", Version: "1.0-1"},
		{Name: "foo", Version: "1.2-1"},
		{Name: "foo", Version: "1.1-1"},
		{Name: "bar", Version: "2.0-1"},
	}

	idx := archive.NewestMap(pkgs, version.Compare)
	require.Len(t, idx, 2)
	assert.Equal(t, "1.2-1", idx["foo"].Version)
	assert.Equal(t, "2.0-1", idx["bar"].Version)
}

func TestNewestMap_TieKeepsFirstEncountered(t *testing.T) {
	t.Parallel()

	first := archive.SourcePackage{Name: "foo", Version: "1.0-1", Component: "main"}
	second := archive.SourcePackage{Name: "foo", Version: "1.0-1", Component: "contrib"}

	idx := archive.NewestMap([]archive.SourcePackage{first, second}, version.Compare)
	assert.Equal(t, archive.Component("main"), idx["foo"].Component)
}

func TestNewestMap_SkipsMalformedVersions(t *testing.T) {
	t.Parallel()

	pkgs := []archive.SourcePackage{
		{Name: "foo", Version: "1.0-1"},
		{Name: "foo", Version: "not a version"},
	}

	idx := archive.NewestMap(pkgs, version.Compare)
	assert.Equal(t, "1.0-1", idx["foo"].Version)
}

func TestNewBinaryIndex_InstallerReplacesOnlyWhenStrictlyNewer(t *testing.T) {
	t.Parallel()

	regular := []archive.BinaryPackage{
		{Name: "foo-udeb", Version: "1.0-1"},
		{Name: "bar-udeb", Version: "2.0-1"},
	}
	installer := []archive.BinaryPackage{
		{Name: "foo-udeb", Version: "1.0-1", IsInstaller: true},   // tie: regular wins
		{Name: "bar-udeb", Version: "2.1-1", IsInstaller: true},   // newer: installer wins
		{Name: "baz-udeb", Version: "0.1-1", IsInstaller: true},   // new name: added
	}

	idx := archive.NewBinaryIndex(regular, installer, true, version.Compare)
	require.Len(t, idx, 3)
	assert.False(t, idx["foo-udeb"].IsInstaller)
	assert.True(t, idx["bar-udeb"].IsInstaller)
	assert.Equal(t, "2.1-1", idx["bar-udeb"].Version)
	assert.True(t, idx["baz-udeb"].IsInstaller)
}

func TestNewBinaryIndex_InstallerExcludedWhenNotRequested(t *testing.T) {
	t.Parallel()

	regular := []archive.BinaryPackage{{Name: "foo", Version: "1.0-1"}}
	installer := []archive.BinaryPackage{{Name: "foo-udeb", Version: "1.0-1", IsInstaller: true}}

	idx := archive.NewBinaryIndex(regular, installer, false, version.Compare)
	require.Len(t, idx, 1)
	_, ok := idx["foo-udeb"]
	assert.False(t, ok)
}

func TestMergeSourceIndex_ChildWinsOnlyWhenNewer(t *testing.T) {
	t.Parallel()

	parent := map[string]archive.SourcePackage{
		"foo": {Name: "foo", Version: "1.0-1"},
		"bar": {Name: "bar", Version: "3.0-1"},
	}
	child := map[string]archive.SourcePackage{
		"foo": {Name: "foo", Version: "1.0-1"}, // tie, parent wins
		"bar": {Name: "bar", Version: "2.0-1"}, // older than parent, parent wins
	}

	merged := archive.MergeSourceIndex(parent, child, version.Compare)
	assert.Equal(t, "1.0-1", merged["foo"].Version)
	assert.Equal(t, "3.0-1", merged["bar"].Version)
}
