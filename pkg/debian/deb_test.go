package debian_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"testing"

	"github.com/blakesmith/ar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archsync/syncengine/pkg/debian"
)

// buildDeb assembles a minimal .deb: an ar archive holding a
// control.tar.gz member whose tarball contains a single ./control
// file with the given bytes.
func buildDeb(t *testing.T, control string) []byte {
	t.Helper()

	var tarBuf bytes.Buffer
	gzW := gzip.NewWriter(&tarBuf)
	tarW := tar.NewWriter(gzW)
	require.NoError(t, tarW.WriteHeader(&tar.Header{
		Name: "./control",
		Mode: 0o644,
		Size: int64(len(control)),
	}))
	_, err := tarW.Write([]byte(control))
	require.NoError(t, err)
	require.NoError(t, tarW.Close())
	require.NoError(t, gzW.Close())

	var debBuf bytes.Buffer
	arW := ar.NewWriter(&debBuf)
	require.NoError(t, arW.WriteGlobalHeader())
	require.NoError(t, arW.WriteHeader(&ar.Header{
		Name: "control.tar.gz",
		Mode: 0o644,
		Size: int64(tarBuf.Len()),
	}))
	_, err = arW.Write(tarBuf.Bytes())
	require.NoError(t, err)

	return debBuf.Bytes()
}

func TestParagraphFromDeb(t *testing.T) {
	t.Parallel()

	const control = "Package: foobar\nVersion: 1.2.3\nArchitecture: amd64\nMaintainer: pwagner\nDescription: test package\n"
	deb := buildDeb(t, control)

	graph, err := debian.ParagraphFromDeb(bytes.NewReader(deb))
	require.NoError(t, err)
	assert.Equal(t, &debian.Paragraph{
		"Package":      "foobar",
		"Version":      "1.2.3",
		"Architecture": "amd64",
		"Maintainer":   "pwagner",
		"Description":  "test package",
	}, graph)
}

func TestParagraphFromDebFile(t *testing.T) {
	const control = "Package: foobar\nVersion: 1.2.3\n"
	deb := buildDeb(t, control)

	dir := t.TempDir()
	path := dir + "/foobar_1.2.3_amd64.deb"
	require.NoError(t, os.WriteFile(path, deb, 0o644))

	graph, err := debian.ParagraphFromDebFile(path)
	require.NoError(t, err)
	assert.Equal(t, "foobar", (*graph)["Package"])
	assert.Equal(t, "1.2.3", (*graph)["Version"])
}
