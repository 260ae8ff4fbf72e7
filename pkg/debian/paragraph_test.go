package debian_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archsync/syncengine/pkg/debian"
)

func TestParseControlFile_SingleParagraph(t *testing.T) {
	const in = "Package: foo\nVersion: 1.0-1\nDescription: a package\n that does things\n"

	graphs, err := debian.ParseControlFile(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, graphs, 1)
	assert.Equal(t, debian.Paragraph{
		"Package":     "foo",
		"Version":     "1.0-1",
		"Description": "a package\nthat does things",
	}, graphs[0])
}

func TestParseControlFile_MultipleParagraphs(t *testing.T) {
	const in = "Package: foo\nVersion: 1.0-1\n\nPackage: bar\nVersion: 2.0-1\n"

	graphs, err := debian.ParseControlFile(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, graphs, 2)
	assert.Equal(t, "foo", graphs[0]["Package"])
	assert.Equal(t, "bar", graphs[1]["Package"])
}

func TestParseControlFile_ContinuationWithoutField(t *testing.T) {
	const in = " leading continuation\n"

	_, err := debian.ParseControlFile(strings.NewReader(in))
	assert.Error(t, err)
}
