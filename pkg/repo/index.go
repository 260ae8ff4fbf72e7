package repo

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"
	"pault.ag/go/debian/control"
)

// sourceStanza is one paragraph of a Sources index, decoded by field
// name via pault.ag/go/debian/control's reflection-based decoder.
// Binary and ChecksumsSha256 are left as their raw control-file text;
// they each pack multiple values and are split out by the callers
// below rather than by struct tags.
type sourceStanza struct {
	Package         string
	Version         string
	Binary          string
	ChecksumsSha256 string `control:"Checksums-Sha256"`
}

// binaryStanza is one paragraph of a Packages index.
type binaryStanza struct {
	Package      string
	Source       string
	Version      string
	Architecture string
	Filename     string
	SHA256       string
	Size         string
}

func decodeSourceStanzas(r io.Reader) ([]sourceStanza, error) {
	dec, err := control.NewDecoder(bufio.NewReader(r), nil)
	if err != nil {
		return nil, fmt.Errorf("decoding source index: %w", err)
	}
	var out []sourceStanza
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding source index: %w", err)
	}
	return out, nil
}

func decodeBinaryStanzas(r io.Reader) ([]binaryStanza, error) {
	dec, err := control.NewDecoder(bufio.NewReader(r), nil)
	if err != nil {
		return nil, fmt.Errorf("decoding binary index: %w", err)
	}
	var out []binaryStanza
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding binary index: %w", err)
	}
	return out, nil
}

// decompress reverses Compression.Compress.
func decompress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionGZIP:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)

	case CompressionXZ:
		xr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return io.ReadAll(xr)

	case CompressionBZIP:
		return nil, fmt.Errorf("bzip decompression not implemented")

	case CompressionNone:
		return data, nil

	default:
		return nil, fmt.Errorf("unknown compression %q", c)
	}
}

// checksumEntry is one line of a Checksums-Sha256 field:
// "<sha256> <size> <filename>".
type checksumEntry struct {
	SHA256   string
	Size     int64
	Filename string
}

// parseChecksums parses a Checksums-Sha256 field's value, as decoded
// into a single raw string by decodeSourceStanzas (pkg/debian.Paragraph
// would give the same shape; this mirrors that continuation-joining
// convention so the two parsers agree on what a multi-line field looks
// like).
func parseChecksums(raw string) ([]checksumEntry, error) {
	var out []checksumEntry
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed checksum line %q", line)
		}
		size, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed checksum size %q: %w", fields[1], err)
		}
		out = append(out, checksumEntry{SHA256: fields[0], Size: size, Filename: fields[2]})
	}
	return out, nil
}

// parseBinaryList parses a Source index's Binary field, a comma
// (optionally newline-wrapped) separated list of package names.
func parseBinaryList(raw string) []string {
	raw = strings.ReplaceAll(raw, "\n", " ")
	var out []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}
