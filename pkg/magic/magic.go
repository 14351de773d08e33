// Package magic locates embedded file format signatures in a byte buffer
// and reports them as extraction candidates. It performs no I/O and no
// parsing beyond magic-byte matching: sizing and validation are the
// extractors' problem.
package magic

import (
	"bytes"
	"sort"

	"github.com/satyamisme/binwalk/pkg/extract"
)

// pattern describes one recognizable format.
type pattern struct {
	name        string
	description string
	magic       []byte

	// magicOffset is where the magic bytes sit relative to the start of
	// the format (e.g. tar's "ustar" lands 257 bytes in).
	magicOffset int

	// short marks signatures too weak to trust anywhere but the very start
	// of the buffer (two or three low-entropy bytes match everywhere).
	short bool
}

// Patterns are ordered by decreasing specificity; when two patterns claim
// the same offset, the earlier one wins.
var patterns = []pattern{
	{name: "xz", description: "XZ compressed data", magic: []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}},
	{name: "sevenzip", description: "7-zip archive data", magic: []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}},
	{name: "rar", description: "RAR archive data", magic: []byte{'R', 'a', 'r', '!', 0x1A, 0x07}},
	{name: "cpio", description: "ASCII cpio archive", magic: []byte("070701")},
	{name: "cpio", description: "ASCII cpio archive", magic: []byte("070707")},
	{name: "tarball", description: "POSIX tar archive", magic: []byte("ustar"), magicOffset: 257},
	{name: "squashfs", description: "SquashFS filesystem, little endian", magic: []byte("hsqs")},
	{name: "squashfs", description: "SquashFS filesystem, big endian", magic: []byte("sqsh")},
	{name: "zip", description: "Zip archive data", magic: []byte{'P', 'K', 0x03, 0x04}},
	{name: "lz4", description: "LZ4 compressed data", magic: []byte{0x04, 0x22, 0x4D, 0x18}},
	{name: "zstd", description: "Zstandard compressed data", magic: []byte{0x28, 0xB5, 0x2F, 0xFD}},
	{name: "gzip", description: "gzip compressed data", magic: []byte{0x1F, 0x8B, 0x08}},
	{name: "zlib", description: "zlib compressed data", magic: []byte{0x78, 0x9C}, short: true},
	{name: "lzma", description: "LZMA compressed data", magic: []byte{0x5D, 0x00, 0x00}, short: true},
}

// Scan returns every signature match found in data, ordered by offset.
// Matches report the remainder of the buffer as their size: none of these
// formats declare a total length that can be read without real parsing.
// When multiple patterns match at one offset only the most specific is
// reported.
func Scan(data []byte) []extract.SignatureResult {
	var results []extract.SignatureResult
	claimed := make(map[int]bool)

	for _, p := range patterns {
		for _, index := range findAll(data, p.magic) {
			start := index - p.magicOffset
			if start < 0 {
				continue
			}
			if p.short && start != 0 {
				continue
			}
			if claimed[start] {
				continue
			}
			claimed[start] = true
			results = append(results, extract.SignatureResult{
				Name:        p.name,
				Description: p.description,
				Offset:      start,
				Size:        len(data) - start,
			})
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Offset < results[j].Offset })
	return results
}

// findAll returns the index of every occurrence of magic in data.
func findAll(data, magic []byte) []int {
	var indices []int
	base := 0
	for {
		index := bytes.Index(data[base:], magic)
		if index < 0 {
			return indices
		}
		indices = append(indices, base+index)
		base += index + 1
	}
}
