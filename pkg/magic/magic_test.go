package magic

import (
	"bytes"
	"testing"
)

func TestScanFindsEmbeddedSignatures(t *testing.T) {
	data := make([]byte, 0, 512)
	data = append(data, bytes.Repeat([]byte{0x00}, 64)...)

	gzipAt := len(data)
	data = append(data, 0x1F, 0x8B, 0x08, 0x00)
	data = append(data, bytes.Repeat([]byte{0x11}, 60)...)

	xzAt := len(data)
	data = append(data, 0xFD, '7', 'z', 'X', 'Z', 0x00)
	data = append(data, bytes.Repeat([]byte{0x22}, 58)...)

	zipAt := len(data)
	data = append(data, 'P', 'K', 0x03, 0x04)

	results := Scan(data)
	if len(results) != 3 {
		t.Fatalf("Scan returned %d matches, want 3", len(results))
	}

	want := []struct {
		name   string
		offset int
	}{
		{"gzip", gzipAt},
		{"xz", xzAt},
		{"zip", zipAt},
	}
	for i, w := range want {
		if results[i].Name != w.name || results[i].Offset != w.offset {
			t.Errorf("match %d = %s@%d, want %s@%d",
				i, results[i].Name, results[i].Offset, w.name, w.offset)
		}
		if results[i].Size != len(data)-w.offset {
			t.Errorf("match %d size = %d, want remainder %d",
				i, results[i].Size, len(data)-w.offset)
		}
	}
}

func TestScanTarMagicOffset(t *testing.T) {
	// tar's "ustar" magic sits 257 bytes into the header block.
	data := make([]byte, 512)
	copy(data[257:], "ustar")

	results := Scan(data)
	if len(results) != 1 {
		t.Fatalf("Scan returned %d matches, want 1", len(results))
	}
	if results[0].Name != "tarball" || results[0].Offset != 0 {
		t.Errorf("match = %s@%d, want tarball@0", results[0].Name, results[0].Offset)
	}
}

func TestScanTarMagicTooEarly(t *testing.T) {
	// "ustar" within the first 257 bytes cannot belong to a complete header.
	data := make([]byte, 512)
	copy(data[100:], "ustar")

	if results := Scan(data); len(results) != 0 {
		t.Errorf("Scan returned %d matches, want 0", len(results))
	}
}

func TestScanShortSignaturesOnlyAtStart(t *testing.T) {
	zlib := []byte{0x78, 0x9C, 0x01, 0x02}

	if results := Scan(zlib); len(results) != 1 || results[0].Name != "zlib" {
		t.Errorf("zlib at offset 0 not reported: %v", results)
	}

	embedded := append(bytes.Repeat([]byte{0x44}, 32), zlib...)
	if results := Scan(embedded); len(results) != 0 {
		t.Errorf("short signature mid-buffer reported: %v", results)
	}
}

func TestScanMostSpecificWinsAtOffset(t *testing.T) {
	// gzip's 1F 8B 08 must not additionally be claimed by a weaker
	// pattern at the same offset.
	data := []byte{0x1F, 0x8B, 0x08, 0x00, 0x00, 0x00}

	results := Scan(data)
	if len(results) != 1 {
		t.Fatalf("Scan returned %d matches, want 1", len(results))
	}
	if results[0].Name != "gzip" {
		t.Errorf("match = %s, want gzip", results[0].Name)
	}
}

func TestScanRepeatedSignature(t *testing.T) {
	chunk := append([]byte{0x28, 0xB5, 0x2F, 0xFD}, bytes.Repeat([]byte{0x33}, 28)...)
	data := append(append([]byte{}, chunk...), chunk...)

	results := Scan(data)
	if len(results) != 2 {
		t.Fatalf("Scan returned %d matches, want 2", len(results))
	}
	if results[0].Offset != 0 || results[1].Offset != len(chunk) {
		t.Errorf("offsets = %d,%d want 0,%d", results[0].Offset, results[1].Offset, len(chunk))
	}
}

func TestScanEmptyBuffer(t *testing.T) {
	if results := Scan(nil); len(results) != 0 {
		t.Errorf("Scan(nil) returned %d matches", len(results))
	}
}

func TestFindAllOverlapping(t *testing.T) {
	indices := findAll([]byte("aaaa"), []byte("aa"))
	want := []int{0, 1, 2}
	if len(indices) != len(want) {
		t.Fatalf("findAll returned %v, want %v", indices, want)
	}
	for i := range want {
		if indices[i] != want[i] {
			t.Fatalf("findAll returned %v, want %v", indices, want)
		}
	}
}
