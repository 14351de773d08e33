package builtin

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"

	"github.com/satyamisme/binwalk/pkg/extract"
	"github.com/satyamisme/binwalk/pkg/logger"
)

// decompressedFileName is where single-stream codecs drop their output.
const decompressedFileName = "decompressed.bin"

// drainStream decompresses reader into decompressedFileName under
// outputDir. Truncated streams are common in carved firmware, so bytes
// decoded before a stream error are kept; an error with no decoded bytes is
// a failed extraction.
func drainStream(tag string, reader io.Reader, outputDir string) extract.ExtractionResult {
	var result extract.ExtractionResult

	decoded, err := io.ReadAll(reader)
	if err != nil {
		if len(decoded) == 0 {
			logger.Debug("Decompression produced no data", "decoder", tag, "err", err)
			return result
		}
		logger.Debug("Keeping partial decompression output",
			"decoder", tag, "bytes", len(decoded), "err", err)
	}
	if len(decoded) == 0 {
		return result
	}

	if !extract.CreateFile(decompressedFileName, decoded, 0, len(decoded), outputDir) {
		return result
	}

	result.Success = true
	return result
}

func extractGzip(data []byte, offset int, outputDir string) extract.ExtractionResult {
	reader, err := gzip.NewReader(bytes.NewReader(data[offset:]))
	if err != nil {
		logger.Debug("Invalid gzip stream", "offset", offset, "err", err)
		return extract.ExtractionResult{}
	}
	defer reader.Close()
	// Stop at the first member; trailing data belongs to other signatures.
	reader.Multistream(false)
	return drainStream(TagGzip, reader, outputDir)
}

func extractZlib(data []byte, offset int, outputDir string) extract.ExtractionResult {
	reader, err := zlib.NewReader(bytes.NewReader(data[offset:]))
	if err != nil {
		logger.Debug("Invalid zlib stream", "offset", offset, "err", err)
		return extract.ExtractionResult{}
	}
	defer reader.Close()
	return drainStream(TagZlib, reader, outputDir)
}

func extractLZMA(data []byte, offset int, outputDir string) extract.ExtractionResult {
	reader, err := lzma.NewReader(bytes.NewReader(data[offset:]))
	if err != nil {
		logger.Debug("Invalid lzma stream", "offset", offset, "err", err)
		return extract.ExtractionResult{}
	}
	return drainStream(TagLZMA, reader, outputDir)
}

func extractXZ(data []byte, offset int, outputDir string) extract.ExtractionResult {
	reader, err := xz.NewReader(bytes.NewReader(data[offset:]))
	if err != nil {
		logger.Debug("Invalid xz stream", "offset", offset, "err", err)
		return extract.ExtractionResult{}
	}
	return drainStream(TagXZ, reader, outputDir)
}

func extractLZ4(data []byte, offset int, outputDir string) extract.ExtractionResult {
	return drainStream(TagLZ4, lz4.NewReader(bytes.NewReader(data[offset:])), outputDir)
}

func extractZstd(data []byte, offset int, outputDir string) extract.ExtractionResult {
	decoder, err := zstd.NewReader(bytes.NewReader(data[offset:]))
	if err != nil {
		logger.Debug("Invalid zstd stream", "offset", offset, "err", err)
		return extract.ExtractionResult{}
	}
	defer decoder.Close()
	return drainStream(TagZstd, decoder, outputDir)
}
