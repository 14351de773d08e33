// Package builtin provides the built-in decoders that expand common
// compression streams and archive containers without spawning an external
// process. Each decoder implements extract.InternalExtractor and is
// registered under a stable tag; extractor catalogs reference decoders by
// tag so their definitions stay comparable and serializable.
//
// Decoders write exclusively through the extract entity builders with the
// output directory as the chroot, so archive members carrying absolute
// paths, ".." components, or hostile symlink targets cannot escape it.
package builtin

import (
	"github.com/satyamisme/binwalk/pkg/extract"
)

// Registry tags for the built-in decoders.
const (
	TagGzip     = "gzip"
	TagZlib     = "zlib"
	TagLZMA     = "lzma"
	TagXZ       = "xz"
	TagLZ4      = "lz4"
	TagZstd     = "zstd"
	TagTar      = "tar"
	TagZip      = "zip"
	TagSevenZip = "sevenzip"
	TagRar      = "rar"
)

func init() {
	extract.RegisterBuiltin(TagGzip, extractGzip)
	extract.RegisterBuiltin(TagZlib, extractZlib)
	extract.RegisterBuiltin(TagLZMA, extractLZMA)
	extract.RegisterBuiltin(TagXZ, extractXZ)
	extract.RegisterBuiltin(TagLZ4, extractLZ4)
	extract.RegisterBuiltin(TagZstd, extractZstd)
	extract.RegisterBuiltin(TagTar, extractTar)
	extract.RegisterBuiltin(TagZip, extractZip)
	extract.RegisterBuiltin(TagSevenZip, extractSevenZip)
	extract.RegisterBuiltin(TagRar, extractRar)
}
