package builtin

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/javi11/rardecode/v2"
	"github.com/javi11/sevenzip"
	"github.com/klauspost/compress/zip"

	"github.com/satyamisme/binwalk/pkg/extract"
	"github.com/satyamisme/binwalk/pkg/logger"
)

// writeMember writes one archive member through the entity builders,
// creating missing parent directories first. Returns true if the member
// landed on disk.
func writeMember(name string, contents []byte, executable bool, outputDir string) bool {
	if parent := filepath.Dir(name); parent != "." {
		if !extract.CreateDirectory(parent, outputDir) {
			return false
		}
	}
	if !extract.CreateFile(name, contents, 0, len(contents), outputDir) {
		return false
	}
	if executable {
		extract.MakeExecutable(name, outputDir)
	}
	return true
}

// extractTar expands a tar stream. Symlinks, hardlinks, device nodes,
// fifos and sockets are recorded through the corresponding placeholder
// constructors; a truncated trailing member keeps whatever decoded.
func extractTar(data []byte, offset int, outputDir string) extract.ExtractionResult {
	var result extract.ExtractionResult

	reader := tar.NewReader(bytes.NewReader(data[offset:]))
	entries := 0

loop:
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Debug("Stopping at unreadable tar header", "offset", offset, "err", err)
			break
		}

		name := header.Name
		switch header.Typeflag {
		case tar.TypeDir:
			if extract.CreateDirectory(name, outputDir) {
				entries++
			}
		case tar.TypeReg:
			contents, err := io.ReadAll(reader)
			if err != nil {
				logger.Debug("Truncated tar member", "name", name, "err", err)
			}
			executable := header.FileInfo().Mode().Perm()&0o100 != 0
			if writeMember(name, contents, executable, outputDir) {
				entries++
			}
			if err != nil {
				break loop
			}
		case tar.TypeSymlink, tar.TypeLink:
			if extract.CreateSymlink(name, header.Linkname, outputDir) {
				entries++
			}
		case tar.TypeChar:
			if extract.CreateCharacterDevice(name, int(header.Devmajor), int(header.Devminor), outputDir) {
				entries++
			}
		case tar.TypeBlock:
			if extract.CreateBlockDevice(name, int(header.Devmajor), int(header.Devminor), outputDir) {
				entries++
			}
		case tar.TypeFifo:
			if extract.CreateFIFO(name, outputDir) {
				entries++
			}
		}
	}

	result.Success = entries > 0
	return result
}

func extractZip(data []byte, offset int, outputDir string) extract.ExtractionResult {
	var result extract.ExtractionResult

	region := data[offset:]
	reader, err := zip.NewReader(bytes.NewReader(region), int64(len(region)))
	if err != nil {
		logger.Debug("Invalid zip archive", "offset", offset, "err", err)
		return result
	}

	entries := 0
	for _, file := range reader.File {
		mode := file.Mode()
		switch {
		case mode.IsDir():
			if extract.CreateDirectory(file.Name, outputDir) {
				entries++
			}
		case mode&fs.ModeSymlink != 0:
			target, err := readArchiveMember(file.Open)
			if err != nil {
				logger.Debug("Unreadable zip symlink member", "name", file.Name, "err", err)
				continue
			}
			if extract.CreateSymlink(file.Name, string(target), outputDir) {
				entries++
			}
		default:
			contents, err := readArchiveMember(file.Open)
			if err != nil {
				logger.Debug("Unreadable zip member", "name", file.Name, "err", err)
				continue
			}
			if writeMember(file.Name, contents, mode.Perm()&0o100 != 0, outputDir) {
				entries++
			}
		}
	}

	result.Success = entries > 0
	return result
}

func extractSevenZip(data []byte, offset int, outputDir string) extract.ExtractionResult {
	var result extract.ExtractionResult

	region := data[offset:]
	reader, err := sevenzip.NewReader(bytes.NewReader(region), int64(len(region)))
	if err != nil {
		logger.Debug("Invalid 7-zip archive", "offset", offset, "err", err)
		return result
	}

	entries := 0
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			if extract.CreateDirectory(file.Name, outputDir) {
				entries++
			}
			continue
		}
		contents, err := readArchiveMember(file.Open)
		if err != nil {
			logger.Debug("Unreadable 7-zip member", "name", file.Name, "err", err)
			continue
		}
		if writeMember(file.Name, contents, file.FileInfo().Mode().Perm()&0o100 != 0, outputDir) {
			entries++
		}
	}

	result.Success = entries > 0
	return result
}

func extractRar(data []byte, offset int, outputDir string) extract.ExtractionResult {
	var result extract.ExtractionResult

	reader, err := rardecode.NewReader(bytes.NewReader(data[offset:]))
	if err != nil {
		logger.Debug("Invalid rar archive", "offset", offset, "err", err)
		return result
	}

	entries := 0
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Debug("Stopping at unreadable rar header", "offset", offset, "err", err)
			break
		}

		if header.IsDir {
			if extract.CreateDirectory(header.Name, outputDir) {
				entries++
			}
			continue
		}

		contents, err := io.ReadAll(reader)
		if err != nil {
			logger.Debug("Truncated rar member", "name", header.Name, "err", err)
		}
		if writeMember(header.Name, contents, false, outputDir) {
			entries++
		}
		if err != nil {
			break
		}
	}

	result.Success = entries > 0
	return result
}

func readArchiveMember(open func() (io.ReadCloser, error)) ([]byte, error) {
	rc, err := open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
