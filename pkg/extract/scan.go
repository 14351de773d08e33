package extract

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/satyamisme/binwalk/pkg/logger"
)

// ExtractedFiles recursively walks directory and returns every regular,
// non-empty file beneath it. Symlinks are never followed: each entry is
// classified with link-unaware metadata, so a link pointing outside the
// directory can neither be returned nor traversed. Unreadable entries are
// skipped, not propagated.
func ExtractedFiles(directory string) []string {
	var regularFiles []string

	_ = filepath.WalkDir(directory, func(entryPath string, _ fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		metadata, err := os.Lstat(entryPath)
		if err != nil {
			return nil
		}
		if metadata.Mode().IsRegular() && metadata.Size() > 0 {
			regularFiles = append(regularFiles, entryPath)
		}
		return nil
	})

	return regularFiles
}

// wasAnythingExtracted reports whether the extractor output directory
// contains any entry with a non-zero size, excluding the directory itself.
// Carved/intermediate input files must be deleted before calling this, or
// they will count as extracted output.
func wasAnythingExtracted(outputDirectory string) bool {
	found := false

	logger.Debug("Checking output directory for results", "dir", outputDirectory)

	_ = filepath.WalkDir(outputDirectory, func(entryPath string, _ fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Failed to retrieve output directory entry", "err", err)
			return nil
		}
		if entryPath == outputDirectory {
			return nil
		}
		metadata, err := os.Lstat(entryPath)
		if err != nil {
			return nil
		}
		if metadata.Size() > 0 {
			logger.Debug("Found output file", "path", entryPath)
			found = true
			return filepath.SkipAll
		}
		return nil
	})

	return found
}
