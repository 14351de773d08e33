package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/satyamisme/binwalk/pkg/logger"
	"github.com/satyamisme/binwalk/pkg/paths"
)

// The entity builders below are the only code that mutates the filesystem.
// Every target path is first confined to the supplied chroot directory via
// pkg/paths; failures are logged here and surfaced only as a false return.

// CreateFile creates a regular file at filePath (confined to chroot) and
// writes data[start:start+size] to it. It refuses to overwrite an existing
// path and rejects out-of-bounds offset/size values.
func CreateFile(filePath string, data []byte, start, size int, chroot string) bool {
	safePath := paths.Chrooted(filePath, chroot)

	if _, err := os.Lstat(safePath); err == nil {
		logger.Error("Failed to create file: path already exists", "path", safePath)
		return false
	}

	end := start + size
	if start < 0 || size < 0 || end > len(data) {
		logger.Error("Failed to create file: data offset/size are invalid",
			"path", safePath, "start", start, "size", size, "available", len(data))
		return false
	}

	if err := os.WriteFile(safePath, data[start:end], 0o644); err != nil {
		logger.Error("Failed to write data to file", "path", safePath, "err", err)
		return false
	}

	return true
}

// createDevice records a device node as a regular placeholder file whose
// contents are "<type> <major> <minor>". Creating genuine device nodes
// requires privileges this process does not have, and fabricating one that
// the kernel would honor is not worth the risk.
func createDevice(filePath, deviceType string, major, minor int, chroot string) bool {
	contents := fmt.Sprintf("%s %d %d", deviceType, major, minor)
	return CreateFile(filePath, []byte(contents), 0, len(contents), chroot)
}

// CreateCharacterDevice records a character device as a placeholder file.
func CreateCharacterDevice(filePath string, major, minor int, chroot string) bool {
	return createDevice(filePath, "c", major, minor, chroot)
}

// CreateBlockDevice records a block device as a placeholder file.
func CreateBlockDevice(filePath string, major, minor int, chroot string) bool {
	return createDevice(filePath, "b", major, minor, chroot)
}

// CreateFIFO records a fifo as a placeholder file containing "fifo".
func CreateFIFO(filePath, chroot string) bool {
	return CreateFile(filePath, []byte("fifo"), 0, 4, chroot)
}

// CreateSocket records a socket as a placeholder file containing "socket".
func CreateSocket(filePath, chroot string) bool {
	return CreateFile(filePath, []byte("socket"), 0, 6, chroot)
}

// IsSymlink returns true if filePath is a symlink. Unreadable paths report
// false rather than propagating the error.
func IsSymlink(filePath string) bool {
	metadata, err := os.Lstat(filePath)
	if err != nil {
		return false
	}
	return metadata.Mode()&os.ModeSymlink != 0
}

// AppendToFile appends data to the file at filePath (confined to chroot),
// creating it if needed. Appending to a path that is itself a symlink is
// refused to prevent symlink-redirected writes.
func AppendToFile(filePath string, data []byte, chroot string) bool {
	safePath := paths.Chrooted(filePath, chroot)

	if IsSymlink(safePath) {
		logger.Error("Attempted to append data to a symlink", "path", safePath)
		return false
	}

	fp, err := os.OpenFile(safePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Error("Failed to open file for appending", "path", safePath, "err", err)
		return false
	}
	defer fp.Close()

	if _, err := fp.Write(data); err != nil {
		logger.Error("Failed to append to file", "path", safePath, "err", err)
		return false
	}

	return true
}

// CreateDirectory creates dirPath (confined to chroot) and any missing
// ancestors, equivalent to mkdir -p. Idempotent if the directory exists.
func CreateDirectory(dirPath, chroot string) bool {
	safePath := paths.Chrooted(dirPath, chroot)

	if err := os.MkdirAll(safePath, 0o755); err != nil {
		logger.Error("Failed to create directory", "path", safePath, "err", err)
		return false
	}

	return true
}

// MakeExecutable adds the execute-by-owner permission bit to the file at
// filePath. Other ownership/permissions are left untouched: extractors that
// tighten or broaden modes produce output that cannot be analyzed safely.
func MakeExecutable(filePath, chroot string) bool {
	const ownerExec = 0o100

	safePath := paths.Chrooted(filePath, chroot)

	metadata, err := os.Stat(safePath)
	if err != nil {
		logger.Error("Failed to get permissions for file", "path", safePath, "err", err)
		return false
	}

	if err := os.Chmod(safePath, metadata.Mode().Perm()|ownerExec); err != nil {
		logger.Error("Failed to set permissions for file", "path", safePath, "err", err)
		return false
	}

	return true
}

// CreateSymlink creates a symbolic link named symlink pointing at target.
// Both paths are sanitized: an absolute target is independently confined to
// the chroot, while a relative target is resolved against the symlink's own
// (confined) parent directory and the combined path is re-confined. The
// link's stored target text is therefore always the sanitized path, never
// the attacker-supplied string.
func CreateSymlink(symlink, target, chroot string) bool {
	safeSymlink := paths.Chrooted(symlink, chroot)

	var safeTarget string
	if strings.HasPrefix(target, string(filepath.Separator)) {
		safeTarget = paths.Chrooted(target, chroot)
	} else {
		relativeDir := filepath.Dir(safeSymlink)
		safeTarget = paths.SafeJoin(relativeDir, target, chroot)
	}

	if err := os.Symlink(safeTarget, safeSymlink); err != nil {
		logger.Error("Failed to create symlink",
			"symlink", safeSymlink, "target", safeTarget, "err", err)
		return false
	}

	return true
}
