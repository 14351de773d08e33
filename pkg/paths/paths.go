// Package paths implements the path algebra that confines every filesystem
// write to a chroot directory. Paths are sanitized with an explicit
// traversal-cancellation scan rather than filepath.Clean: standard
// normalizers resolve "." and ".." against the platform's lexical rules (and
// some resolve symlinks), which would weaken the containment guarantee for
// attacker-controlled inputs. All functions here are pure; no I/O occurs.
package paths

import (
	"path/filepath"
	"strings"
)

const dirTraversal = ".."

var sep = string(filepath.Separator)

// stripDoubleSep collapses repeated path separators down to one.
func stripDoubleSep(path string) string {
	double := sep + sep
	for strings.Contains(path, double) {
		path = strings.ReplaceAll(path, double, sep)
	}
	return path
}

// SanitizePath interprets a path containing ".." components without touching
// the filesystem. Each ".." segment is removed along with the nearest
// preceding segment that has not already been removed, which cancels the
// immediately enclosing directory. Empty segments (from doubled separators)
// are removed as well. A path made of nothing but ".." segments collapses to
// an empty string, never an error. When preserveRootSep is true and the input
// begins with a separator, the result keeps a single leading separator.
func SanitizePath(filePath string, preserveRootSep bool) string {
	sanitized := ""
	if preserveRootSep && strings.HasPrefix(filePath, sep) {
		sanitized = sep
	}

	parts := strings.Split(filePath, sep)
	exclude := make(map[int]bool)

	for i, part := range parts {
		switch {
		case part == dirTraversal:
			exclude[i] = true
			if i > 0 {
				// Walk backwards to the nearest part not already excluded
				// and mark that part for exclusion as well.
				j := i - 1
				for j > 0 && exclude[j] {
					j--
				}
				exclude[j] = true
			}
		case len(part) == 0:
			exclude[i] = true
		}
	}

	for i, part := range parts {
		if !exclude[i] {
			sanitized += sep + part
		}
	}

	return stripDoubleSep(sanitized)
}

// SafeJoin joins two paths, ensuring that the final path does not traverse
// outside of the chroot directory.
//
// Example: for a chroot of "/tmp/foobar", paths translate as follows:
//
//	"/etc/passwd"        -> /tmp/foobar/etc/passwd
//	"/etc/../../passwd"  -> /tmp/foobar/passwd
//	"../../../etc/passwd" -> /tmp/foobar/etc/passwd
func SafeJoin(path1, path2, chroot string) string {
	joined := SanitizePath(path1+sep+path2, true)

	if !strings.HasPrefix(joined, chroot) {
		joined = chroot + sep + joined
	}

	return stripDoubleSep(joined)
}

// Chrooted returns a sanitized version of filePath confined inside the
// specified chroot directory.
func Chrooted(filePath, chroot string) string {
	return SafeJoin(filePath, "", chroot)
}
