package extract

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/satyamisme/binwalk/pkg/logger"
)

// The standard exit success value. Exit code 0 is always treated as
// success, even when the definition's accepted-code set omits it.
const exitSuccess = 0

// runningProcess tracks one live external extractor invocation: the child
// process handle, the accepted exit codes, and the carved input file that
// must be deleted once the process exits, success or failure.
type runningProcess struct {
	cmd        *exec.Cmd
	exitCodes  []int
	carvedFile string
}

// spawn carves the matched byte range to disk and starts the external
// extractor command. The carved file path is
// <output directory>/<signature name>_<hex offset>.<extension>. When the
// match spans the entire source buffer no bytes are copied; the carved path
// becomes a symlink to the source file instead. Spawn failures (binary not
// found, exec permission denied) are recoverable errors for the caller.
func spawn(fileData []byte, filePath, outputDirectory string, signature *SignatureResult, definition *Extractor) (*runningProcess, error) {
	// Only external extraction utilities are spawned here; internal
	// extractors must be invoked directly.
	if definition.Utility.Kind != KindExternal {
		panic("extract: tried to run a non-external extractor as an external command")
	}
	command := definition.Utility.Command
	rootDir := string(filepath.Separator)

	carvedFile := fmt.Sprintf("%s%c%s_%X.%s",
		outputDirectory, filepath.Separator, signature.Name, signature.Offset, definition.Extension)

	logger.Info("Carving data",
		"source", filePath,
		"start", fmt.Sprintf("0x%X", signature.Offset),
		"end", fmt.Sprintf("0x%X", signature.Offset+signature.Size),
		"dest", carvedFile)

	if signature.Offset == 0 && signature.Size == len(fileData) {
		// The entire source file is this one type; symlink it rather than
		// duplicating the full file on disk.
		if !CreateSymlink(carvedFile, filePath, rootDir) {
			return nil, errors.New("failed to create carved file symlink")
		}
	} else {
		if !CreateFile(carvedFile, fileData, signature.Offset, signature.Size, rootDir) {
			return nil, errors.New("failed to carve data to disk")
		}
	}

	arguments := make([]string, len(definition.Arguments))
	copy(arguments, definition.Arguments)
	for i, argument := range arguments {
		if argument == SourceFilePlaceholder {
			arguments[i] = carvedFile
		}
	}

	logger.Info("Spawning process", "command", command, "arguments", arguments)

	cmd := exec.Command(command, arguments...)
	cmd.Dir = outputDirectory
	// Stdout and Stderr stay nil so the child's output is discarded.
	if err := cmd.Start(); err != nil {
		logger.Error("Failed to execute command",
			"command", command, "arguments", arguments, "err", err)
		return nil, err
	}

	return &runningProcess{cmd: cmd, exitCodes: definition.ExitCodes, carvedFile: carvedFile}, nil
}

// procWait blocks until the extractor process terminates and validates its
// exit status. The carved input file is removed on every exit path, before
// any output validation can see it. Termination by signal is failure. The
// returned result has only Success populated; Execute fills the rest.
func procWait(proc *runningProcess) ExtractionResult {
	var result ExtractionResult

	waitErr := proc.cmd.Wait()

	logger.Debug("Deleting carved file", "path", proc.carvedFile)
	if err := os.Remove(proc.carvedFile); err != nil {
		logger.Warn("Failed to remove carved file", "path", proc.carvedFile, "err", err)
	}

	state := proc.cmd.ProcessState
	if state == nil {
		logger.Error("Failed to retrieve child process status", "err", waitErr)
		return result
	}

	if !state.Exited() {
		// Killed by a signal; there is no exit code to validate.
		logger.Warn("Child process was terminated before exiting", "status", state.String())
		return result
	}

	code := state.ExitCode()
	if code == exitSuccess || containsCode(proc.exitCodes, code) {
		result.Success = true
	} else {
		logger.Warn("Child process exited with unexpected code", "code", code)
	}

	return result
}

func containsCode(codes []int, code int) bool {
	for _, candidate := range codes {
		if candidate == code {
			return true
		}
	}
	return false
}
