package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/satyamisme/binwalk/pkg/logger"
)

// Execute runs an extractor for the provided signature match and returns a
// fully populated ExtractionResult; callers branch on Success, never on an
// error value.
//
// The output directory is <filePath>.extracted/<offset in hex>, created
// with mkdir -p semantics; if creation fails the call is abandoned without
// dispatching. A preferred extractor attached to the signature overrides
// defaultExtractor unconditionally. Success reported by the extractor is
// re-verified against the output directory contents, and on any failure the
// entire output directory is deleted.
//
// filePath should be absolute: it names both the extraction output location
// and, for whole-buffer matches, the symlink target of the carved file.
func Execute(fileData []byte, filePath string, signature *SignatureResult, defaultExtractor *Extractor) ExtractionResult {
	var result ExtractionResult

	outputDirectory, err := createOutputDirectory(filePath, signature.Offset)
	if err != nil {
		return result
	}

	if defaultExtractor == nil {
		// Callers must not request extraction without a definition.
		logger.Error("Attempted to extract data, but no extractor is defined",
			"signature", signature.Name)
	} else {
		definition := defaultExtractor
		if signature.PreferredExtractor != nil {
			definition = signature.PreferredExtractor
		}

		switch definition.Utility.Kind {
		case KindNone:
			panic("extract: an extractor of type None is invalid")

		case KindInternal:
			fn, ok := LookupBuiltin(definition.Utility.Builtin)
			if !ok {
				panic(fmt.Sprintf("extract: no built-in decoder registered for tag %q",
					definition.Utility.Builtin))
			}
			result = fn(fileData, signature.Offset, outputDirectory)
			result.Extractor = signature.Name + "_built_in"

		case KindExternal:
			proc, err := spawn(fileData, filePath, outputDirectory, signature, definition)
			if err != nil {
				logger.Error("Failed to spawn external extractor",
					"signature", signature.Name, "err", err)
			} else {
				result = procWait(proc)
				result.Extractor = definition.Utility.Command
			}
		}

		// These fields are owned by the orchestrator for all extractors;
		// the definition's DoNotRecurse overrides whatever the extractor
		// function set.
		result.OutputDirectory = outputDirectory
		result.DoNotRecurse = definition.DoNotRecurse

		// An extractor that claims success but produced nothing more than
		// empty files is downgraded to failure.
		if result.Success && !wasAnythingExtracted(outputDirectory) {
			result.Success = false
			logger.Warn("Extractor exited successfully, but no data was extracted",
				"signature", signature.Name, "dir", outputDirectory)
		}
	}

	if !result.Success {
		if err := os.RemoveAll(outputDirectory); err != nil {
			logger.Warn("Failed to clean up extraction directory after extraction failure",
				"dir", outputDirectory, "err", err)
		}
	}

	return result
}

// createOutputDirectory creates the per-offset extraction directory
// <filePath>.extracted/<offset in uppercase hex>.
func createOutputDirectory(filePath string, offset int) (string, error) {
	outputDirectory := fmt.Sprintf("%s.extracted%c%X", filePath, filepath.Separator, offset)

	if !CreateDirectory(outputDirectory, string(filepath.Separator)) {
		return "", errors.New("directory creation failed")
	}

	return outputDirectory, nil
}
