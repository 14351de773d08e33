package extract

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// writeSource drops a source file for extraction tests and returns its
// path and contents.
func writeSource(t *testing.T, size int) (string, []byte) {
	t.Helper()
	data := bytes.Repeat([]byte{0xAB, 0xCD}, size/2)
	filePath := filepath.Join(t.TempDir(), "firmware.bin")
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return filePath, data
}

func TestExecuteExternalSuccess(t *testing.T) {
	filePath, data := writeSource(t, 64)

	definition := &Extractor{
		Utility:   External("sh"),
		Extension: "bin",
		Arguments: []string{"-c", `cp "$0" output.bin`, SourceFilePlaceholder},
	}
	signature := &SignatureResult{Name: "blob", Offset: 16, Size: 32}

	result := Execute(data, filePath, signature, definition)
	if !result.Success {
		t.Fatal("extraction reported failure")
	}
	if result.Extractor != "sh" {
		t.Errorf("result.Extractor = %q, want %q", result.Extractor, "sh")
	}

	wantDir := filePath + ".extracted" + string(filepath.Separator) + "10"
	if result.OutputDirectory != wantDir {
		t.Errorf("result.OutputDirectory = %q, want %q", result.OutputDirectory, wantDir)
	}

	output, err := os.ReadFile(filepath.Join(wantDir, "output.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(output, data[16:48]) {
		t.Error("extracted output does not match the carved region")
	}

	// The carved input file must be gone once the process has exited.
	if _, err := os.Lstat(filepath.Join(wantDir, "blob_10.bin")); !os.IsNotExist(err) {
		t.Errorf("carved file still present after wait: %v", err)
	}
}

func TestExecuteWholeFileMatchUsesSymlink(t *testing.T) {
	filePath, data := writeSource(t, 64)

	// The command fails unless the carved path is a symlink, so a
	// successful result proves the no-copy optimization was taken.
	definition := &Extractor{
		Utility:   External("sh"),
		Extension: "bin",
		Arguments: []string{"-c", `[ -h "$0" ] && cp "$0" copy.bin`, SourceFilePlaceholder},
	}
	signature := &SignatureResult{Name: "whole", Offset: 0, Size: len(data)}

	result := Execute(data, filePath, signature, definition)
	if !result.Success {
		t.Fatal("extraction reported failure; carved path was not a symlink")
	}

	copied, err := os.ReadFile(filepath.Join(result.OutputDirectory, "copy.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(copied, data) {
		t.Error("symlinked carve did not resolve to the source contents")
	}
}

func TestExecuteEmptyOutputDowngradedToFailure(t *testing.T) {
	filePath, data := writeSource(t, 32)

	definition := &Extractor{
		Utility:   External("sh"),
		Extension: "bin",
		Arguments: []string{"-c", "true"},
	}
	signature := &SignatureResult{Name: "silent", Offset: 4, Size: 8}

	result := Execute(data, filePath, signature, definition)
	if result.Success {
		t.Fatal("extractor that produced nothing was reported successful")
	}

	// Cleanup on failure removes the whole per-offset directory.
	if _, err := os.Stat(result.OutputDirectory); result.OutputDirectory != "" && !os.IsNotExist(err) {
		t.Errorf("output directory still present after failure: %v", err)
	}
	if _, err := os.Stat(filePath + ".extracted" + string(filepath.Separator) + "4"); !os.IsNotExist(err) {
		t.Errorf("output directory still present after failure: %v", err)
	}
}

func TestExecuteExitCodePolicy(t *testing.T) {
	tests := []struct {
		name      string
		script    string
		exitCodes []int
		want      bool
	}{
		{
			name:   "exit 0 succeeds with empty accepted set",
			script: "echo ok > out.txt; exit 0",
			want:   true,
		},
		{
			name:      "exit 0 succeeds even when the accepted set omits it",
			script:    "echo ok > out.txt; exit 0",
			exitCodes: []int{5},
			want:      true,
		},
		{
			name:      "accepted non-zero code succeeds",
			script:    "echo ok > out.txt; exit 3",
			exitCodes: []int{3},
			want:      true,
		},
		{
			name:   "unlisted non-zero code fails",
			script: "echo ok > out.txt; exit 3",
			want:   false,
		},
		{
			name:   "termination by signal fails",
			script: "echo ok > out.txt; kill -9 $$",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filePath, data := writeSource(t, 32)

			definition := &Extractor{
				Utility:   External("sh"),
				Extension: "bin",
				Arguments: []string{"-c", tt.script},
				ExitCodes: tt.exitCodes,
			}
			signature := &SignatureResult{Name: "code", Offset: 4, Size: 8}

			result := Execute(data, filePath, signature, definition)
			if result.Success != tt.want {
				t.Errorf("Success = %v, want %v", result.Success, tt.want)
			}
			if !tt.want {
				if _, err := os.Stat(result.OutputDirectory); !os.IsNotExist(err) {
					t.Errorf("output directory still present after failure: %v", err)
				}
			}
		})
	}
}

func TestExecuteInternalExtractor(t *testing.T) {
	RegisterBuiltin("test-internal", func(data []byte, offset int, outputDir string) ExtractionResult {
		payload := data[offset:]
		if !CreateFile("inner.bin", payload, 0, len(payload), outputDir) {
			return ExtractionResult{}
		}
		// Execute must override this with the definition's value.
		return ExtractionResult{Success: true, DoNotRecurse: true}
	})

	filePath, data := writeSource(t, 32)

	definition := &Extractor{Utility: Internal("test-internal")}
	signature := &SignatureResult{Name: "custom", Offset: 8, Size: 24}

	result := Execute(data, filePath, signature, definition)
	if !result.Success {
		t.Fatal("internal extraction reported failure")
	}
	if result.Extractor != "custom_built_in" {
		t.Errorf("result.Extractor = %q, want %q", result.Extractor, "custom_built_in")
	}
	if result.DoNotRecurse {
		t.Error("definition's DoNotRecurse=false did not override the extractor's value")
	}

	inner, err := os.ReadFile(filepath.Join(result.OutputDirectory, "inner.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(inner, data[8:]) {
		t.Error("internal extractor output mismatch")
	}
}

func TestExecutePreferredExtractorOverridesDefault(t *testing.T) {
	RegisterBuiltin("test-preferred", func(data []byte, offset int, outputDir string) ExtractionResult {
		if !CreateFile("preferred.txt", []byte("yes"), 0, 3, outputDir) {
			return ExtractionResult{}
		}
		return ExtractionResult{Success: true}
	})

	filePath, data := writeSource(t, 32)

	defaultDefinition := &Extractor{
		Utility:   External("sh"),
		Extension: "bin",
		Arguments: []string{"-c", "echo default > default.txt"},
	}
	signature := &SignatureResult{
		Name:               "pick",
		Offset:             0,
		Size:               16,
		PreferredExtractor: &Extractor{Utility: Internal("test-preferred"), DoNotRecurse: true},
	}

	result := Execute(data, filePath, signature, defaultDefinition)
	if !result.Success {
		t.Fatal("extraction reported failure")
	}
	if result.Extractor != "pick_built_in" {
		t.Errorf("result.Extractor = %q; preferred extractor was not used", result.Extractor)
	}
	if !result.DoNotRecurse {
		t.Error("DoNotRecurse not copied from the preferred definition")
	}
	if _, err := os.Stat(filepath.Join(result.OutputDirectory, "default.txt")); !os.IsNotExist(err) {
		t.Error("default extractor ran despite a preferred override")
	}
}

func TestExecuteNoExtractorDefined(t *testing.T) {
	filePath, data := writeSource(t, 32)
	signature := &SignatureResult{Name: "orphan", Offset: 0, Size: 16}

	result := Execute(data, filePath, signature, nil)
	if result.Success {
		t.Fatal("extraction without a definition reported success")
	}
	if _, err := os.Stat(filePath + ".extracted" + string(filepath.Separator) + "0"); !os.IsNotExist(err) {
		t.Errorf("output directory still present after failure: %v", err)
	}
}

func TestExecuteNoneExtractorPanics(t *testing.T) {
	filePath, data := writeSource(t, 32)
	signature := &SignatureResult{Name: "none", Offset: 0, Size: 16}

	defer func() {
		if recover() == nil {
			t.Error("Execute with an ExtractorType of None did not panic")
		}
	}()
	Execute(data, filePath, signature, &Extractor{})
}

func TestSpawnRejectsNonExternal(t *testing.T) {
	filePath, data := writeSource(t, 32)
	signature := &SignatureResult{Name: "bad", Offset: 0, Size: 16}

	defer func() {
		if recover() == nil {
			t.Error("spawn with an internal extractor did not panic")
		}
	}()
	_, _ = spawn(data, filePath, t.TempDir(), signature, &Extractor{Utility: Internal("gzip")})
}

func TestExecuteSpawnFailureIsRecoverable(t *testing.T) {
	filePath, data := writeSource(t, 32)

	definition := &Extractor{
		Utility:   External("binwalk-test-no-such-binary"),
		Extension: "bin",
	}
	signature := &SignatureResult{Name: "missing", Offset: 4, Size: 8}

	result := Execute(data, filePath, signature, definition)
	if result.Success {
		t.Fatal("spawn failure reported success")
	}
	if _, err := os.Stat(result.OutputDirectory); !os.IsNotExist(err) {
		t.Errorf("output directory still present after spawn failure: %v", err)
	}
}
