// Package extract implements the extraction engine: chroot-confined
// filesystem primitives, extractor definitions, and the orchestrator that
// carves signature matches to disk and expands them with built-in decoders
// or external utilities.
package extract

// SourceFilePlaceholder in external command arguments is replaced with the
// path to the carved input file.
const SourceFilePlaceholder = "%e"

// InternalExtractor is the call interface every built-in decoder conforms
// to. Arguments: file data, match offset, output directory (already created
// by the orchestrator). Implementations populate only the Size and Success
// fields of the returned result; Execute owns the rest.
type InternalExtractor func(data []byte, offset int, outputDir string) ExtractionResult

// ExtractorKind discriminates ExtractorType values.
type ExtractorKind int

const (
	// KindNone means no extractor is configured. Invoking an extractor of
	// this kind is a programming error, not a runtime condition.
	KindNone ExtractorKind = iota

	// KindExternal runs an external command.
	KindExternal

	// KindInternal calls a built-in decoder looked up by its registry tag.
	KindInternal
)

// ExtractorType selects either an external command or a built-in decoder.
// Built-in decoders are referenced by registry tag rather than by function
// value so extractor definitions stay comparable and serializable.
type ExtractorType struct {
	Kind    ExtractorKind `json:"kind"`
	Command string        `json:"command,omitempty"` // external executable name or path
	Builtin string        `json:"builtin,omitempty"` // built-in decoder registry tag
}

// External returns an ExtractorType that runs the given external command.
func External(command string) ExtractorType {
	return ExtractorType{Kind: KindExternal, Command: command}
}

// Internal returns an ExtractorType that calls the built-in decoder
// registered under tag.
func Internal(tag string) ExtractorType {
	return ExtractorType{Kind: KindInternal, Builtin: tag}
}

// Extractor describes how to run one extractor.
type Extractor struct {
	// External command or built-in decoder to execute
	Utility ExtractorType

	// File extension given to the carved file when an external command is used
	Extension string

	// Arguments to pass to the external command; every argument equal to
	// SourceFilePlaceholder is replaced with the carved file's path
	Arguments []string

	// Additional exit codes, beyond 0, treated as success
	ExitCodes []int

	// Set to true to disable recursion into this extractor's extracted files
	DoNotRecurse bool
}

// ExtractionResult stores information about a completed extraction.
// When constructing this structure, only the Size and Success fields should
// be populated; the others are automatically populated by Execute.
type ExtractionResult struct {
	// Size of the data consumed during extraction, if known
	Size *int64 `json:"size,omitempty"`

	// Extractor success status
	Success bool `json:"success"`

	// Extractor name, automatically populated by Execute
	Extractor string `json:"extractor"`

	// Copied from the Extractor definition by Execute; the definition's
	// value overrides whatever the extractor function itself set
	DoNotRecurse bool `json:"do_not_recurse"`

	// The output directory where the extractor dropped its files,
	// automatically populated by Execute
	OutputDirectory string `json:"output_directory"`
}

// SignatureResult describes one signature match located by the scanner.
// The extraction engine consumes these read-only.
type SignatureResult struct {
	// Short format name; selects the extractor definition
	Name string

	// Human readable description of the match
	Description string

	// Byte offset of the match within the scanned file
	Offset int

	// Size of the matched region; formats that cannot cheaply declare
	// their length report the remainder of the buffer
	Size int

	// Overrides the catalog default extractor for this specific match
	PreferredExtractor *Extractor
}
