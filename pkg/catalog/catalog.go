// Package catalog maps signature names to extractor definitions. The
// built-in defaults cover the formats the scanner recognizes; a JSON config
// file can add new definitions or override defaults, including external
// commands with %e argument placeholders.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/satyamisme/binwalk/pkg/extract"
	"github.com/satyamisme/binwalk/pkg/extract/builtin"
)

// Catalog holds one extractor definition per signature name.
type Catalog struct {
	entries map[string]*extract.Extractor
}

// Get returns the extractor definition for a signature name, or nil when
// none is configured.
func (c *Catalog) Get(name string) *extract.Extractor {
	return c.entries[name]
}

// Set adds or replaces the definition for a signature name.
func (c *Catalog) Set(name string, definition *extract.Extractor) {
	c.entries[name] = definition
}

// Defaults returns the built-in extractor catalog.
func Defaults() *Catalog {
	return &Catalog{entries: map[string]*extract.Extractor{
		"gzip":     {Utility: extract.Internal(builtin.TagGzip), Extension: "gz"},
		"zlib":     {Utility: extract.Internal(builtin.TagZlib), Extension: "zlib"},
		"lzma":     {Utility: extract.Internal(builtin.TagLZMA), Extension: "lzma"},
		"xz":       {Utility: extract.Internal(builtin.TagXZ), Extension: "xz"},
		"lz4":      {Utility: extract.Internal(builtin.TagLZ4), Extension: "lz4"},
		"zstd":     {Utility: extract.Internal(builtin.TagZstd), Extension: "zst"},
		"tarball":  {Utility: extract.Internal(builtin.TagTar), Extension: "tar"},
		"zip":      {Utility: extract.Internal(builtin.TagZip), Extension: "zip"},
		"sevenzip": {Utility: extract.Internal(builtin.TagSevenZip), Extension: "7z"},
		"rar":      {Utility: extract.Internal(builtin.TagRar), Extension: "rar"},
		"squashfs": {
			Utility:   extract.External("unsquashfs"),
			Extension: "sqsh",
			Arguments: []string{"-quiet", "-d", "squashfs-root", extract.SourceFilePlaceholder},
		},
		"cpio": {
			Utility:   extract.External("cpio"),
			Extension: "cpio",
			Arguments: []string{"-d", "-i", "--no-absolute-filenames", "-F", extract.SourceFilePlaceholder},
			// cpio exits 2 on benign TOC mismatches while still extracting.
			ExitCodes: []int{2},
		},
	}}
}

// fileEntry mirrors one extractor definition in the JSON config schema.
// Exactly one of command/builtin must be set.
type fileEntry struct {
	Command      string   `json:"command,omitempty"`
	Builtin      string   `json:"builtin,omitempty"`
	Extension    string   `json:"extension"`
	Arguments    []string `json:"arguments"`
	ExitCodes    []int    `json:"exit_codes"`
	DoNotRecurse bool     `json:"do_not_recurse"`
}

type fileFormat struct {
	Extractors map[string]fileEntry `json:"extractors"`
}

func (e fileEntry) toExtractor() (*extract.Extractor, error) {
	var utility extract.ExtractorType
	switch {
	case e.Command != "" && e.Builtin != "":
		return nil, errors.New("command and builtin are mutually exclusive")
	case e.Command != "":
		utility = extract.External(e.Command)
	case e.Builtin != "":
		if _, ok := extract.LookupBuiltin(e.Builtin); !ok {
			return nil, fmt.Errorf("unknown built-in decoder %q", e.Builtin)
		}
		utility = extract.Internal(e.Builtin)
	default:
		return nil, errors.New("one of command or builtin is required")
	}

	return &extract.Extractor{
		Utility:      utility,
		Extension:    e.Extension,
		Arguments:    e.Arguments,
		ExitCodes:    e.ExitCodes,
		DoNotRecurse: e.DoNotRecurse,
	}, nil
}

// Load returns the default catalog overlaid with the definitions from the
// JSON config file at path. An empty path returns the defaults unchanged.
func Load(path string) (*Catalog, error) {
	c := Defaults()
	if path == "" {
		return c, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read extractor config: %w", err)
	}

	var cfg fileFormat
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse extractor config: %w", err)
	}

	for name, entry := range cfg.Extractors {
		definition, err := entry.toExtractor()
		if err != nil {
			return nil, fmt.Errorf("extractor %q: %w", name, err)
		}
		c.entries[name] = definition
	}

	return c, nil
}
