// Package walker drives recursive extraction: it scans a file for
// signatures, extracts each match through the extraction engine, then
// descends into the extracted output and repeats. Each extraction call is
// synchronous; parallelism exists only across independent top-level
// targets.
package walker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/satyamisme/binwalk/pkg/catalog"
	"github.com/satyamisme/binwalk/pkg/extract"
	"github.com/satyamisme/binwalk/pkg/logger"
	"github.com/satyamisme/binwalk/pkg/magic"
)

// DefaultMaxDepth bounds recursion into extracted output.
const DefaultMaxDepth = 8

// seenCacheSize bounds the duplicate-content cache. Entries are 32-byte
// hashes, so even large firmware trees stay cheap.
const seenCacheSize = 4096

// Options configures a Walker.
type Options struct {
	// Extract runs extractors on matches; when false the walker only scans.
	Extract bool

	// MaxDepth is the maximum recursion depth into extracted output.
	// Zero means DefaultMaxDepth.
	MaxDepth int

	// Workers is the number of top-level targets processed in parallel.
	// Zero means 1. A single file's extraction chain is always sequential.
	Workers int

	// Catalog resolves signature names to extractor definitions.
	Catalog *catalog.Catalog
}

// FileReport records the scan and extraction outcome for one file.
type FileReport struct {
	Path    string
	Depth   int
	Matches []extract.SignatureResult
	Results []extract.ExtractionResult
}

// Report aggregates the reports of every file visited.
type Report struct {
	mu    sync.Mutex
	Files []FileReport
}

func (r *Report) add(file FileReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Files = append(r.Files, file)
}

// Walker owns the recursion state for one run.
type Walker struct {
	opts   Options
	seen   *lru.Cache[[32]byte, struct{}]
	report *Report
}

// New returns a Walker for the given options.
func New(opts Options) (*Walker, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Defaults()
	}

	seen, err := lru.New[[32]byte, struct{}](seenCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create dedup cache: %w", err)
	}

	return &Walker{opts: opts, seen: seen, report: &Report{}}, nil
}

// Walk scans (and optionally extracts) every target and everything
// recursively extracted from them. Unreadable top-level targets abort the
// run; unreadable extracted files are logged and skipped.
func (w *Walker) Walk(ctx context.Context, targets []string) (*Report, error) {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(w.opts.Workers)

	for _, target := range targets {
		group.Go(func() error {
			return w.walkFile(ctx, target, 0)
		})
	}

	err := group.Wait()
	return w.report, err
}

func (w *Walker) walkFile(ctx context.Context, filePath string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", filePath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if depth == 0 {
			return fmt.Errorf("read %s: %w", filePath, err)
		}
		logger.Warn("Skipping unreadable extracted file", "path", absPath, "err", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	// Identical content is processed once per run; this breaks extraction
	// loops where an extractor reproduces its own input.
	sum := blake3.Sum256(data)
	if _, duplicate := w.seen.Get(sum); duplicate {
		logger.Debug("Skipping already-processed content", "path", absPath)
		return nil
	}
	w.seen.Add(sum, struct{}{})

	matches := magic.Scan(data)
	logger.Debug("Scanned file", "path", absPath, "depth", depth, "matches", len(matches))

	fileReport := FileReport{Path: absPath, Depth: depth, Matches: matches}

	var next []string
	if w.opts.Extract {
		for i := range matches {
			signature := &matches[i]
			definition := w.opts.Catalog.Get(signature.Name)
			if definition == nil {
				logger.Debug("No extractor configured", "signature", signature.Name)
				continue
			}

			result := extract.Execute(data, absPath, signature, definition)
			fileReport.Results = append(fileReport.Results, result)

			if !result.Success {
				logger.Warn("Extraction failed",
					"signature", signature.Name, "path", absPath, "offset", signature.Offset)
				continue
			}

			logger.Info("Extraction complete",
				"signature", signature.Name, "dir", result.OutputDirectory)
			if !result.DoNotRecurse && depth+1 <= w.opts.MaxDepth {
				next = append(next, extract.ExtractedFiles(result.OutputDirectory)...)
			}
		}
	}

	w.report.add(fileReport)

	for _, child := range next {
		if err := w.walkFile(ctx, child, depth+1); err != nil {
			return err
		}
	}

	return nil
}
