package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/clangcg/clangcg/internal/astdump"
	"github.com/clangcg/clangcg/internal/clangrun"
	"github.com/clangcg/clangcg/internal/compiledb"
	"github.com/clangcg/clangcg/internal/shellquote"
	"github.com/clangcg/clangcg/internal/store"
	"github.com/clangcg/clangcg/internal/walker"
)

// ingestOptions controls one compilation-database-driven ingestion run.
type ingestOptions struct {
	// write selects whether store mutations are committed (new-database)
	// or only kept for the duration of the run (dry-run): both walk every
	// TU through the same pipeline, but dry-run operates against a
	// scratch in-memory store that is discarded at the end of the run.
	// With write set, a TU already in the store is retracted before it is
	// walked again and its last-analyzed timestamp is stamped afterwards.
	write             bool
	ignoredNamespaces []string
}

// ingestResult summarizes one run across a compilation database.
type ingestResult struct {
	TotalUnits  int
	FailedUnits int
}

// runCompilationDatabase feeds every compiledb.Entry in dbPath through
// the full pipeline: for each entry it builds a LineSource over the
// compiler's stdout, parses it to a node forest, and hands the forest
// plus the TU's source path to the walker, which mutates the store
// through its get-or-add interface.
//
// Per-TU failures are logged to stderr and do not abort the run; a
// malformed compilation database itself is a fatal, run-ending error.
func runCompilationDatabase(dbPath string, st *store.Store, opts ingestOptions) (*ingestResult, error) {
	entries, err := compiledb.Load(dbPath)
	if err != nil {
		return nil, fmt.Errorf("loading compilation database: %w", err)
	}

	result := &ingestResult{TotalUnits: len(entries)}

	for _, entry := range entries {
		if err := ingestOne(st, entry, opts); err != nil {
			result.FailedUnits++
			fmt.Fprintf(os.Stderr, "clangcg: %s: %v\n", entry.File, err)
			continue
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "clangcg: indexed %s\n", entry.File)
		}
	}

	return result, nil
}

func ingestOne(st *store.Store, entry compiledb.Entry, opts ingestOptions) error {
	tuPath := entry.File
	if !filepath.IsAbs(tuPath) && entry.Directory != "" {
		tuPath = filepath.Join(entry.Directory, entry.File)
	}

	astDumpCommand := shellquote.RewriteForAstDump(entry.Command)

	proc, err := clangrun.Run(entry.Directory, astDumpCommand)
	if err != nil {
		return fmt.Errorf("running clang: %w", err)
	}
	if !proc.SkipToTranslationUnit() {
		return fmt.Errorf("clang produced no AST dump")
	}

	parser := astdump.NewParser(proc)
	nodes, err := parser.Parse()
	if err != nil {
		return fmt.Errorf("parsing AST dump: %w", err)
	}

	if opts.write {
		if _, ok, err := st.FileID(tuPath); err != nil {
			return fmt.Errorf("checking existing file: %w", err)
		} else if ok {
			if err := st.RemoveFileCascade(tuPath); err != nil {
				return fmt.Errorf("retracting stale translation unit: %w", err)
			}
		}
	}

	w := walker.New(st, opts.ignoredNamespaces)
	if err := w.Walk(nodes, tuPath); err != nil {
		return fmt.Errorf("walking AST: %w", err)
	}

	if opts.write {
		if err := st.TouchLastAnalyzed(w.TUFileID(), time.Now().Unix()); err != nil {
			return fmt.Errorf("updating last-analyzed timestamp: %w", err)
		}
	}

	return nil
}
