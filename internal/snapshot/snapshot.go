// Package snapshot serializes a store.Store's contents into a
// canonical, id-free tree for golden-file comparisons. Raw database ids
// are arbitrary autoincrement values that depend on insertion order, so
// a snapshot keys everything by qualified name and file path instead:
// two stores built from equivalent input in different orders render the
// same snapshot.
package snapshot

import (
	"encoding/json"

	"github.com/clangcg/clangcg/internal/store"
)

// Snapshot is the canonical, comparable rendering of a store's contents.
type Snapshot struct {
	SourceFiles []FileSnapshot     `json:"source_files"`
	HeaderFiles []FileSnapshot     `json:"header_files"`
	Classes     []ClassSnapshot    `json:"classes"`
	Decls       []FunctionSnapshot `json:"decls"`
	Impls       []FunctionSnapshot `json:"impls"`
	Calls       []CallSnapshot     `json:"calls"`
}

// FileSnapshot describes one source or header file row.
type FileSnapshot struct {
	Path    string   `json:"path"`
	Headers []string `json:"headers,omitempty"` // included header paths, sorted
}

// ClassSnapshot describes one class row, owner-agnostic: owner is
// rendered as a descriptive key rather than a raw id.
type ClassSnapshot struct {
	QualifiedName string   `json:"qualified_name"`
	Owner         string   `json:"owner"`
	Bases         []string `json:"bases,omitempty"` // parent qualified names, sorted
}

// FunctionSnapshot describes one Decl or Impl row.
type FunctionSnapshot struct {
	Kind              string `json:"kind"`
	QualifiedName     string `json:"qualified_name"`
	Signature         string `json:"signature"`
	Owner             string `json:"owner"`
	BaseQualifiedName string `json:"base_qualified_name,omitempty"`
}

// CallSnapshot describes one call edge, keyed by the caller's and
// callee's qualified names rather than ids (both may appear more than
// once per caller, hence the slice form rather than a map).
type CallSnapshot struct {
	CallerQualifiedName string `json:"caller_qualified_name"`
	CalleeQualifiedName string `json:"callee_qualified_name"`
	Virtual             bool   `json:"virtual"`
	StartLine           uint32 `json:"start_line"`
	StartColumn         uint32 `json:"start_column"`
	EndLine             uint32 `json:"end_line"`
	EndColumn           uint32 `json:"end_column"`
}

// Take queries every table in st and renders a canonical Snapshot.
func Take(st *store.Store) (*Snapshot, error) {
	snap := &Snapshot{}

	db := st.DB()

	sourceFiles, err := loadFiles(db, store.Source)
	if err != nil {
		return nil, err
	}
	headerFiles, err := loadFiles(db, store.Header)
	if err != nil {
		return nil, err
	}
	snap.SourceFiles = sourceFiles
	snap.HeaderFiles = headerFiles

	fileNames, err := fileIDToPath(db)
	if err != nil {
		return nil, err
	}

	classNames, classes, err := loadClasses(db, fileNames)
	if err != nil {
		return nil, err
	}
	snap.Classes = classes

	funcQNames, decls, impls, err := loadFunctions(db, fileNames, classNames)
	if err != nil {
		return nil, err
	}
	snap.Decls = decls
	snap.Impls = impls

	calls, err := loadCalls(db, funcQNames)
	if err != nil {
		return nil, err
	}
	snap.Calls = calls

	sortSnapshot(snap)
	return snap, nil
}

// JSON renders the snapshot as indented, deterministic JSON suitable
// for golden-file comparison.
func (s *Snapshot) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
