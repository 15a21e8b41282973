package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
)

// ClassifyFile reports the FileKind for path, per the extension table in
// SourceExtensions: anything not recognized as a source extension is a
// header.
func ClassifyFile(path string) FileKind {
	ext := strings.ToLower(filepath.Ext(path))
	if SourceExtensions[ext] {
		return Source
	}
	return Header
}

// GetOrAddFile returns the id of the files row for path, inserting one
// with the given kind if it doesn't already exist. Idempotent: calling
// it twice with the same path and kind returns the same id; the same
// path with the other kind gets a row of its own.
func (s *Store) GetOrAddFile(path string, kind FileKind) (int64, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM files WHERE path = ? AND kind = ?`, path, int(kind)).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("lookup file %q: %w", path, err)
	}

	res, err := s.db.Exec(`INSERT INTO files (path, kind) VALUES (?, ?)`, path, int(kind))
	if err != nil {
		return 0, fmt.Errorf("insert file %q: %w", path, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted file id %q: %w", path, err)
	}
	return id, nil
}

// GetOrAddSourceFile is GetOrAddFile with kind fixed to Source.
func (s *Store) GetOrAddSourceFile(path string) (int64, error) {
	return s.GetOrAddFile(path, Source)
}

// GetOrAddHeaderFile is GetOrAddFile with kind fixed to Header.
func (s *Store) GetOrAddHeaderFile(path string) (int64, error) {
	return s.GetOrAddFile(path, Header)
}

// AddInclude records that sourceFileID includes headerFileID. Idempotent.
func (s *Store) AddInclude(sourceFileID, headerFileID int64) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO include_edges (source_file_id, header_file_id)
		VALUES (?, ?)`, sourceFileID, headerFileID)
	if err != nil {
		return fmt.Errorf("add include edge %d -> %d: %w", sourceFileID, headerFileID, err)
	}
	return nil
}

// RemoveFileCascade deletes the files row for path and, via ON DELETE
// CASCADE, every class, decl/impl/call, include edge, and inheritance
// edge owned (directly or transitively) by that file. This is the
// reanalysis entry point: a translation unit is always fully retracted
// before its fresh AST dump is walked back in.
func (s *Store) RemoveFileCascade(path string) error {
	_, err := s.db.Exec(`DELETE FROM files WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("remove file %q: %w", path, err)
	}
	return nil
}

// TouchLastAnalyzed stamps fileID's last_analyzed_epoch, called by the
// new-database driver once a translation unit has been fully walked.
func (s *Store) TouchLastAnalyzed(fileID int64, epochSeconds int64) error {
	_, err := s.db.Exec(`UPDATE files SET last_analyzed_epoch = ? WHERE id = ?`, epochSeconds, fileID)
	if err != nil {
		return fmt.Errorf("touch last_analyzed for file %d: %w", fileID, err)
	}
	return nil
}

// FileID looks up the id of an already-recorded file by path.
func (s *Store) FileID(path string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM files WHERE path = ?`, path).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup file %q: %w", path, err)
	}
	return id, true, nil
}
