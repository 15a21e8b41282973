package store

// schemaSQL defines the relational schema for the call-graph database.
// Every row exists in exactly one database: a single source_file/header
// owns the file it names; a class, decl, impl, or call row owns exactly
// one of its nullable owner columns (the "owner triple").
const schemaSQL = `
CREATE TABLE IF NOT EXISTS files (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL,
    kind INTEGER NOT NULL,            -- 0 = source, 1 = header
    last_analyzed_epoch INTEGER NOT NULL DEFAULT 0,
    UNIQUE (path, kind)                -- a Source and a Header may share a path
);

CREATE TABLE IF NOT EXISTS include_edges (
    source_file_id INTEGER NOT NULL,
    header_file_id INTEGER NOT NULL,
    PRIMARY KEY (source_file_id, header_file_id),
    FOREIGN KEY (source_file_id) REFERENCES files(id) ON DELETE CASCADE,
    FOREIGN KEY (header_file_id) REFERENCES files(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS classes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    qualified_name TEXT NOT NULL UNIQUE,
    source_file_id INTEGER,
    header_file_id INTEGER,
    class_id INTEGER,
    FOREIGN KEY (source_file_id) REFERENCES files(id) ON DELETE CASCADE,
    FOREIGN KEY (header_file_id) REFERENCES files(id) ON DELETE CASCADE,
    FOREIGN KEY (class_id) REFERENCES classes(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS inheritance_edges (
    parent_class_id INTEGER NOT NULL,
    child_class_id INTEGER NOT NULL,
    PRIMARY KEY (parent_class_id, child_class_id),
    FOREIGN KEY (parent_class_id) REFERENCES classes(id) ON DELETE CASCADE,
    FOREIGN KEY (child_class_id) REFERENCES classes(id) ON DELETE CASCADE
);

-- functions holds all six Decl/Impl/Call x plain/virtual variants,
-- discriminated by kind. Exactly one of source_file_id/header_file_id/
-- class_id is set for Decl and Impl rows; exactly one of
-- func_impl_id/virtual_func_impl_id is set for Call rows.
CREATE TABLE IF NOT EXISTS functions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    kind INTEGER NOT NULL,
    name TEXT NOT NULL,
    qualified_name TEXT NOT NULL,
    base_qualified_name TEXT,
    signature TEXT NOT NULL,
    start_line INTEGER NOT NULL,
    start_column INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    end_column INTEGER NOT NULL,
    source_file_id INTEGER,
    header_file_id INTEGER,
    class_id INTEGER,
    func_impl_id INTEGER,
    virtual_func_impl_id INTEGER,
    FOREIGN KEY (source_file_id) REFERENCES files(id) ON DELETE CASCADE,
    FOREIGN KEY (header_file_id) REFERENCES files(id) ON DELETE CASCADE,
    FOREIGN KEY (class_id) REFERENCES classes(id) ON DELETE CASCADE,
    FOREIGN KEY (func_impl_id) REFERENCES functions(id) ON DELETE CASCADE,
    FOREIGN KEY (virtual_func_impl_id) REFERENCES functions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_functions_kind ON functions(kind);
CREATE INDEX IF NOT EXISTS idx_functions_qname ON functions(qualified_name);
CREATE INDEX IF NOT EXISTS idx_functions_source_file ON functions(source_file_id);
CREATE INDEX IF NOT EXISTS idx_functions_header_file ON functions(header_file_id);
CREATE INDEX IF NOT EXISTS idx_functions_class ON functions(class_id);
CREATE INDEX IF NOT EXISTS idx_functions_func_impl ON functions(func_impl_id);
CREATE INDEX IF NOT EXISTS idx_functions_virtual_impl ON functions(virtual_func_impl_id);
CREATE INDEX IF NOT EXISTS idx_classes_source_file ON classes(source_file_id);
CREATE INDEX IF NOT EXISTS idx_classes_header_file ON classes(header_file_id);
`

// initSchema creates the tables and indexes if they don't already exist.
// Dolt and modernc.org/sqlite both speak this dialect through
// database/sql, so one statement set serves both backends; foreign keys
// must be turned on per-connection for the sqlite backend (see db.go).
func (s *Store) initSchema() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}
