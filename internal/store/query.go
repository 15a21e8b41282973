package store

import (
	"fmt"
)

// FindFunctionsAt returns every Decl/Impl/Call row (virtual or not) in
// path whose Range contains line:column, Decl/Impl rows first (the
// enclosing declaration or definition) and Call rows second (the
// narrower call-site ranges nested inside them). The final ORDER BY
// sorts the two call kinds (FuncCall=2, VirtualFuncCall=5) after every
// decl/impl kind. A Decl/Impl is "in path" when it (or, for a method,
// its enclosing class) is owned by that file; a Call is "in path" when
// the Impl it belongs to is.
func (s *Store) FindFunctionsAt(path string, line, column uint32) ([]*Function, error) {
	fileID, ok, err := s.FileID(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	rows, err := s.db.Query(`
		SELECT * FROM (
			SELECT f.id, f.kind, f.name, f.qualified_name, f.base_qualified_name, f.signature,
			       f.start_line, f.start_column, f.end_line, f.end_column,
			       f.source_file_id, f.header_file_id, f.class_id, f.func_impl_id, f.virtual_func_impl_id
			FROM functions f
			LEFT JOIN classes c ON c.id = f.class_id
			WHERE f.kind IN (?, ?, ?, ?)
			  AND (f.source_file_id = ? OR f.header_file_id = ?
			       OR c.source_file_id = ? OR c.header_file_id = ?)
			  AND (f.start_line < ? OR (f.start_line = ? AND f.start_column <= ?))
			  AND (f.end_line > ? OR (f.end_line = ? AND f.end_column > ?))

			UNION ALL

			SELECT f.id, f.kind, f.name, f.qualified_name, f.base_qualified_name, f.signature,
			       f.start_line, f.start_column, f.end_line, f.end_column,
			       f.source_file_id, f.header_file_id, f.class_id, f.func_impl_id, f.virtual_func_impl_id
			FROM functions f
			JOIN functions impl ON impl.id = COALESCE(f.func_impl_id, f.virtual_func_impl_id)
			LEFT JOIN classes ic ON ic.id = impl.class_id
			WHERE f.kind IN (?, ?)
			  AND (impl.source_file_id = ? OR impl.header_file_id = ?
			       OR ic.source_file_id = ? OR ic.header_file_id = ?)
			  AND (f.start_line < ? OR (f.start_line = ? AND f.start_column <= ?))
			  AND (f.end_line > ? OR (f.end_line = ? AND f.end_column > ?))
		)
		ORDER BY (kind IN (2, 5)), kind, id`,
		int(FuncDecl), int(FuncImpl), int(VirtualFuncDecl), int(VirtualFuncImpl),
		fileID, fileID, fileID, fileID,
		line, line, column,
		line, line, column,
		int(FuncCall), int(VirtualFuncCall),
		fileID, fileID, fileID, fileID,
		line, line, column,
		line, line, column)
	if err != nil {
		return nil, fmt.Errorf("find functions at %s:%d:%d: %w", path, line, column, err)
	}
	defer rows.Close()

	var out []*Function
	for rows.Next() {
		f, err := scanFunction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan function at %s:%d:%d: %w", path, line, column, err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// FindFunctionsByQualifiedName returns every Decl/Impl row (not calls)
// with the given fully qualified name, across every file and class.
// Supplements the core position-query surface with a name-based lookup
// the same callers-of/overrides-of surfaces need.
func (s *Store) FindFunctionsByQualifiedName(qualifiedName string) ([]*Function, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, name, qualified_name, base_qualified_name, signature,
		       start_line, start_column, end_line, end_column,
		       source_file_id, header_file_id, class_id, func_impl_id, virtual_func_impl_id
		FROM functions
		WHERE qualified_name = ? AND kind IN (?, ?, ?, ?)`,
		qualifiedName, int(FuncDecl), int(FuncImpl), int(VirtualFuncDecl), int(VirtualFuncImpl))
	if err != nil {
		return nil, fmt.Errorf("find functions named %q: %w", qualifiedName, err)
	}
	defer rows.Close()

	var out []*Function
	for rows.Next() {
		f, err := scanFunction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan function named %q: %w", qualifiedName, err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Callers returns every FuncCall row (VirtualFuncCall row when virtual
// is set) targeting the function with the given row id (a Decl or Impl,
// plain or virtual). Call rows
// carry the callee's identity and are owned by the caller's
// implementation, so the match is on the callee's qualified name; each
// returned Function's Range is the call site's location and its Owner
// names the caller's implementation.
func (s *Store) Callers(implID int64, virtual bool) ([]*Function, error) {
	kind := FuncCall
	if virtual {
		kind = VirtualFuncCall
	}
	rows, err := s.db.Query(`
		SELECT c.id, c.kind, c.name, c.qualified_name, c.base_qualified_name, c.signature,
		       c.start_line, c.start_column, c.end_line, c.end_column,
		       c.source_file_id, c.header_file_id, c.class_id, c.func_impl_id, c.virtual_func_impl_id
		FROM functions c
		JOIN functions callee ON callee.id = ?
		WHERE c.kind = ? AND c.qualified_name = callee.qualified_name`, implID, int(kind))
	if err != nil {
		return nil, fmt.Errorf("find callers of %d: %w", implID, err)
	}
	defer rows.Close()

	var out []*Function
	for rows.Next() {
		f, err := scanFunction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan caller of %d: %w", implID, err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Overrides returns every VirtualFuncDecl/VirtualFuncImpl row whose
// base_qualified_name equals baseQualifiedName: the root method's own
// rows together with every override (direct or transitive) of it, keyed
// the way the walker resolves CXXMethodDecl's "Overrides:"
// pseudo-children.
func (s *Store) Overrides(baseQualifiedName string) ([]*Function, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, name, qualified_name, base_qualified_name, signature,
		       start_line, start_column, end_line, end_column,
		       source_file_id, header_file_id, class_id, func_impl_id, virtual_func_impl_id
		FROM functions
		WHERE base_qualified_name = ? AND kind IN (?, ?)`,
		baseQualifiedName, int(VirtualFuncDecl), int(VirtualFuncImpl))
	if err != nil {
		return nil, fmt.Errorf("find overrides of %q: %w", baseQualifiedName, err)
	}
	defer rows.Close()

	var out []*Function
	for rows.Next() {
		f, err := scanFunction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan override of %q: %w", baseQualifiedName, err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
