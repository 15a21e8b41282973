package snapshot

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/clangcg/clangcg/internal/store"
)

func loadFiles(db *sql.DB, kind store.FileKind) ([]FileSnapshot, error) {
	rows, err := db.Query(`SELECT id, path FROM files WHERE kind = ? ORDER BY id`, int(kind))
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	var out []FileSnapshot
	ids := map[string]int64{}
	for rows.Next() {
		var id int64
		var path string
		if err := rows.Scan(&id, &path); err != nil {
			return nil, fmt.Errorf("scanning file row: %w", err)
		}
		out = append(out, FileSnapshot{Path: path})
		ids[path] = id
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if kind == store.Source {
		for i := range out {
			id := ids[out[i].Path]
			headers, err := loadIncludedHeaders(db, id)
			if err != nil {
				return nil, err
			}
			out[i].Headers = headers
		}
	}
	return out, nil
}

func loadIncludedHeaders(db *sql.DB, sourceFileID int64) ([]string, error) {
	rows, err := db.Query(`
		SELECT f.path FROM include_edges e
		JOIN files f ON f.id = e.header_file_id
		WHERE e.source_file_id = ?`, sourceFileID)
	if err != nil {
		return nil, fmt.Errorf("querying include edges: %w", err)
	}
	defer rows.Close()

	var headers []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		headers = append(headers, path)
	}
	sort.Strings(headers)
	return headers, rows.Err()
}

// fileIDToPath maps every file id (source or header) to its path, for
// rendering owner references by path instead of id.
func fileIDToPath(db *sql.DB) (map[int64]string, error) {
	rows, err := db.Query(`SELECT id, path FROM files`)
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	out := map[int64]string{}
	for rows.Next() {
		var id int64
		var path string
		if err := rows.Scan(&id, &path); err != nil {
			return nil, err
		}
		out[id] = path
	}
	return out, rows.Err()
}

// loadClasses returns a classID -> qualifiedName map (for owner
// rendering elsewhere) along with the rendered snapshots.
func loadClasses(db *sql.DB, fileNames map[int64]string) (map[int64]string, []ClassSnapshot, error) {
	rows, err := db.Query(`
		SELECT id, qualified_name, source_file_id, header_file_id, class_id
		FROM classes`)
	if err != nil {
		return nil, nil, fmt.Errorf("querying classes: %w", err)
	}
	defer rows.Close()

	type rawClass struct {
		id, sourceFileID, headerFileID, classID sql.NullInt64
		qualifiedName                           string
	}
	var raw []rawClass
	names := map[int64]string{}
	for rows.Next() {
		var c rawClass
		var id int64
		if err := rows.Scan(&id, &c.qualifiedName, &c.sourceFileID, &c.headerFileID, &c.classID); err != nil {
			return nil, nil, err
		}
		c.id = sql.NullInt64{Int64: id, Valid: true}
		raw = append(raw, c)
		names[id] = c.qualifiedName
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	bases, err := loadInheritance(db, names)
	if err != nil {
		return nil, nil, err
	}

	out := make([]ClassSnapshot, 0, len(raw))
	for _, c := range raw {
		out = append(out, ClassSnapshot{
			QualifiedName: c.qualifiedName,
			Owner:         renderOwner(c.sourceFileID, c.headerFileID, c.classID, sql.NullInt64{}, sql.NullInt64{}, fileNames, names, nil),
			Bases:         bases[c.id.Int64],
		})
	}
	return names, out, nil
}

func loadInheritance(db *sql.DB, classNames map[int64]string) (map[int64][]string, error) {
	rows, err := db.Query(`SELECT parent_class_id, child_class_id FROM inheritance_edges`)
	if err != nil {
		return nil, fmt.Errorf("querying inheritance edges: %w", err)
	}
	defer rows.Close()

	out := map[int64][]string{}
	for rows.Next() {
		var parentID, childID int64
		if err := rows.Scan(&parentID, &childID); err != nil {
			return nil, err
		}
		out[childID] = append(out[childID], classNames[parentID])
	}
	for id := range out {
		sort.Strings(out[id])
	}
	return out, rows.Err()
}

// renderOwner renders an owner triple/pair as a descriptive string
// ("source:path", "header:path", "class:Qualified::Name",
// "impl:Qualified::Name", "virtual-impl:Qualified::Name").
func renderOwner(sourceFileID, headerFileID, classID, funcImplID, virtualFuncImplID sql.NullInt64,
	fileNames, classNames, funcNames map[int64]string) string {
	switch {
	case sourceFileID.Valid:
		return "source:" + fileNames[sourceFileID.Int64]
	case headerFileID.Valid:
		return "header:" + fileNames[headerFileID.Int64]
	case classID.Valid:
		return "class:" + classNames[classID.Int64]
	case funcImplID.Valid:
		return "impl:" + funcNames[funcImplID.Int64]
	case virtualFuncImplID.Valid:
		return "virtual-impl:" + funcNames[virtualFuncImplID.Int64]
	default:
		return ""
	}
}

// loadFunctions returns a function-id -> qualifiedName map (used to
// render call-edge endpoints) along with the Decl and Impl snapshots.
// Call rows are handled separately by loadCalls.
func loadFunctions(db *sql.DB, fileNames, classNames map[int64]string) (map[int64]string, []FunctionSnapshot, []FunctionSnapshot, error) {
	rows, err := db.Query(`
		SELECT id, kind, qualified_name, base_qualified_name, signature,
		       source_file_id, header_file_id, class_id
		FROM functions
		WHERE kind IN (?, ?, ?, ?)`,
		int(store.FuncDecl), int(store.FuncImpl), int(store.VirtualFuncDecl), int(store.VirtualFuncImpl))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("querying functions: %w", err)
	}
	defer rows.Close()

	names := map[int64]string{}
	var decls, impls []FunctionSnapshot
	for rows.Next() {
		var id int64
		var kind int
		var qualifiedName, signature string
		var baseQN sql.NullString
		var sourceFileID, headerFileID, classID sql.NullInt64
		if err := rows.Scan(&id, &kind, &qualifiedName, &baseQN, &signature, &sourceFileID, &headerFileID, &classID); err != nil {
			return nil, nil, nil, err
		}

		fk := store.FuncKind(kind)
		names[id] = qualifiedName

		snap := FunctionSnapshot{
			Kind:              fk.String(),
			QualifiedName:     qualifiedName,
			Signature:         signature,
			Owner:             renderOwner(sourceFileID, headerFileID, classID, sql.NullInt64{}, sql.NullInt64{}, fileNames, classNames, nil),
			BaseQualifiedName: baseQN.String,
		}

		switch fk {
		case store.FuncDecl, store.VirtualFuncDecl:
			decls = append(decls, snap)
		case store.FuncImpl, store.VirtualFuncImpl:
			impls = append(impls, snap)
		}
	}
	return names, decls, impls, rows.Err()
}

func loadCalls(db *sql.DB, funcNames map[int64]string) ([]CallSnapshot, error) {
	rows, err := db.Query(`
		SELECT kind, qualified_name, start_line, start_column, end_line, end_column,
		       func_impl_id, virtual_func_impl_id
		FROM functions
		WHERE kind IN (?, ?)`, int(store.FuncCall), int(store.VirtualFuncCall))
	if err != nil {
		return nil, fmt.Errorf("querying calls: %w", err)
	}
	defer rows.Close()

	var out []CallSnapshot
	for rows.Next() {
		var kind int
		var calleeQN string
		var startLine, startColumn, endLine, endColumn uint32
		var funcImplID, virtualFuncImplID sql.NullInt64
		if err := rows.Scan(&kind, &calleeQN, &startLine, &startColumn, &endLine, &endColumn, &funcImplID, &virtualFuncImplID); err != nil {
			return nil, err
		}

		var callerQN string
		if funcImplID.Valid {
			callerQN = funcNames[funcImplID.Int64]
		} else if virtualFuncImplID.Valid {
			callerQN = funcNames[virtualFuncImplID.Int64]
		}

		out = append(out, CallSnapshot{
			CallerQualifiedName: callerQN,
			CalleeQualifiedName: calleeQN,
			Virtual:             store.FuncKind(kind) == store.VirtualFuncCall,
			StartLine:           startLine,
			StartColumn:         startColumn,
			EndLine:             endLine,
			EndColumn:           endColumn,
		})
	}
	return out, rows.Err()
}

func sortSnapshot(s *Snapshot) {
	sort.Slice(s.SourceFiles, func(i, j int) bool { return s.SourceFiles[i].Path < s.SourceFiles[j].Path })
	sort.Slice(s.HeaderFiles, func(i, j int) bool { return s.HeaderFiles[i].Path < s.HeaderFiles[j].Path })
	sort.Slice(s.Classes, func(i, j int) bool { return s.Classes[i].QualifiedName < s.Classes[j].QualifiedName })
	sort.Slice(s.Decls, func(i, j int) bool { return snapshotLess(s.Decls[i], s.Decls[j]) })
	sort.Slice(s.Impls, func(i, j int) bool { return snapshotLess(s.Impls[i], s.Impls[j]) })
	sort.Slice(s.Calls, func(i, j int) bool {
		a, b := s.Calls[i], s.Calls[j]
		if a.CallerQualifiedName != b.CallerQualifiedName {
			return a.CallerQualifiedName < b.CallerQualifiedName
		}
		if a.CalleeQualifiedName != b.CalleeQualifiedName {
			return a.CalleeQualifiedName < b.CalleeQualifiedName
		}
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return a.StartColumn < b.StartColumn
	})
}

func snapshotLess(a, b FunctionSnapshot) bool {
	if a.QualifiedName != b.QualifiedName {
		return a.QualifiedName < b.QualifiedName
	}
	return a.Signature < b.Signature
}
