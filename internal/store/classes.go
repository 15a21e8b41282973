package store

import (
	"database/sql"
	"fmt"
)

// ownerColumns returns the (source_file_id, header_file_id, class_id)
// triple for owner, with exactly one non-nil per the owner-triple
// invariant.
func ownerColumns(o Owner) (sourceFileID, headerFileID, classID sql.NullInt64) {
	switch o.Kind {
	case OwnedBySource:
		sourceFileID = sql.NullInt64{Int64: o.ID, Valid: true}
	case OwnedByHeader:
		headerFileID = sql.NullInt64{Int64: o.ID, Valid: true}
	case OwnedByClass:
		classID = sql.NullInt64{Int64: o.ID, Valid: true}
	}
	return
}

// GetOrAddClass returns the id of the classes row for qualifiedName,
// inserting one owned by owner if it doesn't already exist.
func (s *Store) GetOrAddClass(qualifiedName string, owner Owner) (int64, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM classes WHERE qualified_name = ?`, qualifiedName).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("lookup class %q: %w", qualifiedName, err)
	}

	sourceFileID, headerFileID, classID := ownerColumns(owner)
	res, err := s.db.Exec(`
		INSERT INTO classes (qualified_name, source_file_id, header_file_id, class_id)
		VALUES (?, ?, ?, ?)`, qualifiedName, sourceFileID, headerFileID, classID)
	if err != nil {
		return 0, fmt.Errorf("insert class %q: %w", qualifiedName, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted class id %q: %w", qualifiedName, err)
	}
	return id, nil
}

// ClassID looks up the id of an already-recorded class by qualified name.
func (s *Store) ClassID(qualifiedName string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM classes WHERE qualified_name = ?`, qualifiedName).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup class %q: %w", qualifiedName, err)
	}
	return id, true, nil
}

// AddInheritance records that childClassID derives from parentClassID.
// Idempotent.
func (s *Store) AddInheritance(parentClassID, childClassID int64) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO inheritance_edges (parent_class_id, child_class_id)
		VALUES (?, ?)`, parentClassID, childClassID)
	if err != nil {
		return fmt.Errorf("add inheritance edge %d -> %d: %w", parentClassID, childClassID, err)
	}
	return nil
}

// BaseClasses returns the qualified names of every class childClassID
// directly derives from.
func (s *Store) BaseClasses(childClassID int64) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT c.qualified_name
		FROM inheritance_edges e
		JOIN classes c ON c.id = e.parent_class_id
		WHERE e.child_class_id = ?`, childClassID)
	if err != nil {
		return nil, fmt.Errorf("query base classes of %d: %w", childClassID, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan base class of %d: %w", childClassID, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
