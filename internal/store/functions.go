package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/clangcg/clangcg/internal/srcpos"
)

// appendNullableEq appends an equality condition for a nullable column,
// rendered as "col IS NULL" or "col = ?" so the comparison works the
// same way whether the backend is modernc.org/sqlite or Dolt's
// MySQL-dialect engine, neither of which accepts a bound NULL on the
// right-hand side of a general "IS" comparison.
func appendNullableEq(where []string, args []any, col string, v sql.NullInt64) ([]string, []any) {
	if !v.Valid {
		return append(where, col+" IS NULL"), args
	}
	return append(where, col+" = ?"), append(args, v.Int64)
}

func appendNullableStringEq(where []string, args []any, col string, v sql.NullString) ([]string, []any) {
	if !v.Valid {
		return append(where, col+" IS NULL"), args
	}
	return append(where, col+" = ?"), append(args, v.String)
}

// callOwnerColumns returns the (func_impl_id, virtual_func_impl_id) pair
// for a Call row's owner, with exactly one non-nil.
func callOwnerColumns(o Owner) (funcImplID, virtualFuncImplID sql.NullInt64) {
	switch o.Kind {
	case OwnedByFuncImpl:
		funcImplID = sql.NullInt64{Int64: o.ID, Valid: true}
	case OwnedByVirtualFuncImpl:
		virtualFuncImplID = sql.NullInt64{Int64: o.ID, Valid: true}
	}
	return
}

// getOrAddFunc implements the shared get-or-add logic for all six
// functions-table kinds. Two rows of the same kind and owner are equal
// iff (name, qualified_name, signature, range) match; virtual variants
// additionally require base_qualified_name to match. Get-or-add is
// idempotent under that equality: a second walk of the same
// translation unit, producing identical args, resolves to the same row.
func (s *Store) getOrAddFunc(kind FuncKind, name, qualifiedName, baseQualifiedName, signature string, rng srcpos.Range, owner Owner) (int64, error) {
	var sourceFileID, headerFileID, classID, funcImplID, virtualFuncImplID sql.NullInt64
	if kind.IsCall() {
		funcImplID, virtualFuncImplID = callOwnerColumns(owner)
	} else {
		sourceFileID, headerFileID, classID = ownerColumns(owner)
	}

	where := []string{
		"kind = ?", "name = ?", "qualified_name = ?", "signature = ?",
		"start_line = ?", "start_column = ?", "end_line = ?", "end_column = ?",
	}
	args := []any{int(kind), name, qualifiedName, signature,
		rng.Start.Line, rng.Start.Column, rng.End.Line, rng.End.Column}
	where, args = appendNullableStringEq(where, args, "base_qualified_name", nullableString(baseQualifiedName, kind.IsVirtual()))
	where, args = appendNullableEq(where, args, "source_file_id", sourceFileID)
	where, args = appendNullableEq(where, args, "header_file_id", headerFileID)
	where, args = appendNullableEq(where, args, "class_id", classID)
	where, args = appendNullableEq(where, args, "func_impl_id", funcImplID)
	where, args = appendNullableEq(where, args, "virtual_func_impl_id", virtualFuncImplID)

	var id int64
	err := s.db.QueryRow(
		"SELECT id FROM functions WHERE "+strings.Join(where, " AND "), args...,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("lookup function %q: %w", qualifiedName, err)
	}

	res, err := s.db.Exec(`
		INSERT INTO functions (
			kind, name, qualified_name, base_qualified_name, signature,
			start_line, start_column, end_line, end_column,
			source_file_id, header_file_id, class_id, func_impl_id, virtual_func_impl_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int(kind), name, qualifiedName, nullableString(baseQualifiedName, kind.IsVirtual()), signature,
		rng.Start.Line, rng.Start.Column, rng.End.Line, rng.End.Column,
		sourceFileID, headerFileID, classID, funcImplID, virtualFuncImplID)
	if err != nil {
		return 0, fmt.Errorf("insert function %q: %w", qualifiedName, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted function id %q: %w", qualifiedName, err)
	}
	return id, nil
}

func nullableString(s string, valid bool) sql.NullString {
	return sql.NullString{String: s, Valid: valid}
}

// GetOrAddFuncDecl records a non-virtual function declaration.
func (s *Store) GetOrAddFuncDecl(a FuncCreationArgs) (int64, error) {
	return s.getOrAddFunc(FuncDecl, a.Name, a.QualifiedName, "", a.Signature, a.Range, a.Owner)
}

// GetOrAddFuncImpl records a non-virtual function implementation.
func (s *Store) GetOrAddFuncImpl(a FuncCreationArgs) (int64, error) {
	return s.getOrAddFunc(FuncImpl, a.Name, a.QualifiedName, "", a.Signature, a.Range, a.Owner)
}

// GetOrAddFuncCall records a call site. owner must be OwnedByFuncImpl or
// OwnedByVirtualFuncImpl, naming the implementation the call occurs in.
func (s *Store) GetOrAddFuncCall(a FuncCreationArgs) (int64, error) {
	return s.getOrAddFunc(FuncCall, a.Name, a.QualifiedName, "", a.Signature, a.Range, a.Owner)
}

// GetOrAddVirtualFuncDecl records a virtual function declaration.
func (s *Store) GetOrAddVirtualFuncDecl(a VirtualFuncCreationArgs) (int64, error) {
	return s.getOrAddFunc(VirtualFuncDecl, a.Name, a.QualifiedName, a.BaseQualifiedName, a.Signature, a.Range, a.Owner)
}

// GetOrAddVirtualFuncImpl records a virtual function implementation.
func (s *Store) GetOrAddVirtualFuncImpl(a VirtualFuncCreationArgs) (int64, error) {
	return s.getOrAddFunc(VirtualFuncImpl, a.Name, a.QualifiedName, a.BaseQualifiedName, a.Signature, a.Range, a.Owner)
}

// GetOrAddVirtualFuncCall records a call site resolved through a vtable.
func (s *Store) GetOrAddVirtualFuncCall(a VirtualFuncCreationArgs) (int64, error) {
	return s.getOrAddFunc(VirtualFuncCall, a.Name, a.QualifiedName, a.BaseQualifiedName, a.Signature, a.Range, a.Owner)
}

// Function retrieves a single functions row by id.
func (s *Store) Function(id int64) (*Function, error) {
	f, err := scanFunction(s.db.QueryRow(`
		SELECT id, kind, name, qualified_name, base_qualified_name, signature,
		       start_line, start_column, end_line, end_column,
		       source_file_id, header_file_id, class_id, func_impl_id, virtual_func_impl_id
		FROM functions WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("lookup function %d: %w", id, err)
	}
	return f, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFunction(row rowScanner) (*Function, error) {
	var f Function
	var kind int
	var baseQN sql.NullString
	var sourceFileID, headerFileID, classID, funcImplID, virtualFuncImplID sql.NullInt64

	err := row.Scan(&f.ID, &kind, &f.Name, &f.QualifiedName, &baseQN, &f.Signature,
		&f.Range.Start.Line, &f.Range.Start.Column, &f.Range.End.Line, &f.Range.End.Column,
		&sourceFileID, &headerFileID, &classID, &funcImplID, &virtualFuncImplID)
	if err != nil {
		return nil, err
	}
	f.Kind = FuncKind(kind)
	f.BaseQualifiedName = baseQN.String

	switch {
	case sourceFileID.Valid:
		f.Owner = Owner{Kind: OwnedBySource, ID: sourceFileID.Int64}
	case headerFileID.Valid:
		f.Owner = Owner{Kind: OwnedByHeader, ID: headerFileID.Int64}
	case classID.Valid:
		f.Owner = Owner{Kind: OwnedByClass, ID: classID.Int64}
	case funcImplID.Valid:
		f.Owner = Owner{Kind: OwnedByFuncImpl, ID: funcImplID.Int64}
	case virtualFuncImplID.Valid:
		f.Owner = Owner{Kind: OwnedByVirtualFuncImpl, ID: virtualFuncImplID.Int64}
	}
	return &f, nil
}
