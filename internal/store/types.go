package store

import "github.com/clangcg/clangcg/internal/srcpos"

// FileKind distinguishes a translation unit's own source from the
// headers it includes.
type FileKind int

const (
	// Source is a compiled translation unit (.c/.cc/.cpp/.cxx/.c++/.cp).
	Source FileKind = iota
	// Header is anything else (.h, .hpp, or no recognized extension).
	Header
)

func (k FileKind) String() string {
	if k == Source {
		return "source"
	}
	return "header"
}

// SourceExtensions lists the extensions that classify a path as Source;
// anything else is a Header.
var SourceExtensions = map[string]bool{
	".c":   true,
	".cc":  true,
	".cpp": true,
	".cxx": true,
	".c++": true,
	".cp":  true,
}

// FuncKind tags which of the six function-like rows a Function
// represents.
type FuncKind int

const (
	FuncDecl FuncKind = iota
	FuncImpl
	FuncCall
	VirtualFuncDecl
	VirtualFuncImpl
	VirtualFuncCall
)

func (k FuncKind) String() string {
	switch k {
	case FuncDecl:
		return "FuncDecl"
	case FuncImpl:
		return "FuncImpl"
	case FuncCall:
		return "FuncCall"
	case VirtualFuncDecl:
		return "VirtualFuncDecl"
	case VirtualFuncImpl:
		return "VirtualFuncImpl"
	case VirtualFuncCall:
		return "VirtualFuncCall"
	default:
		return "Unknown"
	}
}

// IsVirtual reports whether k is one of the three virtual variants.
func (k FuncKind) IsVirtual() bool {
	return k == VirtualFuncDecl || k == VirtualFuncImpl || k == VirtualFuncCall
}

// IsCall reports whether k is a call-site kind (FuncCall/VirtualFuncCall).
func (k FuncKind) IsCall() bool {
	return k == FuncCall || k == VirtualFuncCall
}

// Owner identifies which single entity a Class or a Decl/Impl Function
// belongs to. Exactly one of the three ids is set (the "owner triple" of
// the glossary); OwnerKind records which.
type OwnerKind int

const (
	OwnedBySource OwnerKind = iota
	OwnedByHeader
	OwnedByClass
	// OwnedByFuncImpl and OwnedByVirtualFuncImpl are the two valid
	// owners of a Call row.
	OwnedByFuncImpl
	OwnedByVirtualFuncImpl
)

// Owner is a small tagged union over the owner triple (or, for Calls,
// the pair of implementation ids).
type Owner struct {
	Kind OwnerKind
	ID   int64
}

// FuncCreationArgs carries everything needed to get-or-add a
// non-virtual Decl/Impl/Call row; the walker derives these from a
// FunctionDecl/CXXMethodDecl's attribute string.
type FuncCreationArgs struct {
	Name          string
	QualifiedName string
	Signature     string
	Range         srcpos.Range
	Owner         Owner
}

// VirtualFuncCreationArgs additionally carries the base qualified name
// required for virtual-variant equality.
type VirtualFuncCreationArgs struct {
	FuncCreationArgs
	BaseQualifiedName string
}

// SourceFile is a row in the files table tagged Source.
type SourceFile struct {
	ID   int64
	Path string
}

// HeaderFile is a row in the files table tagged Header.
type HeaderFile struct {
	ID   int64
	Path string
}

// Class is one row of the classes table.
type Class struct {
	ID            int64
	QualifiedName string
	Owner         Owner
}

// Function is one row of the functions table (any FuncKind).
type Function struct {
	ID                int64
	Kind              FuncKind
	Name              string
	QualifiedName     string
	BaseQualifiedName string // only meaningful for virtual variants
	Signature         string
	Range             srcpos.Range
	Owner             Owner
}
