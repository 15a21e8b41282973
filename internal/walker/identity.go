package walker

import (
	"github.com/clangcg/clangcg/internal/srcpos"
	"github.com/clangcg/clangcg/internal/store"
)

// funcIdentity is the subset of a Function's fields needed to register a
// call edge against it: its own name/qualified_name/signature, plus
// (for virtual targets) the base_qualified_name that the call should be
// keyed on.
type funcIdentity struct {
	Name              string
	QualifiedName     string
	Signature         string
	BaseQualifiedName string
}

// identityEntry is what the per-TU AstId -> FunctionRef map stores: the
// already-registered row's store id alongside enough of its identity to
// materialize call edges against it later.
type identityEntry struct {
	Kind    store.FuncKind
	StoreID int64
	funcIdentity
}

// pendingCall is one forward-referenced call edge awaiting its callee's
// registration, bucketed by the callee's Clang AST id in Walker.pending.
type pendingCall struct {
	Owner     store.Owner
	CallRange srcpos.Range
}
