package snapshot

import (
	"testing"

	"github.com/clangcg/clangcg/internal/srcpos"
	"github.com/clangcg/clangcg/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestTakeDeclImplAndCall(t *testing.T) {
	st := openTestStore(t)

	headerID, err := st.GetOrAddFile("add.h", store.Header)
	if err != nil {
		t.Fatal(err)
	}
	sourceID, err := st.GetOrAddFile("add.cpp", store.Source)
	if err != nil {
		t.Fatal(err)
	}
	mainID, err := st.GetOrAddFile("main.cpp", store.Source)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.AddInclude(sourceID, headerID); err != nil {
		t.Fatal(err)
	}
	if err := st.AddInclude(mainID, headerID); err != nil {
		t.Fatal(err)
	}

	rng := srcpos.Range{Start: srcpos.Position{Line: 1, Column: 1}, End: srcpos.Position{Line: 1, Column: 10}}

	if _, err := st.GetOrAddFuncDecl(store.FuncCreationArgs{
		Name: "add", QualifiedName: "add", Signature: "int (int, int)",
		Range: rng, Owner: store.Owner{Kind: store.OwnedByHeader, ID: headerID},
	}); err != nil {
		t.Fatal(err)
	}

	addImplID, err := st.GetOrAddFuncImpl(store.FuncCreationArgs{
		Name: "add", QualifiedName: "add", Signature: "int (int, int)",
		Range: rng, Owner: store.Owner{Kind: store.OwnedBySource, ID: sourceID},
	})
	if err != nil {
		t.Fatal(err)
	}

	mainImplID, err := st.GetOrAddFuncImpl(store.FuncCreationArgs{
		Name: "main", QualifiedName: "main", Signature: "int ()",
		Range: rng, Owner: store.Owner{Kind: store.OwnedBySource, ID: mainID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := st.GetOrAddFuncCall(store.FuncCreationArgs{
		Name: "add", QualifiedName: "add", Signature: "int (int, int)",
		Range: rng, Owner: store.Owner{Kind: store.OwnedByFuncImpl, ID: mainImplID},
	}); err != nil {
		t.Fatal(err)
	}

	snap, err := Take(st)
	if err != nil {
		t.Fatalf("Take() error = %v", err)
	}

	if len(snap.HeaderFiles) != 1 || snap.HeaderFiles[0].Path != "add.h" {
		t.Errorf("HeaderFiles = %+v", snap.HeaderFiles)
	}
	if len(snap.SourceFiles) != 2 {
		t.Fatalf("expected 2 source files, got %d", len(snap.SourceFiles))
	}
	for _, sf := range snap.SourceFiles {
		if len(sf.Headers) != 1 || sf.Headers[0] != "add.h" {
			t.Errorf("source file %q headers = %v, want [add.h]", sf.Path, sf.Headers)
		}
	}

	if len(snap.Decls) != 1 || snap.Decls[0].QualifiedName != "add" || snap.Decls[0].Owner != "header:add.h" {
		t.Errorf("Decls = %+v", snap.Decls)
	}
	if len(snap.Impls) != 2 {
		t.Fatalf("expected 2 impls, got %d", len(snap.Impls))
	}
	if len(snap.Calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(snap.Calls))
	}
	if snap.Calls[0].CallerQualifiedName != "main" || snap.Calls[0].CalleeQualifiedName != "add" {
		t.Errorf("Calls[0] = %+v", snap.Calls[0])
	}

	_ = addImplID
}

func TestTakeInheritance(t *testing.T) {
	st := openTestStore(t)

	sourceID, err := st.GetOrAddFile("shapes.cpp", store.Source)
	if err != nil {
		t.Fatal(err)
	}

	aID, err := st.GetOrAddClass("A", store.Owner{Kind: store.OwnedBySource, ID: sourceID})
	if err != nil {
		t.Fatal(err)
	}
	bID, err := st.GetOrAddClass("B", store.Owner{Kind: store.OwnedBySource, ID: sourceID})
	if err != nil {
		t.Fatal(err)
	}
	if err := st.AddInheritance(aID, bID); err != nil {
		t.Fatal(err)
	}

	snap, err := Take(st)
	if err != nil {
		t.Fatalf("Take() error = %v", err)
	}

	if len(snap.Classes) != 2 {
		t.Fatalf("expected 2 classes, got %d", len(snap.Classes))
	}
	var b ClassSnapshot
	for _, c := range snap.Classes {
		if c.QualifiedName == "B" {
			b = c
		}
	}
	if len(b.Bases) != 1 || b.Bases[0] != "A" {
		t.Errorf("B.Bases = %v, want [A]", b.Bases)
	}
}

func TestJSONIsDeterministic(t *testing.T) {
	st := openTestStore(t)
	if _, err := st.GetOrAddFile("a.h", store.Header); err != nil {
		t.Fatal(err)
	}

	snap, err := Take(st)
	if err != nil {
		t.Fatal(err)
	}

	first, err := snap.JSON()
	if err != nil {
		t.Fatal(err)
	}
	second, err := snap.JSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("JSON() is not deterministic across calls")
	}
}
