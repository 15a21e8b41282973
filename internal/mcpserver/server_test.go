package mcpserver

import (
	"testing"

	"github.com/clangcg/clangcg/internal/store"
)

func TestNewRegistersAllToolsByDefault(t *testing.T) {
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	defer st.Close()

	s, err := New(st, Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tools := s.ListTools()
	if len(tools) != len(AllTools) {
		t.Errorf("ListTools() returned %d tools, want %d", len(tools), len(AllTools))
	}
	for _, want := range AllTools {
		found := false
		for _, got := range tools {
			if got == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing tool %q", want)
		}
	}
}

func TestNewRegistersOnlyRequestedTools(t *testing.T) {
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	defer st.Close()

	s, err := New(st, Config{Tools: []string{"clangcg_find_by_name"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tools := s.ListTools()
	if len(tools) != 1 || tools[0] != "clangcg_find_by_name" {
		t.Errorf("ListTools() = %v, want [clangcg_find_by_name]", tools)
	}
}

func TestNewRejectsUnknownTool(t *testing.T) {
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	defer st.Close()

	if _, err := New(st, Config{Tools: []string{"nonexistent"}}); err == nil {
		t.Error("expected error for unknown tool")
	}
}
