package compiledb

import "testing"

func TestParseOneMember(t *testing.T) {
	data := []byte(`
	[
		{
			"directory": "/home/user/project",
			"command": "/usr/bin/clang++ -Iinclude src/main.cpp -o build/main.o",
			"file": "src/main.cpp",
			"output": "build/main.o"
		}
	]
	`)

	entries, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.Directory != "/home/user/project" {
		t.Errorf("Directory = %q", e.Directory)
	}
	if e.Command != "/usr/bin/clang++ -Iinclude src/main.cpp -o build/main.o" {
		t.Errorf("Command = %q", e.Command)
	}
	if e.File != "src/main.cpp" {
		t.Errorf("File = %q", e.File)
	}
	if e.Output != "build/main.o" {
		t.Errorf("Output = %q", e.Output)
	}
	if !e.HasOutput() {
		t.Error("HasOutput() = false, want true")
	}
}

func TestParseOneMemberNoOutput(t *testing.T) {
	data := []byte(`
	[
		{
			"directory": "/home/user/project",
			"command": "/usr/bin/clang++ -Iinclude src/main.cpp -o build/main.o",
			"file": "src/main.cpp"
		}
	]
	`)

	entries, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].HasOutput() {
		t.Error("HasOutput() = true, want false")
	}
}

func TestParseWindowsPaths(t *testing.T) {
	data := []byte(`
	[
		{
			"directory": "C:\\home\\user\\project",
			"command": "C:\\usr\\bin\\clang++ -Iinclude src\\main.cpp -o build\\main.o",
			"file": "src\\main.cpp",
			"output": "build\\main.o"
		}
	]
	`)

	entries, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if entries[0].Directory != `C:\home\user\project` {
		t.Errorf("Directory = %q", entries[0].Directory)
	}
	if entries[0].File != `src\main.cpp` {
		t.Errorf("File = %q", entries[0].File)
	}
}

func TestParseTwoMembers(t *testing.T) {
	data := []byte(`
	[
		{
			"directory": "/home/user/project",
			"command": "/usr/bin/clang++ -Iinclude src/main.cpp -o build/main.o",
			"file": "src/main.cpp",
			"output": "build/main.o"
		},
		{
			"directory": "/home/user/project",
			"command": "/usr/bin/clang++ -Iinclude src/helper.cpp -o build/helper.o",
			"file": "src/helper.cpp",
			"output": "build/helper.o"
		}
	]
	`)

	entries, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].File != "src/helper.cpp" {
		t.Errorf("File = %q", entries[1].File)
	}
}

func TestParseEmptyArray(t *testing.T) {
	entries, err := Parse([]byte(`[]`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(entries))
	}
}

func TestParseMalformedJSON(t *testing.T) {
	data := []byte(`
	[
		{
			"directory": "/home/user/project",
			"command": "/usr/bin/clang++ -Iinclude src/main.cpp -o build/main.o",
			"file": "src/main.cpp",
			"output": "build/main.o"
		},
		{
			"directory": "/home/user/project",
			"command": "/usr/bin/clang++ -Iinclude src/helper.cpp -o build/helper.o",
			"file": "src/helper.cpp"
	]
	`)

	if _, err := Parse(data); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestParseMissingRequiredField(t *testing.T) {
	data := []byte(`
	[
		{
			"directory": "/home/user/project",
			"command": "/usr/bin/clang++ -Iinclude src/main.cpp -o build/main.o",
			"file": "src/main.cpp",
			"output": "build/main.o"
		},
		{
			"directory": "/home/user/project",
			"command": "/usr/bin/clang++ -Iinclude src/helper.cpp -o build/helper.o"
		}
	]
	`)

	if _, err := Parse(data); err == nil {
		t.Error("expected error for entry missing required field")
	}
}

func TestParseInvalidMemberType(t *testing.T) {
	data := []byte(`
	[
		{
			"directory": "/home/user/project",
			"command": "/usr/bin/clang++ -Iinclude src/main.cpp -o build/main.o",
			"file": "src/main.cpp",
			"output": "build/main.o"
		},
		"invalid"
	]
	`)

	if _, err := Parse(data); err == nil {
		t.Error("expected error for non-object member")
	}
}

func TestParseTopLevelNotArray(t *testing.T) {
	if _, err := Parse([]byte(`"invalid"`)); err == nil {
		t.Error("expected error for non-array top level")
	}
	if _, err := Parse([]byte(`{}`)); err == nil {
		t.Error("expected error for object top level")
	}
}
