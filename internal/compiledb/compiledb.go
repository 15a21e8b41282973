// Package compiledb loads a compile_commands.json compilation database,
// the standard JSON compilation database format emitted by CMake,
// Bazel, and similar build systems.
//
// The file is a JSON array of objects, each carrying directory, command,
// and file as required strings and output as an optional string. Any
// deviation from that shape - a non-array top level, a missing required
// field, a member that isn't an object - fails the whole load.
package compiledb

import (
	"encoding/json"
	"fmt"
	"os"
)

// Entry is a single compilation database record.
type Entry struct {
	Directory string `json:"directory"`
	Command   string `json:"command"`
	File      string `json:"file"`
	Output    string `json:"output,omitempty"`
}

// HasOutput reports whether the entry specified an output path.
func (e Entry) HasOutput() bool {
	return e.Output != ""
}

// Load reads and parses a compile_commands.json file at path. The file
// must be a JSON array; any entry missing directory, command, or file
// fails the entire load.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading compilation database: %w", err)
	}
	return Parse(data)
}

// Parse parses the contents of a compile_commands.json file.
func Parse(data []byte) ([]Entry, error) {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing compilation database: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for i, obj := range raw {
		var e Entry
		if dir, ok := obj["directory"]; ok {
			if err := json.Unmarshal(dir, &e.Directory); err != nil {
				return nil, fmt.Errorf("entry %d: directory: %w", i, err)
			}
		} else {
			return nil, fmt.Errorf("entry %d: missing required field %q", i, "directory")
		}

		if cmd, ok := obj["command"]; ok {
			if err := json.Unmarshal(cmd, &e.Command); err != nil {
				return nil, fmt.Errorf("entry %d: command: %w", i, err)
			}
		} else {
			return nil, fmt.Errorf("entry %d: missing required field %q", i, "command")
		}

		if file, ok := obj["file"]; ok {
			if err := json.Unmarshal(file, &e.File); err != nil {
				return nil, fmt.Errorf("entry %d: file: %w", i, err)
			}
		} else {
			return nil, fmt.Errorf("entry %d: missing required field %q", i, "file")
		}

		if out, ok := obj["output"]; ok {
			if err := json.Unmarshal(out, &e.Output); err != nil {
				return nil, fmt.Errorf("entry %d: output: %w", i, err)
			}
		}

		entries = append(entries, e)
	}

	return entries, nil
}
