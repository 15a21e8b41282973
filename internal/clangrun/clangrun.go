// Package clangrun spawns a clang invocation and exposes its stdout as
// an astdump.LineSource. The command runs through "sh -c" (or "cmd /C"
// on Windows), stdout is captured in full, and lines are handed out one
// at a time; Clang's AST dump for one translation unit comfortably fits
// in memory.
package clangrun

import (
	"bytes"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Process runs a single shell command and replays its stdout as lines,
// implementing astdump.LineSource.
type Process struct {
	lines []string
	pos   int
}

// Run executes command in dir (the compile_commands.json entry's
// "directory", or "" for the current directory) and captures stdout.
// A nonzero exit status is not itself an error: Clang's AST-dump mode
// commonly exits nonzero on semantic errors in the source while still
// emitting a usable (if partial) dump on stdout, so callers decide
// whether the captured output is acceptable.
func Run(dir, command string) (*Process, error) {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/C", command)
	} else {
		cmd = exec.Command("sh", "-c", command)
	}
	if dir != "" {
		cmd.Dir = dir
	}

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	runErr := cmd.Run()

	if runErr != nil {
		if _, isExitErr := runErr.(*exec.ExitError); !isExitErr {
			return nil, fmt.Errorf("spawning clang: %w", runErr)
		}
	}

	text := stdout.String()
	var lines []string
	if text != "" {
		lines = strings.Split(strings.TrimRight(text, "\n"), "\n")
	}

	return &Process{lines: lines}, nil
}

// NextLine implements astdump.LineSource.
func (p *Process) NextLine() (string, bool) {
	if p.pos >= len(p.lines) {
		return "", false
	}
	line := p.lines[p.pos]
	p.pos++
	return line, true
}

// SkipToTranslationUnit discards leading lines until the first line
// that begins a TranslationUnitDecl node; Clang may emit warnings on
// stdout before the dump itself. It reports false if no such line
// exists.
func (p *Process) SkipToTranslationUnit() bool {
	for p.pos < len(p.lines) {
		if strings.HasPrefix(p.lines[p.pos], "TranslationUnitDecl") {
			return true
		}
		p.pos++
	}
	return false
}
