// Package main is the entry point for the clangcg CLI tool.
package main

import (
	"github.com/clangcg/clangcg/internal/cmd"
)

func main() {
	cmd.Execute()
}
