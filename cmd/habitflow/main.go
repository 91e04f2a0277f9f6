// Package main is the single-binary entrypoint for HabitFlow.
package main

import "github.com/habitflow/habitflow/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
