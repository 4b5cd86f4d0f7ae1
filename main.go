package main

import (
	"os"

	"laravel-assembler/cmd" // Import the cmd package which contains the CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing and execution.
//
// assembler wraps `laravel new` and then sets up what a fresh Laravel project usually needs:
//   - composer dev packages (PHP_CodeSniffer, Laravel IDE Helper) and the scripts that use them
//   - front-end tooling (Tailwind CSS, ESLint + Prettier, Blade Formatter, Alpine.js)
//   - a git repository with checkpoint commits, an optional pre-commit hook, GitHub remote and git flow
//   - the composer.json scripts section, rewritten in a fixed order
//   - Valet SSL, the browser and PhpStorm
//
// Every question is asked before the installer runs; after that the run is unattended.
//
// Error handling strategy:
//   - Tasks report failures as results, so one broken step does not hide the others
//   - A missing project after the installer, or any failure under the fail-fast policy,
//     makes the program exit with a non-zero status
func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
