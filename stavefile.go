//go:build stave

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

// Default target when running `stave` with no arguments.
var Default = All

// Aliases for common targets.
var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"c": Clean,
}

// All vets, tests and builds.
func All() error {
	st.Deps(Vet, Test)
	st.Deps(Build)
	return nil
}

// Build compiles the CLI and the server.
func Build() error {
	st.Deps(Build_CLI, Build_Server)
	return nil
}

// Build_CLI compiles bin/diccas with version information.
func Build_CLI() error {
	return buildBinary("diccas")
}

// Build_Server compiles bin/diccas-server.
func Build_Server() error {
	return buildBinary("server")
}

func buildBinary(cmd string) error {
	out := "bin/diccas"
	if cmd != "diccas" {
		out += "-" + cmd
	}
	rebuild, err := target.Glob(out, "**/*.go", "go.mod", "go.sum")
	if err != nil {
		return fmt.Errorf("checking rebuild: %w", err)
	}
	if !rebuild {
		if st.Verbose() {
			fmt.Println(out, "is up to date")
		}
		return nil
	}
	return sh.RunV("go", "build", "-ldflags", buildLdflags(), "-o", out, "./cmd/"+cmd)
}

// buildLdflags returns ldflags for version injection.
func buildLdflags() string {
	version, _ := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	commit, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	return fmt.Sprintf(
		"-X main.version=%s -X main.commit=%s -X main.date=%s",
		strings.TrimSpace(version),
		strings.TrimSpace(commit),
		time.Now().Format(time.RFC3339),
	)
}

// Test runs all tests with race detection and coverage.
func Test() error {
	return sh.RunV("go", "test", "-race", "-cover", "./...")
}

// Vet runs go vet on all packages.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	return sh.Rm("bin/")
}

// Corpus converts a TEI file with the CLI. Set DICCAS_INPUT to the source file.
func Corpus() error {
	st.Deps(Build_CLI)
	input := os.Getenv("DICCAS_INPUT")
	if input == "" {
		input = "corpus_DiCCAS.xml"
	}
	return sh.RunV("./bin/diccas", "convert", input, "--out-dir", "out")
}
