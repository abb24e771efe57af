//go:build mage

// Package main provides build targets for the categories project using Mage.
//
// Usage:
//
//	mage build           Compile the categories binary to bin/
//	mage test            Run unit tests
//	mage testIntegration Run the end-to-end suite against a fresh build
//	mage lint            Run golangci-lint
//	mage clean           Remove build artifacts
//	mage install         Install categories to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName      = "categories"
	binaryDir       = "bin"
	mainPkg         = "./cmd/categories"
	integrationPkgs = "./tests/..."
)

var binaryPath = filepath.Join(binaryDir, binaryName)

// Build compiles the categories binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-o", binaryPath, mainPkg)
}

// Test runs the package tests under internal/ and pkg/.
func Test() error {
	return sh.RunV("go", "test", "./internal/...", "./pkg/...")
}

// TestIntegration builds first, then runs the end-to-end suite.
func TestIntegration() error {
	mg.Deps(Build)
	return sh.RunV("go", "test", integrationPkgs)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binaryDir)
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", binaryName), binaryPath)
}
