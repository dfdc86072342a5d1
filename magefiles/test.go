//go:build mage
// +build mage

package main

import (
	"fmt"

	"github.com/aserto-dev/mage-loot/deps"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test namespace methods
// Note: Test type is defined in main.go

// Unit runs unit tests using gotestsum with parallel execution
func (Test) Unit() error {
	fmt.Println("Running unit tests...")
	return deps.GoDep(
		"gotestsum",
	)(
		"--format",
		"pkgname",
		"--",
		"-p", "4",
		"-parallel", "8",
		"./pkg/...",
		"./internal/...",
		"./cmd/...",
	)
}

// UnitFast runs unit tests with -short to skip the slower subprocess tests
func (Test) UnitFast() error {
	fmt.Println("Running unit tests (fast mode)...")
	return deps.GoDep(
		"gotestsum",
	)(
		"--format",
		"pkgname",
		"--",
		"-short",
		"-p", "4",
		"-parallel", "8",
		"./pkg/...",
		"./internal/...",
		"./cmd/...",
	)
}

// Coverage runs tests with coverage
func (Test) Coverage() error {
	fmt.Println("Running tests with coverage...")
	return sh.RunV(
		"go",
		"test",
		"-coverprofile=coverage.out",
		"-p", "4",
		"-parallel", "8",
		"./pkg/...",
		"./internal/...",
		"./cmd/...",
	)
}

// CoverageHTML generates HTML coverage report
func (Test) CoverageHTML() error {
	mg.Deps(Test.Coverage)
	fmt.Println("Generating HTML coverage report...")
	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}
