//go:build mage
// +build mage

package main

import (
	"fmt"

	"github.com/aserto-dev/mage-loot/deps"
)

// Release namespace methods
// Note: Release type is defined in main.go

// Build creates a snapshot build using GoReleaser (no release)
func (Release) Build() error {
	fmt.Println("Building snapshot with GoReleaser...")
	goreleaser := deps.BinDep("goreleaser")
	return goreleaser("build", "--snapshot", "--clean")
}

// Snapshot creates a snapshot release using GoReleaser (no Git tag required)
func (Release) Snapshot() error {
	fmt.Println("Creating snapshot release with GoReleaser...")
	goreleaser := deps.BinDep("goreleaser")
	return goreleaser("release", "--snapshot", "--clean")
}

// All builds release binaries for all platforms using GoReleaser
func (Release) All() error {
	fmt.Println("Creating release with GoReleaser...")
	goreleaser := deps.BinDep("goreleaser")
	return goreleaser("release", "--clean")
}

// Check validates the GoReleaser configuration
func (Release) Check() error {
	fmt.Println("Checking GoReleaser configuration...")
	goreleaser := deps.BinDep("goreleaser")
	return goreleaser("check")
}
