//go:build mage
// +build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/sh"
)

// Build namespace methods
// Note: Build type is defined in main.go

// Binary builds the main binary
func (Build) Binary() error {
	fmt.Println("Building chore...")
	return sh.Run("go", "build", "-o", "bin/chore", "./cmd/chore")
}

// Install installs the binary to $GOPATH/bin
func (Build) Install() error {
	fmt.Println("Installing chore...")
	return sh.Run("go", "install", "./cmd/chore")
}

// Debug builds with debug flags
func (Build) Debug() error {
	fmt.Println("Building chore with debug flags...")
	return sh.Run("go", "build", "-gcflags", "all=-N -l", "-o", "bin/chore-debug", "./cmd/chore")
}
