//go:build mage
// +build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Dev namespace methods
// Note: Dev and Build types are defined in main.go

// Run builds and runs the application with help
func (Dev) Run() error {
	mg.Deps(Build.Binary)
	return sh.Run("./bin/chore", "--help")
}

// List builds the binary and lists the tasks in this repository's taskfile
func (Dev) List() error {
	mg.Deps(Build.Binary)
	return sh.RunV("./bin/chore", "list", "--verbose")
}
