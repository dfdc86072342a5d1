//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
)

// Clean namespace methods
// Note: Clean type is defined in main.go

// All removes all build artifacts
func (Clean) All() error {
	fmt.Println("Cleaning all build artifacts...")
	return os.RemoveAll("bin")
}

// Coverage removes coverage files
func (Clean) Coverage() error {
	fmt.Println("Cleaning coverage files...")
	os.Remove("coverage.out")
	os.Remove("coverage.html")
	return nil
}

// State removes the local chore state directory
func (Clean) State() error {
	fmt.Println("Cleaning chore state directory...")
	return os.RemoveAll(".chore")
}
