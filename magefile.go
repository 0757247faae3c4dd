//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "pimsleur2anki"

// Default target to run when none is specified
var Default = Build

// Build builds the pimsleur2anki binary
func Build() error {
	fmt.Println("Building", binary)
	return sh.RunV("go", "build", "-o", binary, "./cmd/pimsleur2anki")
}

// Test runs all tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install installs the binary into GOPATH/bin
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/pimsleur2anki")
}

// Clean removes build artifacts
func Clean() error {
	return os.RemoveAll(binary)
}
