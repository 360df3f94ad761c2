//go:build mage

// Package main provides build targets for the ocular project using Mage.
//
// Usage:
//
//	mage build     Compile the ocular binary to bin/
//	mage test      Run all tests
//	mage race      Run all tests with the race detector
//	mage lint      Run golangci-lint
//	mage clean     Remove build artifacts
//	mage install   Install ocular to GOPATH/bin
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo       = "go"
	binLint     = "golangci-lint"
	binaryName  = "ocular"
	binaryDir   = "bin"
	cmdDir      = "./cmd/ocular"
	versionPkg  = "github.com/mesh-intelligence/ocular/pkg/ocular"
	envVersion  = "OCULAR_VERSION"
	defaultHead = "HEAD"
)

// Build compiles the ocular binary to bin/. OCULAR_VERSION, or the current
// git tag when it is unset, is stamped into the binary.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := []string{"build", "-v", "-o", filepath.Join(binaryDir, binaryName)}
	if v := version(); v != "" {
		args = append(args, "-ldflags", fmt.Sprintf("-X %s.Version=%s", versionPkg, v))
	}
	return sh.RunV(binGo, append(args, cmdDir)...)
}

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// Race runs all tests with the race detector.
func Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// version returns the version to stamp, without a leading v. Empty keeps the
// default compiled into pkg/ocular.
func version() string {
	if v := os.Getenv(envVersion); v != "" {
		return strings.TrimPrefix(v, "v")
	}
	tag, err := sh.Output("git", "describe", "--tags", "--exact-match", defaultHead)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.TrimSpace(tag), "v")
}
