//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

const demoBinary = "bin/demo"

type Build mg.Namespace

// Demo compiles cmd/demo into bin/demo. Needs cgo and the GLFW build deps.
func (Build) Demo() error {
	_, err := run("go", args("build", "-o", demoBinary, "./cmd/demo"), env("CGO_ENABLED=1"), stream())
	return err
}

// Vet runs go vet over the module.
func (Build) Vet() error {
	_, err := run("go", args("vet", "./..."), stream())
	return err
}

type Test mg.Namespace

// Unit runs every package test. None of them need a GPU or a display.
func (Test) Unit() error {
	_, err := run("go", args("test", "./..."), stream())
	return err
}

// Race runs the tests under the race detector.
func (Test) Race() error {
	_, err := run("go", args("test", "-race", "./..."), stream())
	return err
}

type Run mg.Namespace

// Demo builds and starts the demo scene from the module root so it finds
// config.* and assets/.
func (Run) Demo() error {
	mg.Deps(Build.Demo)
	_, err := run(demoBinary, stream())
	return err
}
