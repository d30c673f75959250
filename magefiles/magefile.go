//go:build mage

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/joho/godotenv"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binary   = "bin/portal"
	templDir = "./internal/templates"
)

// Generate runs templ generate targeting the templates directory.
// This must be run before Build any time a .templ file changes.
func Generate() error {
	if _, err := exec.LookPath("templ"); err != nil {
		fmt.Println(">> templ not found; install with:")
		fmt.Println("   go install github.com/a-h/templ/cmd/templ@latest")
		return err
	}
	fmt.Println(">> templ generate", templDir)
	return sh.Run("templ", "generate", templDir)
}

// Watch regenerates templates whenever a .templ file changes. Ctrl-C stops it.
func Watch() error {
	if _, err := exec.LookPath("templ"); err != nil {
		fmt.Println(">> templ not found; install with:")
		fmt.Println("   go install github.com/a-h/templ/cmd/templ@latest")
		return err
	}
	fmt.Println(">> Starting templ watcher...")
	return sh.RunV("templ", "generate", "--watch", "-f", templDir)
}

// Build generates templ output, tidies deps, then compiles to ./bin/portal.
func Build() error {
	mg.Deps(Generate, Tidy)
	fmt.Println(">> Building portal binary...")
	return sh.Run("go", "build", "-o", binary, "./cmd/portal")
}

// Run builds then starts the interactive portal shell.
func Run() error {
	mg.Deps(Build)
	fmt.Println(">> Starting portal against", serverURL(), "...")
	cmd := exec.Command("./"+binary, "-server", serverURL())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// List prints the submissions table once and exits.
func List() error {
	mg.Deps(Build)
	return sh.RunV("./"+binary, "-server", serverURL(), "list")
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println(">> go mod tidy...")
	return sh.Run("go", "mod", "tidy")
}

// Test generates templates then runs all unit tests with the race detector.
func Test() error {
	mg.Deps(Generate)
	fmt.Println(">> Running tests...")
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Lint runs golangci-lint if available.
func Lint() error {
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		fmt.Println(">> golangci-lint not found; skipping.")
		return nil
	}
	return sh.Run("golangci-lint", "run", "./...")
}

// Clean removes build artifacts, generated templ files and the local
// download directory.
func Clean() error {
	fmt.Println(">> Cleaning...")
	if err := os.RemoveAll("bin"); err != nil {
		return err
	}
	dir := os.Getenv("STORAGE_LOCAL_PATH")
	if dir == "" {
		dir = "downloads"
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return sh.Run("find", templDir, "-name", "*_templ.go", "-delete")
}

// Install builds and installs the binary to $GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	return sh.Run("go", "install", "./cmd/portal")
}

func serverURL() string {
	if s := os.Getenv("PORTAL_SERVER"); s != "" {
		return s
	}
	return "http://localhost:5000"
}

func init() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("error loading .env file", "err", err)
	}
}
