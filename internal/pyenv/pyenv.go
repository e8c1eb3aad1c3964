// Package pyenv manages the Python virtualenv that hosts the analysis
// pipeline's dependencies.
package pyenv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Marker is the environment variable an active virtualenv exports.
const Marker = "VIRTUAL_ENV"

// IsActive reports whether a virtualenv is active in the given
// environment. The lookup is injected so checks never depend on the real
// process environment.
func IsActive(lookupEnv func(key string) (string, bool)) bool {
	dir, ok := lookupEnv(Marker)
	return ok && dir != ""
}

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Env is a handle on a virtualenv directory. The directory does not have
// to exist yet; Create makes it.
type Env struct {
	dir    string
	runner Runner
}

// New returns a handle for the virtualenv rooted at dir.
func New(dir string) *Env {
	return &Env{dir: dir, runner: execRunner{}}
}

// NewWithRunner is like New with a custom command runner. Used by tests.
func NewWithRunner(dir string, runner Runner) *Env {
	return &Env{dir: dir, runner: runner}
}

// Dir returns the virtualenv root directory.
func (e *Env) Dir() string {
	return e.dir
}

// Exists reports whether the directory already contains a virtualenv.
func (e *Env) Exists() bool {
	_, err := os.Stat(filepath.Join(e.dir, "pyvenv.cfg"))
	return err == nil
}

// Create builds the virtualenv with the system Python interpreter.
func (e *Env) Create(ctx context.Context) error {
	python, err := findPython()
	if err != nil {
		return err
	}

	if err := e.runner.Run(ctx, python, "-m", "venv", e.dir); err != nil {
		return fmt.Errorf("venv creation failed: %w", err)
	}

	return nil
}

// InstallRequirements installs the dependency manifest with the
// virtualenv's own interpreter, so packages land inside the env.
func (e *Env) InstallRequirements(ctx context.Context, manifest string) error {
	if _, err := os.Stat(manifest); err != nil {
		return fmt.Errorf("manifest %s not readable: %w", manifest, err)
	}

	if err := e.runner.Run(ctx, e.Python(), "-m", "pip", "install", "-r", manifest); err != nil {
		return fmt.Errorf("pip install -r %s failed: %w", manifest, err)
	}

	return nil
}

// Python returns the path of the virtualenv's interpreter.
func (e *Env) Python() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(e.dir, "Scripts", "python.exe")
	}
	return filepath.Join(e.dir, "bin", "python")
}

// findPython locates a system Python 3 interpreter.
func findPython() (string, error) {
	if path, err := exec.LookPath("python3"); err == nil {
		return path, nil
	}

	if path, err := exec.LookPath("python"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("python3 not found in PATH")
}
