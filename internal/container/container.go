// Package container locates the local container runtime and drives image
// builds through it.
package container

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Runner executes external commands. The default implementation streams
// output to the terminal; tests substitute a recording fake.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (execRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Client wraps a container build command (docker or podman).
type Client struct {
	binPath string
	runner  Runner
}

// NewClient locates a container runtime on PATH.
func NewClient() (*Client, error) {
	binPath, err := findRuntime()
	if err != nil {
		return nil, err
	}
	return &Client{binPath: binPath, runner: execRunner{}}, nil
}

// NewClientAt creates a client for a known runtime binary with a custom
// runner. Used by tests.
func NewClientAt(binPath string, runner Runner) *Client {
	return &Client{binPath: binPath, runner: runner}
}

// findRuntime locates docker or podman.
func findRuntime() (string, error) {
	if path, err := exec.LookPath("docker"); err == nil {
		return path, nil
	}

	if path, err := exec.LookPath("podman"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("no container runtime found in PATH (looked for docker, podman): " +
		"install Docker from https://docs.docker.com/get-docker/ and make sure your user " +
		"is in the docker group (or can otherwise talk to the daemon)")
}

// Name returns the runtime command name.
func (c *Client) Name() string {
	return filepath.Base(c.binPath)
}

// Build builds an image from the build descriptor in dir and tags it.
func (c *Client) Build(ctx context.Context, dir, tag string) error {
	if err := c.runner.Run(ctx, dir, c.binPath, "build", "-t", tag, "."); err != nil {
		return fmt.Errorf("%s build failed: %w", c.Name(), err)
	}
	return nil
}

// ImageExists reports whether the tag is present in the local image store.
func (c *Client) ImageExists(ctx context.Context, tag string) bool {
	_, err := c.runner.Output(ctx, c.binPath, "image", "inspect", tag)
	return err == nil
}

// RemoveImage removes the tag from the local image store.
func (c *Client) RemoveImage(ctx context.Context, tag string) error {
	if err := c.runner.Run(ctx, "", c.binPath, "image", "rm", tag); err != nil {
		return fmt.Errorf("failed to remove image %s: %w", tag, err)
	}
	return nil
}

// Version returns the runtime version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	out, err := c.runner.Output(ctx, c.binPath, "--version")
	if err != nil {
		return "", fmt.Errorf("failed to get %s version: %w", c.Name(), err)
	}
	return out, nil
}
