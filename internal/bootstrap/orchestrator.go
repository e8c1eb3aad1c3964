// Package bootstrap runs the fixed sequence of checks and side-effecting
// steps that prepare the local firmware-analysis environment: container
// runtime probe, virtualenv, dependency install, pinned source download,
// image build, cleanup. Execution is strictly linear and fail-fast.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fwlab/fwsetup-cli/internal/config"
)

// VenvMarker is the environment variable an active virtualenv exports.
const VenvMarker = "VIRTUAL_ENV"

// ContainerRuntime builds container images.
type ContainerRuntime interface {
	Name() string
	Build(ctx context.Context, dir, tag string) error
}

// Environment manages an isolated Python environment and its packages.
type Environment interface {
	Exists() bool
	Create(ctx context.Context) error
	InstallRequirements(ctx context.Context, manifest string) error
}

// Confirmer asks the operator a yes/no question. Tests and automation
// supply a fixed answer instead of a real prompt.
type Confirmer func(prompt string, defaultYes bool) (bool, error)

// Deps are the external collaborators the orchestrator drives. Nil fields
// are rejected by New except where a default is documented.
type Deps struct {
	// LocateRuntime probes for a usable container build command.
	LocateRuntime func() (ContainerRuntime, error)

	// NewEnv returns a handle for the virtualenv rooted at dir.
	NewEnv func(dir string) Environment

	// Download fetches url into dest.
	Download func(ctx context.Context, url, dest string) error

	// Verify checks the archive at path against a hex-encoded sha256 sum.
	Verify func(path, hexsum string) error

	// Extract unpacks a .tar.gz archive under destRoot.
	Extract func(archive, destRoot string) error

	// Confirm prompts the operator. Defaults to declining when nil so a
	// misconfigured non-interactive run aborts instead of hanging.
	Confirm Confirmer

	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)

	// Out receives operator-facing progress output. Defaults to os.Stdout.
	Out io.Writer
}

// Options tune a single bootstrap run.
type Options struct {
	// WorkDir is where the archive is downloaded and extracted.
	// Defaults to the current directory.
	WorkDir string

	// AssumeYes answers the virtualenv prompt without asking.
	AssumeYes bool

	// KeepArtifacts skips the final cleanup step.
	KeepArtifacts bool
}

// Orchestrator runs the bootstrap steps in order, stopping at the first
// failure. It is single-use: state captured by early steps (the runtime
// handle, the active virtualenv) feeds later ones.
type Orchestrator struct {
	settings *config.Settings
	deps     Deps
	opts     Options

	runtime ContainerRuntime
	env     Environment
}

type step struct {
	name string
	run  func(ctx context.Context) error
}

// New creates an orchestrator for the given settings.
func New(settings *config.Settings, deps Deps, opts Options) (*Orchestrator, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings are required")
	}
	if deps.LocateRuntime == nil || deps.NewEnv == nil || deps.Download == nil || deps.Extract == nil {
		return nil, fmt.Errorf("locate-runtime, new-env, download and extract collaborators are required")
	}
	if deps.Verify == nil {
		return nil, fmt.Errorf("verify collaborator is required")
	}
	if deps.Confirm == nil {
		deps.Confirm = func(string, bool) (bool, error) { return false, nil }
	}
	if deps.LookupEnv == nil {
		deps.LookupEnv = os.LookupEnv
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}

	return &Orchestrator{
		settings: settings,
		deps:     deps,
		opts:     opts,
	}, nil
}

// Run executes the full bootstrap sequence. On success the only artifact
// left behind is the built image (and, when created here, the virtualenv);
// the downloaded archive and extracted source tree are removed.
func (o *Orchestrator) Run(ctx context.Context) error {
	steps := []step{
		{"runtime check", o.checkRuntime},
		{"virtualenv", o.ensureEnvironment},
		{"dependency install", o.installDependencies},
		{"fetch", o.fetchArchive},
		{"extract", o.extractArchive},
		{"image build", o.buildImage},
		{"cleanup", o.cleanup},
	}

	for _, s := range steps {
		if err := s.run(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (o *Orchestrator) checkRuntime(ctx context.Context) error {
	rt, err := o.deps.LocateRuntime()
	if err != nil {
		return &StepError{Reason: ReasonMissingRuntime, Step: "runtime check", Err: err}
	}
	o.runtime = rt
	o.printf("🐳 Found container runtime: %s\n", rt.Name())
	return nil
}

func (o *Orchestrator) ensureEnvironment(ctx context.Context) error {
	if dir, ok := o.deps.LookupEnv(VenvMarker); ok && dir != "" {
		o.printf("✅ Virtualenv already active: %s\n", dir)
		o.env = o.deps.NewEnv(dir)
		return nil
	}

	venvDir := o.settings.Python.VenvDir

	create := o.opts.AssumeYes
	if !create {
		answer, err := o.deps.Confirm(
			fmt.Sprintf("No virtualenv is active. Create one at %s?", venvDir), true)
		if err != nil {
			return failf(ReasonEnvironmentInactive, "virtualenv", "prompt failed: %w", err)
		}
		create = answer
	}

	if !create {
		return failf(ReasonEnvironmentInactive, "virtualenv",
			"a virtualenv must be active: activate one (or re-run and answer yes) and try again")
	}

	env := o.deps.NewEnv(venvDir)
	if !env.Exists() {
		o.printf("🐍 Creating virtualenv at %s...\n", venvDir)
		if err := env.Create(ctx); err != nil {
			return failf(ReasonEnvironmentInactive, "virtualenv",
				"failed to create virtualenv at %s: %w", venvDir, err)
		}
	} else {
		o.printf("🐍 Reusing existing virtualenv at %s\n", venvDir)
	}

	o.env = env
	return nil
}

func (o *Orchestrator) installDependencies(ctx context.Context) error {
	manifest := o.settings.Python.Manifest
	o.printf("📦 Installing dependencies from %s...\n", manifest)

	if err := o.env.InstallRequirements(ctx, manifest); err != nil {
		return failf(ReasonPackageInstall, "dependency install",
			"failed to install dependencies from %s: %w", manifest, err)
	}

	return nil
}

func (o *Orchestrator) fetchArchive(ctx context.Context) error {
	url := o.settings.ArchiveURL()
	dest := o.archivePath()

	o.printf("⬇️  Downloading binwalk v%s...\n", o.settings.Tool.Version)
	if err := o.deps.Download(ctx, url, dest); err != nil {
		return failf(ReasonDownload, "fetch", "failed to download %s: %w", url, err)
	}

	if sum := o.settings.Tool.SHA256; sum != "" {
		if err := o.deps.Verify(dest, sum); err != nil {
			return failf(ReasonDownload, "fetch", "checksum verification failed for %s: %w", dest, err)
		}
		o.printf("🔒 Checksum verified\n")
	} else {
		o.printf("⚠️  No checksum configured for %s; archive integrity is unverified\n", o.settings.ArchiveName())
	}

	return nil
}

func (o *Orchestrator) extractArchive(ctx context.Context) error {
	o.printf("📂 Extracting %s...\n", o.settings.ArchiveName())

	if err := o.deps.Extract(o.archivePath(), o.opts.WorkDir); err != nil {
		return failf(ReasonExtraction, "extract",
			"failed to extract %s: %w", o.settings.ArchiveName(), err)
	}

	return nil
}

func (o *Orchestrator) buildImage(ctx context.Context) error {
	srcDir := o.sourceDir()

	// The build runs with the extracted tree as the command working
	// directory; the process-wide working directory never changes.
	fi, err := os.Stat(srcDir)
	if err != nil {
		return failf(ReasonWorkDir, "image build",
			"cannot enter extracted directory %s: %w", srcDir, err)
	}
	if !fi.IsDir() {
		return failf(ReasonWorkDir, "image build",
			"cannot enter extracted directory %s: not a directory", srcDir)
	}

	descriptor := filepath.Join(srcDir, o.settings.Image.Dockerfile)
	if _, err := os.Stat(descriptor); err != nil {
		return failf(ReasonImageBuild, "image build",
			"build descriptor %s not found: %w", descriptor, err)
	}

	o.printf("🔨 Building image %s from %s...\n", o.settings.Image.Tag, srcDir)
	if err := o.runtime.Build(ctx, srcDir, o.settings.Image.Tag); err != nil {
		return failf(ReasonImageBuild, "image build",
			"failed to build image %s: %w", o.settings.Image.Tag, err)
	}

	return nil
}

// cleanup runs only on the success path. Earlier aborts leave their
// partial artifacts in place for inspection.
func (o *Orchestrator) cleanup(ctx context.Context) error {
	if o.opts.KeepArtifacts {
		o.printf("📎 Keeping build artifacts: %s, %s\n", o.sourceDir(), o.archivePath())
		o.printf("✅ Environment ready! Image %q is available.\n", o.settings.Image.Tag)
		return nil
	}

	if err := os.RemoveAll(o.sourceDir()); err != nil {
		o.printf("⚠️  Failed to remove %s: %v\n", o.sourceDir(), err)
	}
	if err := os.Remove(o.archivePath()); err != nil && !os.IsNotExist(err) {
		o.printf("⚠️  Failed to remove %s: %v\n", o.archivePath(), err)
	}

	o.printf("✅ Environment ready! Image %q is available.\n", o.settings.Image.Tag)
	return nil
}

func (o *Orchestrator) archivePath() string {
	return filepath.Join(o.opts.WorkDir, o.settings.ArchiveName())
}

func (o *Orchestrator) sourceDir() string {
	return filepath.Join(o.opts.WorkDir, o.settings.SourceDir())
}

func (o *Orchestrator) printf(format string, args ...interface{}) {
	fmt.Fprintf(o.deps.Out, format, args...)
}
