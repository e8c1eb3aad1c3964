package bootstrap

import "fmt"

// Reason identifies which class of failure aborted the bootstrap.
// Every reason is terminal: the orchestrator never retries a step.
type Reason string

const (
	// ReasonMissingRuntime means no container build command was found on PATH.
	ReasonMissingRuntime Reason = "missing-runtime"
	// ReasonEnvironmentInactive means no virtualenv was active and the
	// operator declined to create one.
	ReasonEnvironmentInactive Reason = "environment-inactive"
	// ReasonPackageInstall means the dependency manifest failed to install.
	ReasonPackageInstall Reason = "package-install"
	// ReasonDownload means fetching (or verifying) the pinned archive failed.
	ReasonDownload Reason = "download"
	// ReasonExtraction means unpacking the archive failed.
	ReasonExtraction Reason = "extraction"
	// ReasonWorkDir means the extracted source directory cannot be entered.
	ReasonWorkDir Reason = "workdir"
	// ReasonImageBuild means the container image build failed.
	ReasonImageBuild Reason = "image-build"
)

// StepError reports a failed bootstrap step. First failure wins: the
// orchestrator stops at the step that produced it.
type StepError struct {
	Reason Reason
	Step   string
	Err    error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Step, e.Reason)
	}
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func failf(reason Reason, step string, format string, args ...interface{}) *StepError {
	return &StepError{
		Reason: reason,
		Step:   step,
		Err:    fmt.Errorf(format, args...),
	}
}
