//go:build !windows
// +build !windows

// Package xfile provides atomic file publication. Data is staged in a
// temp file in the target directory and renamed into place on success, so
// a partially written file never appears at the destination path.
package xfile

import (
	"io"
	"os"

	"github.com/google/renameio/v2"
)

// WriteFile writes data to the named file atomically using rename.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(filename, data, perm)
}

// WriteReader streams data from a reader into the named file atomically.
func WriteReader(filename string, r io.Reader, perm os.FileMode) error {
	t, err := renameio.TempFile("", filename)
	if err != nil {
		return err
	}
	defer t.Cleanup()

	if _, err := io.Copy(t, r); err != nil {
		return err
	}

	if err := t.Chmod(perm); err != nil {
		return err
	}

	return t.CloseAtomicallyReplace()
}

// Pending is a file that will be published atomically. Call
// CloseAtomically to complete the write, or Cleanup to discard it.
type Pending struct {
	tempFile *renameio.PendingFile
	path     string
}

// NewPending stages a pending write for filename.
func NewPending(filename string) (*Pending, error) {
	t, err := renameio.TempFile("", filename)
	if err != nil {
		return nil, err
	}
	return &Pending{tempFile: t, path: filename}, nil
}

// Write writes data to the staged file.
func (p *Pending) Write(data []byte) (int, error) {
	return p.tempFile.Write(data)
}

// Chmod sets the mode the published file will carry.
func (p *Pending) Chmod(perm os.FileMode) error {
	return p.tempFile.Chmod(perm)
}

// CloseAtomically publishes the staged file by renaming it into place.
func (p *Pending) CloseAtomically() error {
	return p.tempFile.CloseAtomicallyReplace()
}

// Cleanup discards the staged file without publishing. Safe to call after
// CloseAtomically.
func (p *Pending) Cleanup() {
	p.tempFile.Cleanup()
}

// Path returns the target path of the pending file.
func (p *Pending) Path() string {
	return p.path
}
