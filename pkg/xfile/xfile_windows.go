//go:build windows
// +build windows

// Package xfile provides atomic file publication. On Windows a temp file
// in the target directory plus remove-then-rename stands in for POSIX
// atomic rename.
package xfile

import (
	"io"
	"os"
	"path/filepath"
)

// WriteFile writes data to the named file via a same-directory temp file.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	p, err := NewPending(filename)
	if err != nil {
		return err
	}
	defer p.Cleanup()

	if _, err := p.Write(data); err != nil {
		return err
	}
	if err := p.Chmod(perm); err != nil {
		return err
	}
	return p.CloseAtomically()
}

// WriteReader streams data from a reader into the named file.
func WriteReader(filename string, r io.Reader, perm os.FileMode) error {
	p, err := NewPending(filename)
	if err != nil {
		return err
	}
	defer p.Cleanup()

	if _, err := io.Copy(p.tempFile, r); err != nil {
		return err
	}
	if err := p.Chmod(perm); err != nil {
		return err
	}
	return p.CloseAtomically()
}

// Pending is a file that will be published atomically.
type Pending struct {
	tempFile *os.File
	tempName string
	path     string
	perm     os.FileMode
	closed   bool
}

// NewPending stages a pending write for filename.
func NewPending(filename string) (*Pending, error) {
	dir := filepath.Dir(filename)
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return nil, err
	}
	return &Pending{
		tempFile: tempFile,
		tempName: tempFile.Name(),
		path:     filename,
		perm:     0644,
	}, nil
}

// Write writes data to the staged file.
func (p *Pending) Write(data []byte) (int, error) {
	return p.tempFile.Write(data)
}

// Chmod sets the mode the published file will carry.
func (p *Pending) Chmod(perm os.FileMode) error {
	p.perm = perm
	return nil
}

// CloseAtomically publishes the staged file by renaming it into place.
func (p *Pending) CloseAtomically() error {
	if err := p.tempFile.Sync(); err != nil {
		p.Cleanup()
		return err
	}
	if err := p.tempFile.Close(); err != nil {
		os.Remove(p.tempName)
		return err
	}
	p.closed = true

	if err := os.Chmod(p.tempName, p.perm); err != nil {
		os.Remove(p.tempName)
		return err
	}

	// Windows cannot rename over an existing file.
	if _, err := os.Stat(p.path); err == nil {
		if err := os.Remove(p.path); err != nil {
			os.Remove(p.tempName)
			return err
		}
	}

	return os.Rename(p.tempName, p.path)
}

// Cleanup discards the staged file without publishing.
func (p *Pending) Cleanup() {
	if !p.closed {
		p.tempFile.Close()
	}
	os.Remove(p.tempName)
}

// Path returns the target path of the pending file.
func (p *Pending) Path() string {
	return p.path
}
