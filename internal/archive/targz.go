// Package archive unpacks gzip-compressed tarballs.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractTarGz unpacks the archive under destRoot, preserving file modes.
// Entries that would escape destRoot are rejected.
func ExtractTarGz(archivePath, destRoot string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to read gzip stream: %w", err)
	}
	defer gz.Close()

	if err := os.MkdirAll(destRoot, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", destRoot, err)
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}

		target, err := sanitizePath(destRoot, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, hdr.FileInfo().Mode().Perm()); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}

		case tar.TypeReg:
			if err := writeEntry(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}

		case tar.TypeSymlink:
			if err := sanitizeLink(destRoot, target, hdr.Linkname); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("failed to create directory for %s: %w", target, err)
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return fmt.Errorf("failed to create symlink %s: %w", target, err)
			}

		default:
			// Hard links, devices etc. do not occur in source tarballs.
		}
	}
}

func writeEntry(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	return out.Close()
}

// sanitizePath resolves name under root and rejects traversal outside it.
func sanitizePath(root, name string) (string, error) {
	target := filepath.Join(root, filepath.Clean(name))

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	targetAbs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", target, err)
	}

	if targetAbs != rootAbs && !strings.HasPrefix(targetAbs, rootAbs+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %s escapes extraction root", name)
	}

	return target, nil
}

// sanitizeLink rejects symlinks whose resolved destination leaves root.
func sanitizeLink(root, target, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("archive symlink %s has absolute target %s", target, linkname)
	}

	resolved := filepath.Join(filepath.Dir(target), linkname)
	if _, err := sanitizePath(root, mustRel(root, resolved)); err != nil {
		return fmt.Errorf("archive symlink %s escapes extraction root", target)
	}

	return nil
}

func mustRel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
