// Package fetch downloads pinned release archives.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/fwlab/fwsetup-cli/pkg/xfile"
)

// Download fetches url into dest with a progress bar. The file is staged
// next to dest and renamed into place only when the body has been read in
// full, so a failed or cancelled download never leaves a partial file at
// dest.
func Download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s for %s", resp.Status, url)
	}

	pending, err := xfile.NewPending(dest)
	if err != nil {
		return fmt.Errorf("failed to stage download: %w", err)
	}
	defer pending.Cleanup()

	bar := newBar(resp.ContentLength)
	if _, err := io.Copy(io.MultiWriter(pending, bar), resp.Body); err != nil {
		return fmt.Errorf("download interrupted: %w", err)
	}

	if err := pending.CloseAtomically(); err != nil {
		return fmt.Errorf("failed to finalize download: %w", err)
	}

	return nil
}

// VerifySHA256 checks the file against a hex-encoded sha256 sum.
func VerifySHA256(path, hexsum string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("failed to hash %s: %w", path, err)
	}

	got := hex.EncodeToString(h.Sum(nil))
	want := strings.ToLower(strings.TrimSpace(hexsum))
	if got != want {
		return fmt.Errorf("sha256 mismatch: got %s, want %s", got, want)
	}

	return nil
}

func newBar(size int64) *progressbar.ProgressBar {
	return progressbar.NewOptions64(size,
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
	)
}
