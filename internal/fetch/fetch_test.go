package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	body := []byte("pinned release archive bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "binwalk-3.1.0.tar.gz")
	require.NoError(t, Download(context.Background(), srv.URL, dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestDownloadNonOKStatusLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "binwalk-3.1.0.tar.gz")
	err := Download(context.Background(), srv.URL, dest)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
	assert.NoFileExists(t, dest)
}

func TestDownloadConnectionErrorLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	dest := filepath.Join(t.TempDir(), "binwalk-3.1.0.tar.gz")
	err := Download(context.Background(), srv.URL, dest)

	require.Error(t, err)
	assert.NoFileExists(t, dest)
}

func TestDownloadCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("partial"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), "binwalk-3.1.0.tar.gz")
	err := Download(ctx, srv.URL, dest)

	require.Error(t, err)
	assert.NoFileExists(t, dest)
}

func TestVerifySHA256(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive")
	content := []byte("archive contents")
	require.NoError(t, os.WriteFile(path, content, 0644))

	sum := sha256.Sum256(content)
	hexsum := hex.EncodeToString(sum[:])

	assert.NoError(t, VerifySHA256(path, hexsum))

	// case and surrounding whitespace are tolerated
	assert.NoError(t, VerifySHA256(path, " "+hexsum+"\n"))

	err := VerifySHA256(path, hex.EncodeToString(make([]byte, 32)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sha256 mismatch")
}

func TestVerifySHA256MissingFile(t *testing.T) {
	err := VerifySHA256(filepath.Join(t.TempDir(), "nope"), "00")
	require.Error(t, err)
}
