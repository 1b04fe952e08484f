package fetcher

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zeebo/blake3"

	"phenofetch/internal/helpers"
	"phenofetch/internal/models"
)

// Subdirectories under the output dir, one per file kind, so thumbnail and
// full-resolution files with identical basenames never collide.
var kindSubdirs = map[models.FileKind]string{
	models.KindFullRes:   "full_res",
	models.KindThumbnail: "thumbnails",
	models.KindMeta:      "meta",
}

// Downloader writes fetched files below an output directory.
type Downloader struct {
	client    *http.Client
	outputDir string
}

// NewDownloader creates a Downloader. A nil client gets a default with a 30s
// timeout.
func NewDownloader(client *http.Client, outputDir string) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Downloader{client: client, outputDir: outputDir}
}

// Operation adapts the downloader to the engine.
func (d *Downloader) Operation() Operation {
	return d.fetch
}

// fetch downloads one file. A target that already exists on disk short
// circuits to Already Exists without touching the network, which is what
// makes re-running a range cheap. Every failure is captured on the outcome.
func (d *Downloader) fetch(ctx context.Context, ref models.FileRef) models.FetchOutcome {
	outcome := models.FetchOutcome{Ref: ref}

	target, err := d.targetPath(ref)
	if err != nil {
		outcome.Status = models.StatusFailed
		outcome.Error = err.Error()
		return outcome
	}
	outcome.FilePath = target

	if _, err := os.Stat(target); err == nil {
		log.Debugf("Skipping %s, already exists", target)
		outcome.Success = true
		outcome.Status = models.StatusAlreadyExists
		return outcome
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.URL, nil)
	if err != nil {
		outcome.Status = models.StatusFailed
		outcome.Error = err.Error()
		return outcome
	}
	req.Header.Set("User-Agent", helpers.UserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		outcome.Status = models.StatusFailed
		outcome.Error = err.Error()
		return outcome
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		outcome.Status = models.StatusFailed
		outcome.Error = httpStatusError(resp.StatusCode).Error()
		return outcome
	}

	if !helpers.CheckAndMakeDir(filepath.Dir(target)) {
		outcome.Status = models.StatusFailed
		outcome.Error = fmt.Errorf("%w: could not create directory %s", ErrFileSystem, filepath.Dir(target)).Error()
		return outcome
	}

	size, checksum, err := writeBody(target, resp.Body)
	if err != nil {
		outcome.Status = models.StatusFailed
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Success = true
	outcome.Status = models.StatusDownloaded
	outcome.SizeBytes = &size
	outcome.Checksum = checksum
	return outcome
}

// targetPath maps a ref to its on-disk location: <out>/<kind subdir>/<basename>.
func (d *Downloader) targetPath(ref models.FileRef) (string, error) {
	subdir, ok := kindSubdirs[ref.Kind]
	if !ok {
		return "", fmt.Errorf("no target subdirectory for kind %q", ref.Kind)
	}
	parsed, err := url.Parse(ref.URL)
	if err != nil {
		return "", fmt.Errorf("parsing file URL %s: %w", ref.URL, err)
	}
	name := helpers.SanitizePath(path.Base(parsed.Path))
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("cannot derive filename from URL %s", ref.URL)
	}
	return filepath.Join(d.outputDir, subdir, name), nil
}

// writeBody streams the response body to disk while hashing it, removing the
// partial file on error. Returns the byte count and the hex BLAKE3 digest.
func writeBody(target string, body io.Reader) (int64, string, error) {
	out, err := os.Create(target)
	if err != nil {
		return 0, "", fmt.Errorf("%w: creating %s: %v", ErrFileSystem, target, err)
	}

	hasher := blake3.New()
	n, err := io.Copy(io.MultiWriter(out, hasher), body)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(target)
		return 0, "", fmt.Errorf("writing %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(target)
		return 0, "", fmt.Errorf("%w: closing %s: %v", ErrFileSystem, target, err)
	}

	return n, hex.EncodeToString(hasher.Sum(nil)), nil
}
