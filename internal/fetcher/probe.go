package fetcher

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"phenofetch/internal/helpers"
	"phenofetch/internal/models"
)

// SizeProber estimates file sizes with header-only requests instead of
// downloading bodies.
type SizeProber struct {
	client *http.Client
}

// NewSizeProber creates a SizeProber. A nil client gets a default with a 30s
// timeout; the default client follows redirects, which the archive uses for
// some files.
func NewSizeProber(client *http.Client) *SizeProber {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &SizeProber{client: client}
}

// Operation adapts the prober to the engine.
func (p *SizeProber) Operation() Operation {
	return p.probe
}

// probe issues a HEAD request and reads the declared Content-Length. Metadata
// files are skipped outright with a synthetic zero size: the upstream does
// not reliably send a length for them, and a HEAD per .meta file would buy
// nothing. A 200 without Content-Length is still a success, with nil size.
func (p *SizeProber) probe(ctx context.Context, ref models.FileRef) models.FetchOutcome {
	outcome := models.FetchOutcome{Ref: ref}

	if ref.Kind == models.KindMeta {
		zero := int64(0)
		outcome.Success = true
		outcome.Status = models.StatusSkipped
		outcome.SizeBytes = &zero
		return outcome
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, ref.URL, nil)
	if err != nil {
		outcome.Status = models.StatusFailed
		outcome.Error = err.Error()
		return outcome
	}
	req.Header.Set("User-Agent", helpers.UserAgent)

	resp, err := p.client.Do(req)
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

	outcome.Success = true
	outcome.Status = models.StatusSizeProbed
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if size, err := strconv.ParseInt(cl, 10, 64); err == nil && size >= 0 {
			outcome.SizeBytes = &size
		}
	}
	return outcome
}
