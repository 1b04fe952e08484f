// Package catalog enumerates per-day archive pages for a site and turns them
// into classified file references.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"phenofetch/internal/helpers"
	"phenofetch/internal/models"
	"phenofetch/internal/parse"
)

// DefaultHost is the archive the browse pages are served from.
const DefaultHost = "https://phenocam.nau.edu"

// ErrInvalidFileType is returned when the kinds filter contains an
// unrecognized value or is empty.
var ErrInvalidFileType = errors.New("invalid file type filter")

// ProgressFunc receives crawl progress: days completed out of total.
type ProgressFunc func(done, total int)

// PageCache memoizes parsed day pages between runs. The crawler treats cache
// errors as misses.
type PageCache interface {
	GetDay(siteID string, date time.Time) (*models.DayCatalog, error)
	PutDay(siteID string, date time.Time, catalog *models.DayCatalog) error
}

// Options tunes a Crawler beyond its defaults.
type Options struct {
	Host string
	// Cache, when non-nil, is consulted before any network fetch.
	Cache PageCache
	// DayWorkers above 1 opts in to fetching day pages concurrently. The
	// default of 1 keeps the crawl strictly sequential, one request at a
	// time, which is the polite mode the archive expects.
	DayWorkers int
	Progress   ProgressFunc
}

// Crawler fetches and parses day pages for a date range.
type Crawler struct {
	client     *http.Client
	host       string
	cache      PageCache
	dayWorkers int
	progress   ProgressFunc
}

// New creates a Crawler. A nil client gets a default with a 30s timeout.
func New(client *http.Client, opts Options) *Crawler {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	host := opts.Host
	if host == "" {
		host = DefaultHost
	}
	workers := opts.DayWorkers
	if workers < 1 {
		workers = 1
	}
	return &Crawler{
		client:     client,
		host:       host,
		cache:      opts.Cache,
		dayWorkers: workers,
		progress:   opts.Progress,
	}
}

// Crawl fetches one page per day in [start, end], extracts file references of
// the requested kinds, and accumulates them in chronological page order. A
// failing day is recorded in DataByDate and never aborts the crawl. On
// context cancellation the accumulated partial result is returned.
func (c *Crawler) Crawl(ctx context.Context, siteID string, start, end time.Time, kinds []models.FileKind) (*models.CrawlResult, error) {
	kindSet, err := validateKinds(kinds)
	if err != nil {
		return nil, err
	}

	dates, err := DateRange(start, end)
	if err != nil {
		return nil, err
	}

	result := &models.CrawlResult{
		SiteID:     siteID,
		StartDate:  start.Format("2006-01-02"),
		EndDate:    end.Format("2006-01-02"),
		Kinds:      kinds,
		DataByDate: make(map[string]models.DayResult, len(dates)),
		Summary:    models.Summary{TotalDays: len(dates)},
	}

	log.Infof("Fetching data for %s from %s to %s (%d days)", siteID, result.StartDate, result.EndDate, len(dates))

	days := c.fetchAll(ctx, siteID, dates)

	for i, date := range dates {
		if days[i] == nil {
			// Day was never fetched: cancelled before its turn.
			break
		}
		c.fold(result, date, days[i], kindSet)
		if c.progress != nil {
			c.progress(i+1, len(dates))
		}
	}

	if ctx.Err() != nil {
		log.Warnf("Crawl interrupted after %d of %d days; returning partial result", len(result.DataByDate), len(dates))
	}
	return result, nil
}

// dayOutcome is the raw fetch+parse result for one day before folding.
type dayOutcome struct {
	catalog *models.DayCatalog
	err     error
}

// fetchAll retrieves every day page, sequentially by default or with a
// bounded worker gate when day parallelism was opted into. The returned slice
// is indexed by date so folding stays chronological regardless of completion
// order; entries left nil were never attempted.
func (c *Crawler) fetchAll(ctx context.Context, siteID string, dates []time.Time) []*dayOutcome {
	outcomes := make([]*dayOutcome, len(dates))

	if c.dayWorkers <= 1 {
		for i, date := range dates {
			if ctx.Err() != nil {
				break
			}
			catalog, err := c.fetchDay(ctx, siteID, date)
			outcomes[i] = &dayOutcome{catalog: catalog, err: err}
		}
		return outcomes
	}

	sem := semaphore.NewWeighted(int64(c.dayWorkers))
	var wg sync.WaitGroup
	for i, date := range dates {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(i int, date time.Time) {
			defer wg.Done()
			defer sem.Release(1)
			catalog, err := c.fetchDay(ctx, siteID, date)
			outcomes[i] = &dayOutcome{catalog: catalog, err: err}
		}(i, date)
	}
	wg.Wait()
	return outcomes
}

// fold merges one day's outcome into the run result.
func (c *Crawler) fold(result *models.CrawlResult, date time.Time, day *dayOutcome, kindSet map[models.FileKind]bool) {
	key := fmt.Sprintf("%04d/%02d/%02d", date.Year(), int(date.Month()), date.Day())

	if day.err != nil {
		log.Debugf("Day %s failed: %v", key, day.err)
		result.DataByDate[key] = models.DayResult{Error: day.err.Error()}
		return
	}
	if day.catalog == nil || len(day.catalog.Images) == 0 {
		log.Debugf("No data found for %s", key)
		result.DataByDate[key] = models.DayResult{Error: "no data found"}
		return
	}

	for _, entry := range day.catalog.Images {
		collect(&result.Summary, entry.ImageURL, models.KindFullRes, kindSet)
		collect(&result.Summary, entry.ThumbnailURL, models.KindThumbnail, kindSet)
		collect(&result.Summary, entry.MetadataURL, models.KindMeta, kindSet)
	}
	result.DataByDate[key] = models.DayResult{Catalog: day.catalog}
	result.Summary.DaysWithData++
}

// collect is a no-op when the link is absent or its kind was filtered out.
func collect(summary *models.Summary, rawURL string, want models.FileKind, kindSet map[models.FileKind]bool) {
	if rawURL == "" || !kindSet[want] {
		return
	}
	kind, ok := models.ClassifyURL(rawURL)
	if !ok {
		log.Warnf("Unclassifiable URL from parser, skipping: %s", rawURL)
		return
	}
	summary.FileRefs = append(summary.FileRefs, models.FileRef{URL: rawURL, Kind: kind})
	switch kind {
	case models.KindFullRes:
		summary.TotalImages++
	case models.KindThumbnail:
		summary.TotalThumbnails++
	case models.KindMeta:
		summary.TotalMetadata++
	}
}

// fetchDay retrieves and parses a single day page, consulting the cache
// first. Any transport, status, or parse failure is returned as an error for
// the caller to record; it never panics the crawl.
func (c *Crawler) fetchDay(ctx context.Context, siteID string, date time.Time) (*models.DayCatalog, error) {
	if c.cache != nil {
		if catalog, err := c.cache.GetDay(siteID, date); err == nil && catalog != nil {
			log.Debugf("Cache hit for %s %s", siteID, date.Format("2006-01-02"))
			return catalog, nil
		}
	}

	pageURL := fmt.Sprintf("%s/webcam/browse/%s/%04d/%02d/%02d/",
		c.host, siteID, date.Year(), int(date.Month()), date.Day())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", helpers.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading day page body: %w", err)
	}

	catalog, err := parse.DayPage(string(body), c.host)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && catalog != nil && len(catalog.Images) > 0 {
		if err := c.cache.PutDay(siteID, date, catalog); err != nil {
			log.WithError(err).Warnf("Failed to cache day page for %s", date.Format("2006-01-02"))
		}
	}
	return catalog, nil
}

// validateKinds rejects an empty or unrecognized filter before any network
// activity.
func validateKinds(kinds []models.FileKind) (map[models.FileKind]bool, error) {
	if len(kinds) == 0 {
		return nil, fmt.Errorf("%w: filter must name at least one kind", ErrInvalidFileType)
	}
	set := make(map[models.FileKind]bool, len(kinds))
	for _, k := range kinds {
		if !k.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFileType, k)
		}
		set[k] = true
	}
	return set, nil
}
