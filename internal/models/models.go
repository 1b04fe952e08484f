package models

import (
	"fmt"
	"strings"
)

// FileKind classifies a fetchable archive URL.
type FileKind string

const (
	KindFullRes   FileKind = "full_res"
	KindThumbnail FileKind = "thumbnail"
	KindMeta      FileKind = "meta"
)

// Valid reports whether k is one of the known file kinds.
func (k FileKind) Valid() bool {
	switch k {
	case KindFullRes, KindThumbnail, KindMeta:
		return true
	}
	return false
}

// AllKinds returns every file kind in the order the archive lists them on a page.
func AllKinds() []FileKind {
	return []FileKind{KindFullRes, KindThumbnail, KindMeta}
}

// ClassifyURL derives the file kind from the URL shape the archive uses.
// Thumbnails live under /thumbnails/, full-resolution captures are .jpg files
// under /archive/, and camera metadata files end in .meta. The parser only
// emits URLs of these three shapes, so a false return indicates a parser bug
// rather than an expected runtime case.
func ClassifyURL(rawURL string) (FileKind, bool) {
	switch {
	case strings.Contains(rawURL, "/thumbnails/"):
		return KindThumbnail, true
	case strings.Contains(rawURL, "/archive/") && strings.HasSuffix(rawURL, ".jpg"):
		return KindFullRes, true
	case strings.HasSuffix(rawURL, ".meta"):
		return KindMeta, true
	}
	return "", false
}

// FileRef is a single fetchable unit extracted from a catalog page.
type FileRef struct {
	URL  string   `json:"url"`
	Kind FileKind `json:"kind"`
}

// PageDate is the calendar date a catalog page covers. Fields may be zero
// when the page template omits or mangles a component.
type PageDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Key formats the date the way crawl results are keyed, e.g. "2024/01/05".
func (d PageDate) Key() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day)
}

// ImageEntry is one capture slot on a catalog page. Any of the three links
// may be empty when the page omits it; an entry is never discarded for a
// missing sub-element.
type ImageEntry struct {
	Time         string `json:"time,omitempty"`
	Timezone     string `json:"timezone,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	MetadataURL  string `json:"metadata_url,omitempty"`
}

// DayCatalog is the parsed form of one catalog day page. It is constructed
// once by the parser and never mutated afterwards.
type DayCatalog struct {
	SiteName string   `json:"site_name"`
	Date     PageDate `json:"date"`
	// DayOfYear is 0 when the page does not carry a Day-of-Year label.
	DayOfYear int `json:"day_of_year,omitempty"`
	// TotalImages is the count the page advertises. It may diverge from
	// len(Images) and is exposed as-is, not reconciled.
	TotalImages int          `json:"total_images"`
	Images      []ImageEntry `json:"images"`
}

// DayResult holds either the parsed catalog for a day or the error that
// replaced it. Exactly one field is set.
type DayResult struct {
	Catalog *DayCatalog `json:"catalog,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Summary aggregates a whole crawl. FileRefs preserves insertion order:
// chronological day order, then page order within a day.
type Summary struct {
	TotalDays       int       `json:"total_days"`
	DaysWithData    int       `json:"days_with_data"`
	TotalImages     int       `json:"total_images"`
	TotalThumbnails int       `json:"total_thumbnails"`
	TotalMetadata   int       `json:"total_metadata_files"`
	FileRefs        []FileRef `json:"file_refs"`
}

// CrawlResult is the outcome of crawling one site over one date range.
type CrawlResult struct {
	SiteID     string               `json:"site_id"`
	StartDate  string               `json:"start_date"`
	EndDate    string               `json:"end_date"`
	Kinds      []FileKind           `json:"file_types"`
	DataByDate map[string]DayResult `json:"data_by_date"`
	Summary    Summary              `json:"summary"`
}

// Fetch outcome status constants.
const (
	StatusDownloaded    = "Downloaded"
	StatusAlreadyExists = "Already Exists"
	StatusSizeProbed    = "Size Probed"
	StatusSkipped       = "Skipped"
	StatusFailed        = "Failed"
)

// FetchOutcome records the result of one batch engine operation. The engine
// produces exactly one outcome per input ref, in input order.
type FetchOutcome struct {
	Ref     FileRef `json:"ref"`
	Success bool    `json:"success"`
	Status  string  `json:"status"`
	// FilePath is set by the download operation.
	FilePath string `json:"file,omitempty"`
	// SizeBytes is nil when the size is unknown (missing Content-Length).
	SizeBytes *int64 `json:"size_bytes,omitempty"`
	// Checksum is the hex BLAKE3 digest of a freshly downloaded body.
	Checksum string `json:"checksum,omitempty"`
	Error    string `json:"error,omitempty"`
}

// SizeBucket accumulates per-kind counts and byte totals.
type SizeBucket struct {
	Count int   `json:"count"`
	Bytes int64 `json:"bytes"`
}

// RunStats is the fold of all outcomes of one engine run. It is built on a
// single consumer path after each batch resolves, never from workers.
type RunStats struct {
	Total          int `json:"total"`
	Successful     int `json:"successful"`
	AlreadyExisted int `json:"already_existed"`
	Failed         int `json:"failed"`

	FullRes   SizeBucket `json:"full_res"`
	Thumbnail SizeBucket `json:"thumbnail"`
	Meta      SizeBucket `json:"meta"`
	// MetaPlaceholders counts metadata refs given the synthetic zero size in
	// size-probe runs; the upstream never reports a length for them, so the
	// Meta bucket's byte total stays at zero.
	MetaPlaceholders int   `json:"meta_placeholders"`
	TotalBytes       int64 `json:"total_bytes"`

	Errors []FetchOutcome `json:"errors,omitempty"`
}

// Config holds the application configuration unmarshalled by viper.
type Config struct {
	SavePath      string `mapstructure:"savepath"`
	Host          string `mapstructure:"host"`
	BatchSize     int    `mapstructure:"batchsize"`
	Concurrency   int    `mapstructure:"concurrency"`
	TimeoutSec    int    `mapstructure:"timeoutsec"`
	BatchPauseSec int    `mapstructure:"batchpausesec"`
	DayWorkers    int    `mapstructure:"dayworkers"`
	UseCache      bool   `mapstructure:"usecache"`
	CachePath     string `mapstructure:"cachepath"`
	BuildIndex    bool   `mapstructure:"buildindex"`
	IndexPath     string `mapstructure:"indexpath"`
	LogLevel      string `mapstructure:"loglevel"`
	LogFormat     string `mapstructure:"logformat"`
}
