// Package index maintains an optional full-text index of crawled image
// records, so previously crawled captures can be searched by site, date or
// time without re-crawling.
package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	log "github.com/sirupsen/logrus"

	"phenofetch/internal/models"
)

// ImageDoc is the indexed form of one crawled capture.
type ImageDoc struct {
	Site     string `json:"site"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
	Kind     string `json:"kind"`
	URL      string `json:"url"`
}

// Index wraps a bleve index of ImageDocs.
type Index struct {
	b bleve.Index
}

// Open opens the index at path, creating it on first use.
func Open(path string) (*Index, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("creating index directory %s: %w", dir, err)
		}
	}

	b, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		log.Debugf("Creating new search index at %s", path)
		b, err = bleve.New(path, bleve.NewIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("opening search index at %s: %w", path, err)
	}
	return &Index{b: b}, nil
}

// IndexCrawl adds every capture in a crawl result to the index, one batch per
// day. Documents are keyed by their full-resolution URL, so re-indexing the
// same range overwrites rather than duplicates.
func (ix *Index) IndexCrawl(result *models.CrawlResult) (int, error) {
	indexed := 0
	for dateKey, day := range result.DataByDate {
		if day.Catalog == nil {
			continue
		}
		batch := ix.b.NewBatch()
		for _, img := range day.Catalog.Images {
			doc := ImageDoc{
				Site:     result.SiteID,
				Date:     dateKey,
				Time:     img.Time,
				Timezone: img.Timezone,
				Kind:     string(models.KindFullRes),
				URL:      img.ImageURL,
			}
			if err := batch.Index(doc.URL, doc); err != nil {
				return indexed, fmt.Errorf("adding document to index batch: %w", err)
			}
		}
		if err := ix.b.Batch(batch); err != nil {
			return indexed, fmt.Errorf("indexing day %s: %w", dateKey, err)
		}
		indexed += len(day.Catalog.Images)
	}
	return indexed, nil
}

// Search runs a query-string query and returns up to limit hits.
func (ix *Index) Search(queryString string, limit int) (*bleve.SearchResult, error) {
	query := bleve.NewQueryStringQuery(queryString)
	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	req.Fields = []string{"site", "date", "time", "kind", "url"}
	res, err := ix.b.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	return res, nil
}

// Close releases the index.
func (ix *Index) Close() error {
	return ix.b.Close()
}
