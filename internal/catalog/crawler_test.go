package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phenofetch/internal/helpers"
	"phenofetch/internal/models"
)

// validDayHTML has two captures: the first with all three links, the second
// with only the full-resolution image.
const validDayHTML = `<html><body>
<div id="browse_siteinfo">
  <a href="/webcam/sites/abby/">SITE</a> /
  <a href="/webcam/browse/SITE/2021/">2021</a> /
  <a href="/webcam/browse/SITE/2021/01/">01</a>
  /2 <a href="/webcam/browse/SITE/2021/01/03/">&gt;</a><br/>
  Day-of-Year: 2<br/>
  Number of Images: 2<br/>
</div>
<div class="col-6 col-sm-4 col-md-3 col-lg-2 px-1">
  <a href="/data/archive/SITE/2021/01/SITE_2021_01_02_073006.jpg">
    <img src="/data/archive/SITE/2021/01/thumbnails/SITE_2021_01_02_073006.jpg"/>
  </a>
  <span class="imglabel"><small>07:30:06 UTC-8</small></span>
  <a href="/data/archive/SITE/2021/01/SITE_2021_01_02_073006.meta">meta</a>
</div>
<div class="col-6 col-sm-4 col-md-3 col-lg-2 px-1">
  <a href="/data/archive/SITE/2021/01/SITE_2021_01_02_123006.jpg"></a>
  <span class="imglabel"><small>12:30:06 UTC-8</small></span>
</div>
</body></html>`

const emptyDayHTML = `<html><body><p>no captures today</p></body></html>`

// newArchiveServer serves a three-day fixture: a missing day, a day with
// data, and a day whose page has no site-info block.
func newArchiveServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		*hits++
		mu.Unlock()

		if got := r.Header.Get("User-Agent"); got != helpers.UserAgent {
			t.Errorf("unexpected User-Agent %q", got)
		}

		switch r.URL.Path {
		case "/webcam/browse/SITE/2021/01/01/":
			http.NotFound(w, r)
		case "/webcam/browse/SITE/2021/01/02/":
			fmt.Fprint(w, validDayHTML)
		case "/webcam/browse/SITE/2021/01/03/":
			fmt.Fprint(w, emptyDayHTML)
		default:
			t.Errorf("unexpected request path %q", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
}

func TestCrawlThreeDayRange(t *testing.T) {
	var hits int32
	server := newArchiveServer(t, &hits)
	defer server.Close()

	c := New(server.Client(), Options{Host: server.URL})
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC)

	result, err := c.Crawl(context.Background(), "SITE", start, end, models.AllKinds())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 3, result.Summary.TotalDays)
	assert.Equal(t, 1, result.Summary.DaysWithData)
	assert.Equal(t, 2, result.Summary.TotalImages)
	assert.Equal(t, 1, result.Summary.TotalThumbnails)
	assert.Equal(t, 1, result.Summary.TotalMetadata)
	require.Len(t, result.Summary.FileRefs, 4)

	// Refs keep page order: image, thumbnail, meta of the first capture,
	// then the image of the second.
	wantKinds := []models.FileKind{
		models.KindFullRes, models.KindThumbnail, models.KindMeta, models.KindFullRes,
	}
	for i, ref := range result.Summary.FileRefs {
		assert.Equal(t, wantKinds[i], ref.Kind, "ref %d", i)
	}

	assert.Contains(t, result.DataByDate["2021/01/01"].Error, "404")
	assert.Nil(t, result.DataByDate["2021/01/01"].Catalog)
	assert.Equal(t, "no data found", result.DataByDate["2021/01/03"].Error)
	require.NotNil(t, result.DataByDate["2021/01/02"].Catalog)
	assert.Equal(t, 2, len(result.DataByDate["2021/01/02"].Catalog.Images))
}

func TestCrawlKindFilter(t *testing.T) {
	var hits int32
	server := newArchiveServer(t, &hits)
	defer server.Close()

	c := New(server.Client(), Options{Host: server.URL})
	day := time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC)

	result, err := c.Crawl(context.Background(), "SITE", day, day,
		[]models.FileKind{models.KindThumbnail})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Summary.TotalImages)
	assert.Equal(t, 1, result.Summary.TotalThumbnails)
	assert.Equal(t, 0, result.Summary.TotalMetadata)
	require.Len(t, result.Summary.FileRefs, 1)
	assert.Equal(t, models.KindThumbnail, result.Summary.FileRefs[0].Kind)
}

func TestCrawlInvalidKinds(t *testing.T) {
	c := New(nil, Options{})
	day := time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC)

	_, err := c.Crawl(context.Background(), "SITE", day, day, nil)
	assert.ErrorIs(t, err, ErrInvalidFileType)

	_, err = c.Crawl(context.Background(), "SITE", day, day,
		[]models.FileKind{models.FileKind("bogus")})
	assert.ErrorIs(t, err, ErrInvalidFileType)
}

func TestCrawlDayWorkers(t *testing.T) {
	var hits int32
	server := newArchiveServer(t, &hits)
	defer server.Close()

	c := New(server.Client(), Options{Host: server.URL, DayWorkers: 3})
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC)

	result, err := c.Crawl(context.Background(), "SITE", start, end, models.AllKinds())
	require.NoError(t, err)

	// Same fold result as the sequential crawl, whatever the fetch order.
	assert.Equal(t, 1, result.Summary.DaysWithData)
	assert.Len(t, result.Summary.FileRefs, 4)
	assert.Equal(t, int32(3), hits)
}

// memCache is an in-memory PageCache for tests.
type memCache struct {
	mu   sync.Mutex
	days map[string]*models.DayCatalog
	puts int
}

func newMemCache() *memCache {
	return &memCache{days: make(map[string]*models.DayCatalog)}
}

func (m *memCache) GetDay(siteID string, date time.Time) (*models.DayCatalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.days[siteID+date.Format("2006-01-02")]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("miss")
}

func (m *memCache) PutDay(siteID string, date time.Time, catalog *models.DayCatalog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days[siteID+date.Format("2006-01-02")] = catalog
	m.puts++
	return nil
}

func TestCrawlUsesCache(t *testing.T) {
	var hits int32
	server := newArchiveServer(t, &hits)
	defer server.Close()

	cache := newMemCache()
	c := New(server.Client(), Options{Host: server.URL, Cache: cache})
	day := time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC)

	first, err := c.Crawl(context.Background(), "SITE", day, day, models.AllKinds())
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits)
	assert.Equal(t, 1, cache.puts)

	// Second crawl of the same day is served from the cache.
	second, err := c.Crawl(context.Background(), "SITE", day, day, models.AllKinds())
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits, "cached day should not be refetched")
	assert.Equal(t, first.Summary, second.Summary)
}

func TestCrawlCancellationReturnsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var hits int32
	server := newArchiveServer(t, &hits)
	defer server.Close()

	c := New(server.Client(), Options{Host: server.URL})
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC)

	result, err := c.Crawl(ctx, "SITE", start, end, models.AllKinds())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 3, result.Summary.TotalDays)
	assert.Empty(t, result.DataByDate)
	assert.Equal(t, int32(0), hits)
}
