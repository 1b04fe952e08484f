package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phenofetch/internal/models"
)

func TestStoreRoundTrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "cache", "pages"))
	require.NoError(t, err)
	defer store.Close()

	day := time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC)
	catalog := &models.DayCatalog{
		SiteName:    "NEON.D16.ABBY.DP1.00033",
		Date:        models.PageDate{Year: 2021, Month: 1, Day: 2},
		DayOfYear:   2,
		TotalImages: 1,
		Images: []models.ImageEntry{
			{
				Time:     "07:30:06",
				Timezone: "UTC-8",
				ImageURL: "https://phenocam.nau.edu/data/archive/SITE/2021/01/a.jpg",
			},
		},
	}

	require.NoError(t, store.PutDay("SITE", day, catalog))

	got, err := store.GetDay("SITE", day)
	require.NoError(t, err)
	assert.Equal(t, catalog, got)
}

func TestStoreMiss(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "pages"))
	require.NoError(t, err)
	defer store.Close()

	day := time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC)

	_, err = store.GetDay("SITE", day)
	assert.ErrorIs(t, err, ErrNotFound)

	// Keys carry the site, so another site's day is still a miss.
	require.NoError(t, store.PutDay("OTHER", day, &models.DayCatalog{SiteName: "x"}))
	_, err = store.GetDay("SITE", day)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreCloseTwice(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "pages"))
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
