package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gosuri/uilive"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"phenofetch/internal/cache"
	"phenofetch/internal/catalog"
	"phenofetch/internal/fetcher"
	"phenofetch/internal/index"
	"phenofetch/internal/models"
	"phenofetch/internal/sites"
	"phenofetch/internal/sysinfo"
)

// Flag variables for the download command
var (
	siteFlag       string
	productFlag    string
	startDateFlag  string
	endDateFlag    string
	downloadFlag   bool
	outputDirFlag  string
	batchSizeFlag  int
	concurrencyFlg int
	typesFlag      []string
	pauseFlag      int
	dayWorkersFlag int
	useCacheFlag   bool
	buildIndexFlag bool
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Crawl a site's archive pages and optionally download its files",
	Long: `Crawls one archive page per day across the given date range, lists
every image, thumbnail and metadata file found, and (with --download) fetches
them in concurrency-bounded batches.`,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVar(&siteFlag, "site", "", "Site code, e.g. ABBY (required)")
	downloadCmd.Flags().StringVar(&productFlag, "product", "DP1.00033", "Data product identifier")
	downloadCmd.Flags().StringVar(&startDateFlag, "start-date", "", "First day of the range, YYYY-MM-DD (required)")
	downloadCmd.Flags().StringVar(&endDateFlag, "end-date", "", "Last day of the range, YYYY-MM-DD (required)")
	downloadCmd.Flags().BoolVar(&downloadFlag, "download", false, "Download the listed files instead of only crawling")
	downloadCmd.Flags().StringVar(&outputDirFlag, "output-dir", "", "Directory to save files (overrides config)")
	downloadCmd.Flags().IntVar(&batchSizeFlag, "batch-size", 0, "Files per batch (overrides config)")
	downloadCmd.Flags().IntVar(&concurrencyFlg, "concurrency", -1, "Parallel fetches within a batch (0 sizes from the host, -1 uses config)")
	downloadCmd.Flags().StringSliceVar(&typesFlag, "types", []string{"all"}, "File types to collect: image, thumbnail, meta, all")
	downloadCmd.Flags().IntVar(&pauseFlag, "pause", -1, "Seconds to pause between batches (-1 uses config)")
	downloadCmd.Flags().IntVar(&dayWorkersFlag, "day-workers", 0, "Day pages fetched in parallel (overrides config, default sequential)")
	downloadCmd.Flags().BoolVar(&useCacheFlag, "cache", false, "Cache parsed day pages on disk")
	downloadCmd.Flags().BoolVar(&buildIndexFlag, "index", false, "Add crawled captures to the local search index")

	_ = downloadCmd.MarkFlagRequired("site")
	_ = downloadCmd.MarkFlagRequired("start-date")
	_ = downloadCmd.MarkFlagRequired("end-date")
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := crawlRange(ctx, cmd)
	if err != nil {
		return err
	}

	renderCrawlSummary(os.Stdout, result)

	if buildIndexFlag || globalConfig.BuildIndex {
		if err := indexCrawl(result); err != nil {
			log.WithError(err).Warn("Indexing crawled captures failed")
		}
	}

	if !downloadFlag {
		log.Info("Crawl only (--download not set), no files fetched")
		return nil
	}

	outputDir := globalConfig.SavePath
	if outputDirFlag != "" {
		outputDir = outputDirFlag
	}

	stats := runEngine(ctx, cmd, result.Summary.FileRefs, fetcher.NewDownloader(newHTTPClient(), outputDir).Operation())
	renderRunStats(os.Stdout, stats)
	return nil
}

// crawlRange performs the shared crawl phase of the download and estimate
// commands: validate inputs, resolve the site, fetch and fold the day pages.
func crawlRange(ctx context.Context, cmd *cobra.Command) (*models.CrawlResult, error) {
	start, err := time.Parse("2006-01-02", startDateFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid --start-date %q: %w", startDateFlag, err)
	}
	end, err := time.Parse("2006-01-02", endDateFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid --end-date %q: %w", endDateFlag, err)
	}

	kinds, err := parseKinds(typesFlag)
	if err != nil {
		return nil, err
	}

	site, err := sites.NewClient(newHTTPClient(), "").Lookup(ctx, siteFlag)
	if err != nil {
		return nil, err
	}
	archiveID := sites.ArchiveID(site.DomainCode, site.SiteCode, productFlag)
	log.Infof("Crawling %s from %s to %s", archiveID, startDateFlag, endDateFlag)

	opts := catalog.Options{Host: globalConfig.Host, DayWorkers: globalConfig.DayWorkers}
	if dayWorkersFlag > 0 {
		opts.DayWorkers = dayWorkersFlag
	}

	if useCacheFlag || globalConfig.UseCache {
		store, err := cache.Open(globalConfig.CachePath)
		if err != nil {
			log.WithError(err).Warn("Day page cache unavailable, crawling without it")
		} else {
			defer store.Close()
			opts.Cache = store
		}
	}

	writer := uilive.New()
	writer.Start()
	defer writer.Stop()
	opts.Progress = func(done, total int) {
		fmt.Fprintf(writer, "Crawling day pages: %d/%d\n", done, total)
	}

	return catalog.New(newHTTPClient(), opts).Crawl(ctx, archiveID, start, end, kinds)
}

// runEngine executes op over refs with the effective batch/concurrency/pause
// settings and live progress.
func runEngine(ctx context.Context, cmd *cobra.Command, refs []models.FileRef, op fetcher.Operation) *models.RunStats {
	batchSize := globalConfig.BatchSize
	if batchSizeFlag > 0 {
		batchSize = batchSizeFlag
	}

	concurrency := globalConfig.Concurrency
	if concurrencyFlg >= 0 {
		concurrency = concurrencyFlg
	}
	if concurrency <= 0 {
		concurrency = sysinfo.Plan()
		log.Infof("Concurrency sized from host resources: %d", concurrency)
	}

	pauseSec := globalConfig.BatchPauseSec
	if pauseFlag >= 0 {
		pauseSec = pauseFlag
	}

	engine := fetcher.NewEngine(concurrency, batchSize, time.Duration(pauseSec)*time.Second)

	writer := uilive.New()
	writer.Start()
	defer writer.Stop()
	engine.Progress = func(batch, totalBatches, done, total int) {
		fmt.Fprintf(writer, "Batch %d/%d: %d/%d files processed\n", batch, totalBatches, done, total)
	}

	return engine.Run(ctx, refs, op)
}

// indexCrawl adds every crawled capture to the configured search index.
func indexCrawl(result *models.CrawlResult) error {
	ix, err := index.Open(globalConfig.IndexPath)
	if err != nil {
		return err
	}
	defer ix.Close()

	n, err := ix.IndexCrawl(result)
	if err != nil {
		return err
	}
	log.Infof("Indexed %d captures into %s", n, globalConfig.IndexPath)
	return nil
}

// parseKinds maps the --types flag values onto file kinds. "all" expands to
// every kind; duplicates collapse.
func parseKinds(values []string) ([]models.FileKind, error) {
	seen := make(map[models.FileKind]bool)
	var kinds []models.FileKind
	add := func(k models.FileKind) {
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}

	for _, v := range values {
		switch v {
		case "image":
			add(models.KindFullRes)
		case "thumbnail":
			add(models.KindThumbnail)
		case "meta":
			add(models.KindMeta)
		case "all":
			for _, k := range models.AllKinds() {
				add(k)
			}
		default:
			return nil, fmt.Errorf("invalid file type %q (want image, thumbnail, meta or all)", v)
		}
	}
	return kinds, nil
}
