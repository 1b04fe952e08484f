package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"phenofetch/internal/fetcher"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the download size of a site's date range",
	Long: `Crawls the date range like download does, then probes file sizes
with header-only requests instead of downloading anything. Metadata files are
counted but never probed; the archive does not report their sizes.`,
	RunE: runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)

	estimateCmd.Flags().StringVar(&siteFlag, "site", "", "Site code, e.g. ABBY (required)")
	estimateCmd.Flags().StringVar(&productFlag, "product", "DP1.00033", "Data product identifier")
	estimateCmd.Flags().StringVar(&startDateFlag, "start-date", "", "First day of the range, YYYY-MM-DD (required)")
	estimateCmd.Flags().StringVar(&endDateFlag, "end-date", "", "Last day of the range, YYYY-MM-DD (required)")
	estimateCmd.Flags().IntVar(&batchSizeFlag, "batch-size", 0, "Probes per batch (overrides config)")
	estimateCmd.Flags().IntVar(&concurrencyFlg, "concurrency", -1, "Parallel probes within a batch (0 sizes from the host, -1 uses config)")
	estimateCmd.Flags().StringSliceVar(&typesFlag, "types", []string{"all"}, "File types to estimate: image, thumbnail, meta, all")
	estimateCmd.Flags().IntVar(&pauseFlag, "pause", -1, "Seconds to pause between batches (-1 uses config)")
	estimateCmd.Flags().IntVar(&dayWorkersFlag, "day-workers", 0, "Day pages fetched in parallel (overrides config, default sequential)")
	estimateCmd.Flags().BoolVar(&useCacheFlag, "cache", false, "Cache parsed day pages on disk")

	_ = estimateCmd.MarkFlagRequired("site")
	_ = estimateCmd.MarkFlagRequired("start-date")
	_ = estimateCmd.MarkFlagRequired("end-date")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := crawlRange(ctx, cmd)
	if err != nil {
		return err
	}

	renderCrawlSummary(os.Stdout, result)

	stats := runEngine(ctx, cmd, result.Summary.FileRefs, fetcher.NewSizeProber(newHTTPClient()).Operation())
	renderEstimate(os.Stdout, stats)
	return nil
}
