package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"phenofetch/internal/helpers"
	"phenofetch/internal/models"
)

// maxErrorsShown bounds the error detail printed after a run; the full list
// stays on the stats struct.
const maxErrorsShown = 5

// renderCrawlSummary prints the per-range crawl totals.
func renderCrawlSummary(w io.Writer, result *models.CrawlResult) {
	s := result.Summary

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"", "Count"})
	table.Append([]string{"Days in range", strconv.Itoa(s.TotalDays)})
	table.Append([]string{"Days with data", strconv.Itoa(s.DaysWithData)})
	table.Append([]string{"Images", strconv.Itoa(s.TotalImages)})
	table.Append([]string{"Thumbnails", strconv.Itoa(s.TotalThumbnails)})
	table.Append([]string{"Metadata files", strconv.Itoa(s.TotalMetadata)})
	table.Append([]string{"Files to fetch", strconv.Itoa(len(s.FileRefs))})
	table.Render()
}

// renderRunStats prints the download run totals plus up to maxErrorsShown
// failures.
func renderRunStats(w io.Writer, stats *models.RunStats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"", "Count", "Size"})
	table.Append([]string{"Full resolution", strconv.Itoa(stats.FullRes.Count), helpers.BytesToSize(uint64(stats.FullRes.Bytes))})
	table.Append([]string{"Thumbnails", strconv.Itoa(stats.Thumbnail.Count), helpers.BytesToSize(uint64(stats.Thumbnail.Bytes))})
	table.Append([]string{"Metadata", strconv.Itoa(stats.Meta.Count), helpers.BytesToSize(uint64(stats.Meta.Bytes))})
	table.Append([]string{"TOTAL", strconv.Itoa(stats.Total), helpers.BytesToSize(uint64(stats.TotalBytes))})
	table.Render()

	fmt.Fprintf(w, "Successful: %d  Already existed: %d  Failed: %d\n",
		stats.Successful, stats.AlreadyExisted, stats.Failed)

	for i, e := range stats.Errors {
		if i >= maxErrorsShown {
			fmt.Fprintf(w, "... and %d more errors\n", len(stats.Errors)-maxErrorsShown)
			break
		}
		fmt.Fprintf(w, "  %s: %s\n", e.Ref.URL, e.Error)
	}
}

// renderEstimate prints the size-probe totals. Metadata sizes are never
// reported by the archive, so that row carries a note and the TOTAL row
// covers images and thumbnails only.
func renderEstimate(w io.Writer, stats *models.RunStats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"", "Count", "Estimated Size"})
	table.Append([]string{"Full resolution", strconv.Itoa(stats.FullRes.Count), helpers.BytesToSize(uint64(stats.FullRes.Bytes))})
	table.Append([]string{"Thumbnails", strconv.Itoa(stats.Thumbnail.Count), helpers.BytesToSize(uint64(stats.Thumbnail.Bytes))})
	table.Append([]string{"Metadata", strconv.Itoa(stats.Meta.Count), "size estimate not available"})
	table.Append([]string{"TOTAL (excl. metadata)", strconv.Itoa(stats.FullRes.Count + stats.Thumbnail.Count),
		helpers.BytesToSize(uint64(stats.FullRes.Bytes + stats.Thumbnail.Bytes))})
	table.Render()

	if stats.Failed > 0 {
		fmt.Fprintf(w, "%d files could not be probed\n", stats.Failed)
	}
}
