package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"phenofetch/internal/meta"
)

var metaCmd = &cobra.Command{
	Use:   "meta <directory>",
	Short: "Tabulate downloaded .meta camera files",
	Long: `Parses every .meta file in a directory (typically <output-dir>/meta
after a download) and prints the capture timestamp and camera fields.`,
	Args: cobra.ExactArgs(1),
	RunE: runMeta,
}

func init() {
	rootCmd.AddCommand(metaCmd)
}

func runMeta(cmd *cobra.Command, args []string) error {
	records, err := meta.ScanDir(args[0])
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Site", "Date", "Time", "Exposure", "IP", "MAC", "Camera Temp"})
	for _, rec := range records {
		table.Append([]string{
			rec.Info.SiteCode,
			rec.Info.Date,
			rec.Info.Time,
			rec.ExposureLimit,
			rec.IPAddr,
			rec.MACAddr,
			rec.CameraTemperature,
		})
	}
	table.Render()

	fmt.Printf("%d metadata files\n", len(records))
	return nil
}
