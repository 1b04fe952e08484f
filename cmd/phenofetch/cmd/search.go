package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"phenofetch/internal/index"
)

var searchLimitFlag int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search previously indexed captures",
	Long: `Queries the local search index built by 'download --index'. The
query uses bleve query-string syntax, e.g. 'date:2021-01-01' or 'site:NEON*'.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchLimitFlag, "limit", 25, "Maximum number of hits to print")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ix, err := index.Open(globalConfig.IndexPath)
	if err != nil {
		return err
	}
	defer ix.Close()

	res, err := ix.Search(args[0], searchLimitFlag)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Site", "Date", "Time", "URL"})
	for _, hit := range res.Hits {
		table.Append([]string{
			fieldString(hit.Fields, "site"),
			fieldString(hit.Fields, "date"),
			fieldString(hit.Fields, "time"),
			fieldString(hit.Fields, "url"),
		})
	}
	table.Render()

	fmt.Printf("%d of %d matches\n", len(res.Hits), res.Total)
	return nil
}

func fieldString(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}
