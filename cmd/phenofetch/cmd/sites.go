package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"phenofetch/internal/sites"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List available camera sites",
	Long:  `Fetches the site listing from the network API and prints every camera site, grouped by domain.`,
	RunE:  runSites,
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}

func runSites(cmd *cobra.Command, args []string) error {
	client := sites.NewClient(newHTTPClient(), "")
	all, err := client.List(cmd.Context())
	if err != nil {
		return err
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].DomainCode != all[j].DomainCode {
			return all[i].DomainCode < all[j].DomainCode
		}
		return all[i].SiteCode < all[j].SiteCode
	})

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Domain", "Site", "State", "Type", "Description"})
	for _, site := range all {
		table.Append([]string{site.DomainCode, site.SiteCode, site.StateCode, site.SiteType, site.SiteDescription})
	}
	table.Render()

	fmt.Printf("%d sites\n", len(all))
	return nil
}
