package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vigil/internal/app/admin"
	"vigil/internal/domain/vigil"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every vigil on the server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// listing is public, no key needed
		res, err := admin.NewClient(cfg.ServerURL, nil, log).List(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if listJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		vigils := make([]vigil.Vigil, 0, len(res.Vigils))
		for _, v := range res.Vigils {
			vigils = append(vigils, v)
		}
		sort.Slice(vigils, func(i, j int) bool {
			return vigils[i].Date+vigils[i].Time < vigils[j].Date+vigils[j].Time
		})

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "UUID\tDATE\tTIME\tZIPCODE\tLOCATION\tORGANIZER")
		for _, v := range vigils {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", v.UUID, v.Date, v.Time, v.Zipcode, v.Location, v.Organizer)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		id := "none (server is degraded)"
		if res.Identity != nil {
			id = *res.Identity
		}
		color.New(color.Faint).Fprintf(out, "\n%d vigils, remote identity %s\n", res.TotalVigils, id)
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print raw JSON")
}
