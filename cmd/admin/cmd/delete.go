package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <uuid>",
	Short: "Delete a vigil",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		res, err := c.Delete(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("delete %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		color.New(color.FgGreen).Fprintf(out, "Deleted %s\n", res.UUID)
		fmt.Fprintf(out, "Synced to: %s\n", strings.Join(res.SyncedTo, ", "))
		fmt.Fprintf(out, "Remaining vigils: %d\n", res.RemainingVigils)
		return nil
	},
}
