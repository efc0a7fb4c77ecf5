package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var urlCmd = &cobra.Command{
	Use:   "url",
	Short: "Print a signed moderation page URL",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		u, err := c.PageURL()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), u)
		color.New(color.Faint).Fprintln(cmd.ErrOrStderr(), "valid for about two minutes")
		return nil
	},
}
