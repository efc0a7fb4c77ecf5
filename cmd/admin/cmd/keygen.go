package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vigil/internal/domain/identity"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an admin keypair",
	Long: `Prints a fresh secp256k1 keypair. Give the public key to the server
as ADMIN_PUBLIC_KEY and keep the private key as VIGIL_ADMIN_KEY.`,
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, _ []string) error {
		cred, err := identity.Generate()
		if err != nil {
			return err
		}

		bold := color.New(color.Bold)
		out := cmd.OutOrStdout()
		bold.Fprint(out, "ADMIN_PUBLIC_KEY=")
		fmt.Fprintln(out, cred.PublicKey())
		bold.Fprint(out, "VIGIL_ADMIN_KEY=")
		fmt.Fprintln(out, cred.PrivateKeyHex())
		color.New(color.FgYellow).Fprintln(out, "Store the private key somewhere safe; it is not recoverable.")
		return nil
	},
}
