package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
	"golang.org/x/term"

	"vigil/internal/app/admin"
	"vigil/internal/app/admin/config"
	"vigil/internal/domain/identity"
	"vigil/internal/utils/logger"
)

var (
	cfgFile   string
	serverURL string
	debug     bool

	cfg *config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vigil-admin",
	Short: "Moderation tool for a vigil server",
	Long: `vigil-admin signs admin requests with the admin private key.

The key is read from VIGIL_ADMIN_KEY or prompted for without echo.
The server only accepts a signature for two minutes after it is made.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serverURL != "" {
		cfg.ServerURL = strings.TrimRight(serverURL, "/")
	}

	if debug {
		log = logger.New(cfg.Env, "")
	} else {
		log = logger.Discard()
	}
	return nil
}

// adminCredential returns the admin key from the environment or a prompt.
func adminCredential() (*identity.Credential, error) {
	keyHex := cfg.PrivateKey
	if keyHex == "" {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return nil, errors.New("VIGIL_ADMIN_KEY is not set and stdin is not a terminal")
		}
		fmt.Fprint(os.Stderr, "Admin private key: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		keyHex = strings.TrimSpace(string(raw))
	}
	return identity.FromPrivateKeyHex(keyHex)
}

func newClient() (*admin.Client, error) {
	cred, err := adminCredential()
	if err != nil {
		return nil, err
	}
	return admin.NewClient(cfg.ServerURL, cred, log), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "vigil server URL")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log HTTP requests")

	rootCmd.AddCommand(keygenCmd, urlCmd, deleteCmd, listCmd)
}
