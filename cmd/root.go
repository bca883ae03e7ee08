package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"addressproof/internal/logger"
)

var version = "1.0.0"

// errDocumentRejected marks a verification that ran but did not accept the document.
var errDocumentRejected = errors.New("document rejected")

// exitRejected is the exit status for a rejected document, distinct from faults.
const exitRejected = 2

var rootCmd = &cobra.Command{
	Use:   "addressproof",
	Short: "Address proof verifier - checks uploaded documents for a local address",
	Long: `addressproof reads an address-proof document (PDF, JPEG or PNG) with OCR and
decides whether it shows an address inside the configured region and,
optionally, the name of the person who uploaded it.

The region is described by a location catalog; the built-in catalog accepts
the spellings of the Vasai region. Use LOCATION_CATALOG_FILE to load another.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Debug().
			Str("version", version).
			Msg("addressproof executed")

		_ = cmd.Help()
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errDocumentRejected) {
			os.Exit(exitRejected)
		}
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
