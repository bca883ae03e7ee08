package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"addressproof/internal/config"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the active location catalog",
	Long: `Print the region name, the accepted location spellings in match order and
the address keywords. The catalog comes from LOCATION_CATALOG_FILE when set,
otherwise the built-in Vasai region catalog is used.`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

// CatalogOutput represents the JSON output structure when --json flag is used
type CatalogOutput struct {
	Region          string   `json:"region"`
	Locations       []string `json:"locations"`
	AddressKeywords []string `json:"address_keywords"`
	Source          string   `json:"source"`
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().Bool("json", false, "Output as JSON")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cat, err := cfg.LoadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load location catalog: %w", err)
	}

	out := CatalogOutput{
		Region:          cat.Region(),
		Locations:       cat.Entries(),
		AddressKeywords: cat.Keywords(),
		Source:          "built-in",
	}
	if cfg.LocationCatalogFile != "" {
		out.Source = cfg.LocationCatalogFile
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Region: %s (%s)\n", out.Region, out.Source)
	b.WriteString("Locations:\n")
	for i, loc := range out.Locations {
		fmt.Fprintf(&b, "  %2d. %s\n", i+1, loc)
	}
	fmt.Fprintf(&b, "Address keywords: %s\n", strings.Join(out.AddressKeywords, ", "))
	_, err = os.Stdout.WriteString(b.String())
	return err
}
