package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/buyer-signals/internal/registry"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inspect the configured buyer roster",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List buyers with their resolved fetch candidates and rule coverage",
	RunE: func(_ *cobra.Command, _ []string) error {
		reg, err := registry.Load(cfg.Sources.BuyersPath, cfg.Sources.FallbacksPath, cfg.Sources.RulesPath)
		if err != nil {
			return eris.Wrap(err, "load source registry")
		}
		formatSourcesList(os.Stdout, reg)
		return nil
	},
}

func formatSourcesList(w io.Writer, reg *registry.Registry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BUYER\tCANDIDATES\tDATE RULES\tGEO HINTS")
	for _, b := range reg.Buyers {
		rule := reg.RuleFor(b.ID)
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n",
			b.ID,
			strings.Join(b.Candidates(), ", "),
			len(rule.CompiledDates),
			len(rule.GeographyHints),
		)
	}
	_ = tw.Flush()
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)
	rootCmd.AddCommand(sourcesCmd)
}
