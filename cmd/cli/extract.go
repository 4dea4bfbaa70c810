package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"smartrfq/pkg/extract"

	"github.com/spf13/cobra"
)

func newExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file]",
		Short: "Print the [ITEM-n] quotes found in a reply (reads stdin without a file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			text, err := io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			items := extract.ExtractItems(string(text))
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no items found")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ITEM\tDESCRIPTION\tQTY\tPRICE")
			for _, it := range items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", it.Number, strOrDash(it.Description), intOrDash(it.Quantity), priceOrDash(it.UnitPrice))
			}
			return tw.Flush()
		},
	}
}

func strOrDash(s *string) string {
	if s == nil {
		return "-"
	}
	return orDash(*s)
}

func intOrDash(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func priceOrDash(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}
