package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/weiihann/ecoquest-analytics/pkg/analytics"
)

var impactCmd = &cobra.Command{
	Use:   "impact <material> <collected>",
	Short: "Print the environmental impact estimate for a material",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		collected, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid collected count %q: %w", args[1], err)
		}
		return printImpact(cmd.OutOrStdout(), args[0], collected)
	},
}

func printImpact(w io.Writer, material string, collected int64) error {
	est := analytics.ComputeImpact(material, collected)
	if est == nil {
		_, err := fmt.Fprintf(w, "%s: no estimate for %s pcs\n", material, analytics.FormatNumber(collected))
		return err
	}
	_, err := fmt.Fprintf(w, "%s: %s: %s\n", material, est.Label, est.Display)
	return err
}

func init() {
	rootCmd.AddCommand(impactCmd)
}
