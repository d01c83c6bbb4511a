package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dispute-arbiter/internal/dispute"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the supported dispute types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VALUE\tLABEL")
		for _, t := range dispute.DisputeTypes() {
			fmt.Fprintf(w, "%s\t%s\n", t.Value, t.Label)
		}
		return w.Flush()
	},
}
