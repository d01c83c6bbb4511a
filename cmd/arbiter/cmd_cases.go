package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dispute-arbiter/internal/config"
	"dispute-arbiter/internal/store"
)

var casesFlags struct {
	dbPath         string
	limit          int
	responsibility string
}

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "Show recent verdicts from the history database",
	Args:  cobra.NoArgs,
	RunE:  runCases,
}

func init() {
	f := casesCmd.Flags()
	f.StringVar(&casesFlags.dbPath, "db", "", "History DB path (default: $ARBITER_DB_PATH)")
	f.IntVar(&casesFlags.limit, "limit", 20, "Maximum number of verdicts to show")
	f.StringVar(&casesFlags.responsibility, "responsibility", "", "Only show verdicts with this responsibility")
}

func runCases(cmd *cobra.Command, args []string) error {
	path := casesFlags.dbPath
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		path = cfg.Store.Path
	}

	db, err := store.Open(path, true)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, total, err := db.ListVerdicts(store.VerdictQuery{
		Responsibility: casesFlags.responsibility,
		Limit:          casesFlags.limit,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CASE\tTYPE\tRESPONSIBILITY\tRESOLUTION\tCONFIDENCE\tDECIDED")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.CaseID, r.DisputeType, r.Responsibility, r.Resolution, r.Confidence,
			r.DecidedAt.Format("2006-01-02 15:04:05"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d of %d verdicts\n", len(rows), total)
	return nil
}
