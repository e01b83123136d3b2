package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/edge-sentinel/internal/db"
)

func newRunsCmd(g *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded scans, newest first",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error {
			store, err := db.NewDB(g.dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeRuns(cmd.OutOrStdout(), runs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs listed")

	cmd.AddCommand(&cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show one recorded scan and its exposed floors",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error {
			store, err := db.NewDB(g.dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			verdicts, err := store.ListVerdicts(cmd.Context(), run.RunID)
			if err != nil {
				return err
			}
			return writeRun(cmd.OutOrStdout(), run, verdicts)
		},
	})
	return cmd
}

func writeRuns(w io.Writer, runs []db.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tMODEL\tSTARTED\tCHECKED\tEXPOSED\tSELECTED\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.RunID, r.ModelID, r.StartedAt.Local().Format(time.DateTime),
			r.FloorsChecked, r.FloorsExposed, r.FloorsSelected, r.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}

func writeRun(w io.Writer, r db.Run, verdicts []db.RunVerdict) error {
	fmt.Fprintf(w, "Run:      %s\n", r.RunID)
	fmt.Fprintf(w, "Model:    %s (%s)\n", r.ModelID, r.ModelPath)
	fmt.Fprintf(w, "Started:  %s\n", r.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(w, "Duration: %s\n", r.Duration)
	fmt.Fprintf(w, "Version:  %s (%s)\n", r.Version, r.GitSHA)
	fmt.Fprintf(w, "Floors:   checked=%d exposed=%d selected=%d\n", r.FloorsChecked, r.FloorsExposed, r.FloorsSelected)
	fmt.Fprintf(w, "Config:   %s\n", r.ConfigJSON)
	if len(verdicts) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FLOOR\tUNCOVERED\tEDGE\tSAMPLES\tCOVERED\tELEVATION\tSELECTED")
	for _, v := range verdicts {
		fmt.Fprintf(tw, "%s\t%.2f%%\t%d\t%d\t%d\t%.2f m\t%v\n",
			v.FloorID, v.UncoveredRatio*100, v.EdgeIndex, v.Samples, v.Covered, v.Elevation, v.Selected)
	}
	return tw.Flush()
}
