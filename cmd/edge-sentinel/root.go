package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/banshee-data/edge-sentinel/internal/monitoring"
)

const defaultDBPath = "edge-sentinel.db"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	dbPath  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:          "edge-sentinel",
		Short:        "Detect unguarded floor edges in building models",
		SilenceUsage: true,
	}
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		monitoring.SetVerbose(g.verbose)
		if g.verbose {
			log.SetFlags(log.LstdFlags | log.Lmicroseconds)
		}
	}
	root.PersistentFlags().StringVar(&g.dbPath, "db", defaultDBPath, "path to the sqlite database")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log per-edge coverage")

	root.AddCommand(
		newScanCmd(g),
		newClearCmd(g),
		newRunsCmd(g),
		newMigrateCmd(g),
		newVersionCmd(),
	)
	return root
}
