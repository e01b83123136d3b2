package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/edge-sentinel/internal/db"
)

func newClearCmd(g *globalOptions) *cobra.Command {
	var modelID string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every highlight and the selection of a model",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error {
			if modelID == "" {
				return errors.New("--model is required")
			}
			store, err := db.NewDB(g.dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.ClearHighlights(cmd.Context(), modelID)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d highlights on %s\n", n, modelID)
			return err
		},
	}
	cmd.Flags().StringVar(&modelID, "model", "", "model identifier to reset")
	return cmd
}
