package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsEntity string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the record count for a collection",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVarP(&statsEntity, "entity", "e", "", "Entity to count: questions or courses (required)")
	statsCmd.MarkFlagRequired("entity")
}

func runStats(cmd *cobra.Command, args []string) error {
	manager, cleanup, err := buildServices(false)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := manager.Catalog().Stats(cmd.Context(), statsEntity)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records (as of %s)\n",
		stats.Entity, stats.Count, stats.RefreshedAt.Format("2006-01-02 15:04:05"))
	return nil
}
