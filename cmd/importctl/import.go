package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/campusdesk/import-service/internal/models"
	"github.com/campusdesk/import-service/internal/services"
)

var (
	importFile           string
	importEntity         string
	importCommit         bool
	importSkipDuplicates bool
	importDryRun         bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Validate a CSV/XLSX file and optionally commit it",
	Long: `Parses and validates an upload exactly like the HTTP API, prints the
per-row outcome, and with --commit persists the valid rows.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "CSV or XLSX file to import (required)")
	importCmd.Flags().StringVarP(&importEntity, "entity", "e", "", "Target entity: questions or courses (required)")
	importCmd.Flags().BoolVar(&importCommit, "commit", false, "Commit the valid rows after validation")
	importCmd.Flags().BoolVar(&importSkipDuplicates, "skip-duplicates", true, "Leave duplicate-flagged rows unwritten on commit")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Run against an in-memory store, persisting nothing")

	importCmd.MarkFlagRequired("file")
	importCmd.MarkFlagRequired("entity")
}

func runImport(cmd *cobra.Command, args []string) error {
	manager, cleanup, err := buildServices(importDryRun)
	if err != nil {
		return err
	}
	defer cleanup()

	data, err := os.ReadFile(importFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", importFile, err)
	}

	ctx := cmd.Context()
	summary, err := manager.Import().BeginImport(ctx, services.BeginImportRequest{
		Entity:      importEntity,
		FileName:    filepath.Base(importFile),
		Data:        data,
		InitiatedBy: "importctl",
	})
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	printSummary(cmd, summary)

	if !importCommit {
		fmt.Fprintln(cmd.OutOrStdout(), "Validation only; rerun with --commit to persist the valid rows.")
		return nil
	}

	committed, err := manager.Import().Commit(ctx, summary.SessionID, services.CommitOptions{
		SkipDuplicates: importSkipDuplicates,
	})
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	printTally(cmd, committed)
	return nil
}

func printSummary(cmd *cobra.Command, summary *models.ImportSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session %s (%s): %d rows, %d valid, %d errors, %d duplicate warnings\n",
		summary.SessionID, summary.Entity, summary.TotalRows,
		summary.ValidItems, summary.ErrorCount, len(summary.Duplicates))

	for _, w := range summary.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", w)
	}
	for i, e := range summary.Errors {
		if i == 10 {
			fmt.Fprintf(out, "  ... %d more errors\n", len(summary.Errors)-i)
			break
		}
		fmt.Fprintf(out, "  row %d, %s: %s\n", e.Row, e.Column, e.Message)
	}
	for i, d := range summary.Duplicates {
		if i == 10 {
			fmt.Fprintf(out, "  ... %d more duplicates\n", len(summary.Duplicates)-i)
			break
		}
		fmt.Fprintf(out, "  row %d duplicates existing record %s\n", d.Row, d.ExistingID)
	}
}

func printTally(cmd *cobra.Command, summary *models.ImportSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Commit finished: %s\n", summary.State)
	if summary.Tally != nil {
		fmt.Fprintf(out, "  imported %d, failed %d, skipped %d duplicates\n",
			summary.Tally.Succeeded, summary.Tally.Failed, summary.Tally.SkippedDuplicates)
	}
	for _, ce := range summary.CommitErrors {
		fmt.Fprintf(out, "  row %d failed: %s\n", ce.Row, ce.Message)
	}
}
