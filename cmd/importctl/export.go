package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/campusdesk/import-service/internal/services"
)

var (
	exportEntity     string
	exportFormat     string
	exportOut        string
	exportType       string
	exportDifficulty string
	exportCategory   string
	exportDepartment string
	exportSemester   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a stored collection to CSV or XLSX",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportEntity, "entity", "e", "", "Entity to export: questions or courses (required)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path (defaults to the generated file name)")
	exportCmd.Flags().StringVar(&exportType, "type", "", "Filter questions by question type")
	exportCmd.Flags().StringVar(&exportDifficulty, "difficulty", "", "Filter questions by difficulty")
	exportCmd.Flags().StringVar(&exportCategory, "category", "", "Filter questions by category")
	exportCmd.Flags().StringVar(&exportDepartment, "department", "", "Filter courses by department")
	exportCmd.Flags().StringVar(&exportSemester, "semester", "", "Filter courses by semester")

	exportCmd.MarkFlagRequired("entity")
}

func runExport(cmd *cobra.Command, args []string) error {
	manager, cleanup, err := buildServices(false)
	if err != nil {
		return err
	}
	defer cleanup()

	filter := services.CatalogFilter{
		Type:       exportType,
		Difficulty: exportDifficulty,
		Category:   exportCategory,
		Department: exportDepartment,
		Semester:   exportSemester,
	}
	file, err := manager.Export().ExportCollection(cmd.Context(), exportEntity, exportFormat, filter)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	out := exportOut
	if out == "" {
		out = file.Name
	}
	if err := os.WriteFile(out, file.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", out, len(file.Data))
	return nil
}
