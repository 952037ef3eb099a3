package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	templateEntity string
	templateMode   string
	templateFormat string
	templateOut    string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write a blank or example import template",
	RunE:  runTemplate,
}

func init() {
	templateCmd.Flags().StringVarP(&templateEntity, "entity", "e", "", "Target entity: questions or courses (required)")
	templateCmd.Flags().StringVarP(&templateMode, "mode", "m", "blank", "Template mode: blank or example")
	templateCmd.Flags().StringVar(&templateFormat, "format", "csv", "Output format: csv or xlsx")
	templateCmd.Flags().StringVarP(&templateOut, "out", "o", "", "Output path (defaults to the generated file name)")

	templateCmd.MarkFlagRequired("entity")
}

func runTemplate(cmd *cobra.Command, args []string) error {
	// Templates are generated from the schema alone, so no store is needed.
	manager, cleanup, err := buildServices(true)
	if err != nil {
		return err
	}
	defer cleanup()

	file, err := manager.Export().Template(cmd.Context(), templateEntity, templateMode, templateFormat)
	if err != nil {
		return fmt.Errorf("template: %w", err)
	}

	out := templateOut
	if out == "" {
		out = file.Name
	}
	if err := os.WriteFile(out, file.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", out, len(file.Data))
	return nil
}
