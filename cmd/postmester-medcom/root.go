package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions command-line flags
type RootOptions struct {
	ExcelFile string
	Queue     bool
}

// NewRootCommand creates the worker command. Without --queue it processes
// the work queue; with --queue it refreshes the queue from the worklist.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "postmester-medcom",
		Short:         "Route MedCom correspondence into case-management actions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateExcelFile(opts.ExcelFile); err != nil {
				return err
			}
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.ExcelFile, "excel-file", "./Regler.xlsx", "path to the rule workbook")
	cmd.Flags().BoolVar(&opts.Queue, "queue", false, "clear new items and populate the queue from the worklist, then exit")

	return cmd
}

// validateExcelFile runs before anything touches the queue
func validateExcelFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("excel file does not exist: %s", path)
		}
		return fmt.Errorf("failed to stat excel file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("excel file is a directory: %s", path)
	}
	return nil
}
