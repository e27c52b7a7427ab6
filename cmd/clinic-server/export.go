package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/reporting"
)

func exportCmd() *cobra.Command {
	ids := make([]string, 0, len(reporting.PredefinedExports))
	for _, d := range reporting.PredefinedExports {
		ids = append(ids, d.ID)
	}

	cmd := &cobra.Command{
		Use:       "export " + strings.Join(ids, "|"),
		Short:     "Export records as CSV",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: ids,
		RunE: func(cmd *cobra.Command, args []string) error {
			def := reporting.FindExport(args[0])
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = def.FileName
			}

			ctx := context.Background()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.exporter.WriteFile(ctx, a.fs, def.ID, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d row(s) to %s\n", n, out)
			return nil
		},
	}
	cmd.Flags().String("out", "", "Output CSV file (default: <export>.csv)")
	return cmd
}
