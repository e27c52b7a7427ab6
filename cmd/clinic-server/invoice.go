package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/invoice"
)

func invoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Render bill invoices",
	}

	renderCmd := &cobra.Command{
		Use:   "render BILL_ID",
		Short: "Write the invoice for a bill to disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			billID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid bill id %q", args[0])
			}
			formatFlag, _ := cmd.Flags().GetString("format")
			format, err := invoice.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("out")

			ctx := context.Background()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			path, err := a.invoices.RenderInvoice(ctx, billID, format, dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	renderCmd.Flags().String("format", "text", "Invoice format: text or document")
	renderCmd.Flags().String("out", "", "Output directory (default: INVOICE_DIR)")
	cmd.AddCommand(renderCmd)

	return cmd
}
