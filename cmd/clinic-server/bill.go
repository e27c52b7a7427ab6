package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/billing"
)

func billCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Create and list bills",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a bill for a patient",
		Example: `  clinic bill create --patient 1 --item "Consultation:1:300" --item "Paracetamol:2:2.50"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			patientID, _ := cmd.Flags().GetInt64("patient")
			raw, _ := cmd.Flags().GetStringArray("item")

			items := make([]billing.ItemInput, 0, len(raw))
			for i, s := range raw {
				it, err := parseItem(s)
				if err != nil {
					return fmt.Errorf("--item %d: %w", i, err)
				}
				items = append(items, it)
			}

			ctx := context.Background()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			detail, err := a.bills.CreateBill(ctx, patientID, items)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bill %d created for %s: total %s\n",
				detail.Bill.ID, detail.Patient.Name, billing.Money(detail.Bill.Total))
			return nil
		},
	}
	createCmd.Flags().Int64("patient", 0, "Patient ID")
	createCmd.Flags().StringArray("item", nil, `Line item as "description:quantity:unit_price" (repeatable)`)
	_ = createCmd.MarkFlagRequired("patient")
	cmd.AddCommand(createCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show bill history, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			patientID, _ := cmd.Flags().GetInt64("patient")
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			ctx := context.Background()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var (
				bills []*billing.BillSummary
				total int
			)
			if patientID > 0 {
				bills, total, err = a.bills.ListBillsByPatient(ctx, patientID, limit, offset)
			} else {
				bills, total, err = a.bills.ListBills(ctx, limit, offset)
			}
			if err != nil {
				return err
			}
			printBills(cmd.OutOrStdout(), bills, total)
			return nil
		},
	}
	listCmd.Flags().Int64("patient", 0, "Only bills of this patient")
	listCmd.Flags().Int("limit", 20, "Page size")
	listCmd.Flags().Int("offset", 0, "Rows to skip")
	cmd.AddCommand(listCmd)

	return cmd
}

// parseItem reads "description:quantity:unit_price". The description may
// itself contain colons, so the string is split from the right.
func parseItem(s string) (billing.ItemInput, error) {
	last := strings.LastIndex(s, ":")
	if last < 0 {
		return billing.ItemInput{}, fmt.Errorf("expected description:quantity:unit_price, got %q", s)
	}
	mid := strings.LastIndex(s[:last], ":")
	if mid < 0 {
		return billing.ItemInput{}, fmt.Errorf("expected description:quantity:unit_price, got %q", s)
	}

	qty, err := strconv.Atoi(strings.TrimSpace(s[mid+1 : last]))
	if err != nil {
		return billing.ItemInput{}, fmt.Errorf("quantity %q is not an integer", s[mid+1:last])
	}
	price, err := decimal.NewFromString(strings.TrimSpace(s[last+1:]))
	if err != nil {
		return billing.ItemInput{}, fmt.Errorf("unit price %q is not a number", s[last+1:])
	}
	return billing.ItemInput{
		Description: strings.TrimSpace(s[:mid]),
		Quantity:    qty,
		UnitPrice:   price,
	}, nil
}

func printBills(out io.Writer, bills []*billing.BillSummary, total int) {
	fmt.Fprintf(out, "%-8s %-10s %-30s %12s %6s %s\n", "ID", "PATIENT", "NAME", "TOTAL", "ITEMS", "CREATED")
	for _, b := range bills {
		fmt.Fprintf(out, "%-8d %-10d %-30s %12s %6d %s\n",
			b.ID, b.PatientID, b.PatientName, billing.Money(b.Total), b.ItemCount,
			b.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(out, "(%d of %d)\n", len(bills), total)
}
