package invoice

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/billing"
)

const textDescWidth = 40

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

// RenderText lays the invoice out in fixed-width columns. The output depends
// only on inv, so re-rendering unchanged data is byte-identical.
func RenderText(inv *Invoice) []byte {
	b, p := inv.Bill, inv.Patient
	lines := []string{
		"=== " + inv.Title + " ===",
		"Bill ID: " + itoa(b.ID),
		"Date: " + b.CreatedAt.UTC().Format(time.RFC3339),
		"",
		"Patient:",
		"  Name: " + p.Name,
		"  Age/Gender: " + p.AgeGender(),
		"  Phone: " + p.Phone,
		"  Address: " + p.Address,
		"",
		fmt.Sprintf("%-40s %3s %8s %10s", "Description", "Qty", "Unit", "Amount"),
	}
	for _, it := range inv.Items {
		lines = append(lines, fmt.Sprintf("%-40s %3d %8s %10s",
			truncate(it.Description, textDescWidth), it.Quantity,
			billing.Money(it.UnitPrice), billing.Money(it.Amount)))
	}
	lines = append(lines, "", "TOTAL: "+billing.Money(b.Total))
	return []byte(strings.Join(lines, "\n") + "\n")
}
