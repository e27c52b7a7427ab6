// Package invoice renders stored bills into invoice artifacts: a monospaced
// text file, and a paginated PDF when the build includes document support.
package invoice

import (
	"strings"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/billing"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/patient"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/apperr"
)

type Format string

const (
	FormatText     Format = "text"
	FormatDocument Format = "document"
)

// ParseFormat accepts "text"/"txt" and "document"/"pdf". Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "document", "pdf":
		return FormatDocument, nil
	default:
		return "", apperr.Invalid("format", "must be text or document")
	}
}

// Ext is the file extension of the format's artifact.
func (f Format) Ext() string {
	if f == FormatDocument {
		return "pdf"
	}
	return "txt"
}

func (f Format) ContentType() string {
	if f == FormatDocument {
		return "application/pdf"
	}
	return "text/plain; charset=utf-8"
}

// FileName is the deterministic artifact name for a bill.
func FileName(billID int64, f Format) string {
	return "invoice_" + itoa(billID) + "." + f.Ext()
}

// Invoice is the logical content both encodings lay out.
type Invoice struct {
	Title   string
	Bill    *billing.Bill
	Items   []*billing.BillItem
	Patient *patient.Patient
}

// Artifact is a rendered invoice held in memory.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// DocumentRenderer lays an invoice out as a paginated document.
type DocumentRenderer interface {
	RenderDocument(inv *Invoice) ([]byte, error)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
