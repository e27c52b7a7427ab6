package invoice

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/billing"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/apperr"
)

const DefaultTitle = "Hospital Invoice"

// BillSource loads a bill together with its items and patient.
type BillSource interface {
	GetBill(ctx context.Context, id int64) (*billing.BillDetail, error)
}

// Options configures a Renderer. Zero values fall back to the current
// directory and DefaultTitle.
type Options struct {
	Dir   string
	Title string
}

// Renderer turns stored bills into invoice artifacts and writes them to fs.
type Renderer struct {
	bills    BillSource
	fs       afero.Fs
	dir      string
	title    string
	document DocumentRenderer
	logger   zerolog.Logger
}

// NewRenderer creates a Renderer. Document output uses the PDF renderer
// compiled into this build, if any.
func NewRenderer(bills BillSource, fs afero.Fs, opts Options, logger zerolog.Logger) *Renderer {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	return &Renderer{
		bills:    bills,
		fs:       fs,
		dir:      opts.Dir,
		title:    opts.Title,
		document: defaultDocumentRenderer(),
		logger:   logger.With().Str("component", "invoice").Logger(),
	}
}

// SetDocumentRenderer replaces the document renderer. Nil disables
// document output.
func (r *Renderer) SetDocumentRenderer(d DocumentRenderer) {
	r.document = d
}

// DocumentAvailable reports whether document output is supported.
func (r *Renderer) DocumentAvailable() bool { return r.document != nil }

// BuildInvoice renders bill billID in format without touching the filesystem.
func (r *Renderer) BuildInvoice(ctx context.Context, billID int64, format Format) (*Artifact, error) {
	if format != FormatText && format != FormatDocument {
		return nil, apperr.Invalid("format", "must be text or document")
	}
	if format == FormatDocument && r.document == nil {
		return nil, apperr.CapabilityUnavailable("document rendering")
	}

	detail, err := r.bills.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	inv := &Invoice{Title: r.title, Bill: detail.Bill, Items: detail.Items, Patient: detail.Patient}

	var data []byte
	switch format {
	case FormatDocument:
		data, err = r.document.RenderDocument(inv)
		if err != nil {
			return nil, fmt.Errorf("render document for bill %d: %w", billID, err)
		}
	default:
		data = RenderText(inv)
	}
	return &Artifact{Name: FileName(billID, format), ContentType: format.ContentType(), Data: data}, nil
}

// RenderInvoice renders bill billID and writes it to dir (the configured
// directory when empty), returning the artifact path. The file is written
// to a temporary name and renamed into place, so a failed render never
// leaves a partial artifact behind.
func (r *Renderer) RenderInvoice(ctx context.Context, billID int64, format Format, dir string) (string, error) {
	art, err := r.BuildInvoice(ctx, billID, format)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = r.dir
	}
	path := filepath.Join(dir, art.Name)
	if err := writeAtomic(r.fs, dir, path, art.Data); err != nil {
		return "", err
	}

	r.logger.Info().
		Int64("bill_id", billID).
		Str("format", string(format)).
		Str("path", path).
		Int("bytes", len(art.Data)).
		Msg("invoice rendered")
	return path, nil
}

func writeAtomic(fs afero.Fs, dir, path string, data []byte) error {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create invoice dir %s: %w", dir, err)
	}
	tmp, err := afero.TempFile(fs, dir, ".invoice-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fs.Remove(name)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(name)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := fs.Rename(name, path); err != nil {
		fs.Remove(name)
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
