//go:build nopdf

package invoice

func defaultDocumentRenderer() DocumentRenderer { return nil }
