// Package pdfx turns PDF files into ordered sequences of page-tagged text.
package pdfx

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"hragent/internal/domain"
)

// ExtractPages reads every page of the PDF at path and returns its plain
// text with 1-based page numbers. Pages that fail text extraction are
// skipped; an unreadable file returns an error.
func ExtractPages(path string) ([]domain.Page, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []domain.Page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, domain.Page{Number: i, Text: text})
	}
	return pages, nil
}

// LoadDocument extracts a full document from a PDF file. The document ID is
// derived from the file path so that re-ingesting the same file always
// yields the same chunk IDs.
func LoadDocument(path string) (domain.Document, error) {
	pages, err := ExtractPages(path)
	if err != nil {
		return domain.Document{}, err
	}
	return domain.Document{ID: hashString(path), Path: path, Pages: pages}, nil
}

// FindPDFs lists the PDF files under dir in stable lexical order.
func FindPDFs(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range matches {
		if strings.HasSuffix(strings.ToLower(m), ".pdf") {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
