// Package source provides page images for processing: PDF documents
// rendered at a DPI, or directories of already-scanned images.
package source

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Source yields page images by 0-based index.
type Source interface {
	PageCount() int
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Open picks a source by path: .pdf goes through go-fitz, anything
// else is treated as an image file or directory.
func Open(path string) (Source, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return NewPDFSource(path)
	}
	return NewDirSource(path)
}

// PDFSource renders pages of a PDF document.
type PDFSource struct {
	doc  *fitz.Document
	path string
}

// NewPDFSource opens a PDF for rendering.
func NewPDFSource(path string) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	return &PDFSource{doc: doc, path: path}, nil
}

func (s *PDFSource) PageCount() int {
	return s.doc.NumPage()
}

// RenderPage rasterizes one page at the given DPI. A fresh document
// handle is opened per call because fitz handles are not safe for
// concurrent workers.
func (s *PDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	workerDoc, err := fitz.New(s.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(dpi))
}

func (s *PDFSource) Close() error {
	return s.doc.Close()
}
