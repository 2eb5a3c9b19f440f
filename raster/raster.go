// Package raster renders sub-regions of document pages to in-memory
// bitmaps.
//
// Two coordinate systems are in play and never mix. Layout analysis
// reports PDF regions in inches; those are converted to PDF points and
// rendered at fixed DPI. Raster-image regions are already in pixels and
// are cropped directly with no scaling.
package raster

import (
	"context"
	"image"
	"math"
	"mime"
	"path/filepath"
	"strings"
)

// Box is an axis-aligned bounding box (left, top, right, bottom) in the
// source document's page units: inches for PDF pages, pixels for raster
// images.
type Box struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// scale returns the box with every coordinate multiplied by f.
func (b Box) scale(f float64) Box {
	return Box{
		Left:   b.Left * f,
		Top:    b.Top * f,
		Right:  b.Right * f,
		Bottom: b.Bottom * f,
	}
}

// rect returns the box as an integer pixel rectangle, rounding each edge.
func (b Box) rect() image.Rectangle {
	return image.Rect(
		int(math.Round(b.Left)),
		int(math.Round(b.Top)),
		int(math.Round(b.Right)),
		int(math.Round(b.Bottom)),
	)
}

const defaultPDFRenderDPI = 300

// Rasterizer renders a page sub-region of a document to a bitmap,
// dispatching on the document's content type. The zero value is usable and
// renders PDFs at 300 DPI through the pdftoppm binary found on PATH.
type Rasterizer struct {
	// PDFRenderDPI is the resolution PDF regions are rendered at.
	PDFRenderDPI int

	// PdftoppmPath locates the poppler pdftoppm binary.
	PdftoppmPath string
}

// New creates a Rasterizer with default settings.
func New() *Rasterizer {
	return &Rasterizer{
		PDFRenderDPI: defaultPDFRenderDPI,
		PdftoppmPath: "pdftoppm",
	}
}

// Rasterize renders the box region of the zero-indexed page of the
// document at path. PDF boxes are in inches and converted to points
// before rendering; raster-image boxes are pixel coordinates used as-is.
// Unreadable files, out-of-range pages, and degenerate boxes are errors.
func (r *Rasterizer) Rasterize(ctx context.Context, path string, pageNumber int, box Box) (image.Image, error) {
	if strings.Contains(DetectContentType(path), "application/pdf") {
		return r.rasterizePDF(ctx, path, pageNumber, box)
	}
	return r.rasterizeImage(path, pageNumber, box)
}

// DetectContentType guesses the MIME type of a document from its path.
func DetectContentType(path string) string {
	ext := filepath.Ext(path)
	if ext != "" {
		if mimeType := mime.TypeByExtension(ext); mimeType != "" {
			return mimeType
		}
	}

	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tiff", ".tif":
		return "image/tiff"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	case ".gif":
		return "image/gif"
	}

	return "application/octet-stream"
}
