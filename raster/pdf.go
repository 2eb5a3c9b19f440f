package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfPointsPerUnit converts analyzer page units (inches) to PDF points.
const pdfPointsPerUnit = 72

// pdfClip converts a box in page units to a clip rectangle in PDF points.
func pdfClip(box Box) Box {
	return box.scale(pdfPointsPerUnit)
}

// pdftoppmArgs builds the pdftoppm flags that render one page clipped to
// the given rectangle. The clip is in points; pdftoppm's crop flags are in
// pixels at the render DPI. page is pdftoppm's 1-indexed page number.
func pdftoppmArgs(page int, clip Box, dpi int) []string {
	pixels := clip.scale(float64(dpi) / pdfPointsPerUnit).rect()
	return []string{
		"-png",
		"-r", strconv.Itoa(dpi),
		"-q",
		"-singlefile",
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		"-x", strconv.Itoa(pixels.Min.X),
		"-y", strconv.Itoa(pixels.Min.Y),
		"-W", strconv.Itoa(pixels.Dx()),
		"-H", strconv.Itoa(pixels.Dy()),
	}
}

func (r *Rasterizer) rasterizePDF(ctx context.Context, path string, pageNumber int, box Box) (image.Image, error) {
	if err := validatePDFPage(path, pageNumber); err != nil {
		return nil, err
	}

	clip := pdfClip(box)
	if clip.Right <= clip.Left || clip.Bottom <= clip.Top {
		return nil, fmt.Errorf("degenerate bounding box %+v", box)
	}

	dpi := r.PDFRenderDPI
	if dpi <= 0 {
		dpi = defaultPDFRenderDPI
	}
	binary := r.PdftoppmPath
	if binary == "" {
		binary = "pdftoppm"
	}

	tmpDir, err := os.MkdirTemp("", "figaf-render-")
	if err != nil {
		return nil, fmt.Errorf("creating render dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "region")
	args := append(pdftoppmArgs(pageNumber+1, clip, dpi), path, prefix)

	cmd := exec.CommandContext(ctx, binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed on page %d: %w: %s", pageNumber, err, strings.TrimSpace(string(out)))
	}

	rendered, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("reading rendered region: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(rendered))
	if err != nil {
		return nil, fmt.Errorf("decoding rendered region: %w", err)
	}
	return img, nil
}

// validatePDFPage checks that the zero-indexed page exists in the document.
func validatePDFPage(path string, pageNumber int) error {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	if pageNumber < 0 || pageNumber >= total {
		return fmt.Errorf("page %d out of range: document has %d pages", pageNumber, total)
	}
	return nil
}
