package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/tiff"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// rasterizeImage crops the box region out of an image file. Multi-frame
// TIFFs select the zero-indexed frame first; every other format decodes
// its single frame and ignores pageNumber. The box is in the image's own
// pixel coordinates and is not scaled.
func (r *Rasterizer) rasterizeImage(path string, pageNumber int, box Box) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	var img image.Image
	if isTIFF(data) {
		img, err = tiffFrame(data, pageNumber)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return cropImage(img, box)
}

// isTIFF matches the little- and big-endian TIFF magic bytes.
func isTIFF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("II\x2a\x00")) || bytes.HasPrefix(data, []byte("MM\x00\x2a"))
}

// tiffFrame decodes every frame of a TIFF and returns frame n.
func tiffFrame(data []byte, n int) (image.Image, error) {
	frames, frameErrs, err := tiff.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding tiff: %w", err)
	}

	var flat []image.Image
	var flatErrs []error
	for i := range frames {
		flat = append(flat, frames[i]...)
		flatErrs = append(flatErrs, frameErrs[i]...)
	}
	if n < 0 || n >= len(flat) {
		return nil, fmt.Errorf("frame %d out of range: tiff has %d frames", n, len(flat))
	}
	if flatErrs[n] != nil {
		return nil, fmt.Errorf("decoding tiff frame %d: %w", n, flatErrs[n])
	}
	return flat[n], nil
}

// cropImage copies the box region of img into a fresh bitmap.
func cropImage(img image.Image, box Box) (image.Image, error) {
	region := box.rect().Intersect(img.Bounds())
	if region.Empty() {
		return nil, fmt.Errorf("bounding box %+v outside image bounds %v", box, img.Bounds())
	}

	out := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Draw(out, out.Bounds(), img, region.Min, draw.Src)
	return out, nil
}
