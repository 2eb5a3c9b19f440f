package raster

import (
	"image"
	"testing"
)

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "pdf", path: "report.pdf", want: "application/pdf"},
		{name: "png", path: "/tmp/figure.png", want: "image/png"},
		{name: "jpeg", path: "scan.jpg", want: "image/jpeg"},
		{name: "tiff", path: "pages.tiff", want: "image/tiff"},
		{name: "tif", path: "pages.tif", want: "image/tiff"},
		{name: "no extension", path: "README", want: "application/octet-stream"},
		{name: "unknown extension", path: "data.figcrop", want: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectContentType(tt.path); got != tt.want {
				t.Errorf("DetectContentType(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestBoxScale(t *testing.T) {
	got := Box{Left: 1, Top: 2, Right: 3.5, Bottom: 4}.scale(2)
	want := Box{Left: 2, Top: 4, Right: 7, Bottom: 8}
	if got != want {
		t.Errorf("scale(2) = %+v, want %+v", got, want)
	}
}

func TestBoxRect(t *testing.T) {
	tests := []struct {
		name string
		box  Box
		want image.Rectangle
	}{
		{
			name: "integral",
			box:  Box{Left: 1, Top: 2, Right: 3, Bottom: 4},
			want: image.Rect(1, 2, 3, 4),
		},
		{
			name: "rounds halves away from zero",
			box:  Box{Left: 0.5, Top: 1.4, Right: 2.5, Bottom: 3.6},
			want: image.Rect(1, 1, 3, 4),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.rect(); got != tt.want {
				t.Errorf("rect() = %v, want %v", got, tt.want)
			}
		})
	}
}
