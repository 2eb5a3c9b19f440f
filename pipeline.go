// Package figaf enriches document-analysis markdown with vision-model
// descriptions of the figures the analyzer found.
//
// A document flows through four stages: layout analysis produces markdown
// containing <figure> blocks, each figure's bounding region is rendered to
// a PNG on disk, a vision model describes the PNG, and the description is
// spliced back into the figure block. Heading depth is normalized last.
package figaf

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/antflydb/figaf/describe"
	"github.com/antflydb/figaf/layout"
	"github.com/antflydb/figaf/logging"
	"github.com/antflydb/figaf/markdown"
	"github.com/antflydb/figaf/raster"
)

// LayoutAnalyzer produces a markdown analysis of a document.
type LayoutAnalyzer interface {
	AnalyzeDocument(ctx context.Context, document []byte) (*layout.AnalyzeResult, error)
}

// RegionRasterizer renders a page sub-region of the document at path.
type RegionRasterizer interface {
	Rasterize(ctx context.Context, path string, pageNumber int, box raster.Box) (image.Image, error)
}

// ImageDescriber describes a figure image stored on disk.
type ImageDescriber interface {
	Describe(ctx context.Context, imagePath, caption string) (string, error)
}

// Config wires a Pipeline to its backing services.
type Config struct {
	// LayoutEndpoint and LayoutKey reach the layout-analysis service.
	LayoutEndpoint string
	LayoutKey      string

	// VisionBaseURL, VisionKey, VisionDeployment, and VisionAPIVersion
	// reach the Azure OpenAI deployment used for figure descriptions.
	VisionBaseURL    string
	VisionKey        string
	VisionDeployment string
	VisionAPIVersion string

	// Logger receives pipeline progress. Defaults to a noop logger.
	Logger *zap.Logger

	// Normalize post-processes the final markdown. Defaults to
	// markdown.NormalizeHeadings.
	Normalize func(string) string

	// HTTPClient overrides the HTTP client used for layout analysis.
	HTTPClient *http.Client
}

// Pipeline runs layout analysis and figure understanding end to end.
type Pipeline struct {
	analyzer   LayoutAnalyzer
	rasterizer RegionRasterizer
	describer  ImageDescriber
	normalize  func(string) string
	logger     *zap.Logger
}

// New builds a Pipeline from service configuration.
func New(cfg Config) (*Pipeline, error) {
	var layoutOpts []layout.Option
	if cfg.HTTPClient != nil {
		layoutOpts = append(layoutOpts, layout.WithHTTPClient(cfg.HTTPClient))
	}
	analyzer, err := layout.New(cfg.LayoutEndpoint, cfg.LayoutKey, layoutOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating layout client: %w", err)
	}

	describer, err := describe.New(describe.Config{
		BaseURL:    cfg.VisionBaseURL,
		Key:        cfg.VisionKey,
		Deployment: cfg.VisionDeployment,
		APIVersion: cfg.VisionAPIVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("creating describer: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger, err = logging.NewLogger(&logging.Config{Style: logging.StyleNoop})
		if err != nil {
			return nil, fmt.Errorf("creating logger: %w", err)
		}
	}

	normalize := cfg.Normalize
	if normalize == nil {
		normalize = markdown.NormalizeHeadings
	}

	return &Pipeline{
		analyzer:   analyzer,
		rasterizer: raster.New(),
		describer:  describer,
		normalize:  normalize,
		logger:     logger,
	}, nil
}

// AnalyzeLayout analyzes the document at inputPath and returns its markdown
// content with every figure described. Rendered figure regions are written
// to outputDir as PNG files named after the input document. The call blocks
// until analysis and every description round-trip complete.
func (p *Pipeline) AnalyzeLayout(ctx context.Context, inputPath, outputDir string) (string, error) {
	document, err := os.ReadFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}

	p.logger.Info("analyzing document layout",
		zap.String("input", inputPath),
		zap.Int("bytes", len(document)))

	result, err := p.analyzer.AnalyzeDocument(ctx, document)
	if err != nil {
		return "", fmt.Errorf("analyzing document: %w", err)
	}

	mdContent := result.Content

	if len(result.Figures) > 0 {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	for idx, figure := range result.Figures {
		description, err := p.describeFigure(ctx, inputPath, outputDir, idx, figure, mdContent)
		if err != nil {
			return "", err
		}
		mdContent = markdown.PatchFigureDescription(mdContent, description, idx)
	}

	return p.normalize(mdContent), nil
}

// describeFigure renders every non-caption bounding region of one figure,
// describes each render, and returns the concatenated description.
func (p *Pipeline) describeFigure(ctx context.Context, inputPath, outputDir string, idx int, figure layout.Figure, mdContent string) (string, error) {
	var figureContent strings.Builder
	for _, span := range figure.Spans {
		figureContent.WriteString(span.Slice(mdContent))
	}
	p.logger.Debug("figure spans",
		zap.Int("figure", idx),
		zap.String("content", figureContent.String()))

	caption := ""
	var captionRegions []layout.BoundingRegion
	if figure.Caption != nil {
		caption = figure.Caption.Content
		captionRegions = figure.Caption.BoundingRegions
		p.logger.Debug("figure caption",
			zap.Int("figure", idx),
			zap.String("caption", caption))
	}

	var description strings.Builder
	rendered := 0
	for _, region := range figure.BoundingRegions {
		if containsRegion(captionRegions, region) {
			continue
		}
		if len(region.Polygon) < 8 {
			return "", fmt.Errorf("figure %d: bounding region polygon has %d coordinates, want 8", idx, len(region.Polygon))
		}

		img, err := p.rasterizer.Rasterize(ctx, inputPath, region.PageNumber-1, regionBox(region))
		if err != nil {
			return "", fmt.Errorf("rasterizing figure %d: %w", idx, err)
		}

		imagePath := filepath.Join(outputDir, croppedImageName(inputPath, idx, rendered))
		if err := writePNG(imagePath, img); err != nil {
			return "", err
		}
		p.logger.Debug("figure region rendered",
			zap.Int("figure", idx),
			zap.Int("page", region.PageNumber),
			zap.String("file", imagePath))

		regionDescription, err := p.describer.Describe(ctx, imagePath, caption)
		if err != nil {
			return "", fmt.Errorf("describing figure %d: %w", idx, err)
		}
		description.WriteString(regionDescription)
		rendered++
	}

	return description.String(), nil
}

// regionBox reads the region's axis-aligned bounds from its polygon. The
// analyzer lists eight values clockwise from the top-left corner, so
// indices 0,1 hold the top-left vertex and 4,5 the bottom-right.
func regionBox(region layout.BoundingRegion) raster.Box {
	return raster.Box{
		Left:   region.Polygon[0],
		Top:    region.Polygon[1],
		Right:  region.Polygon[4],
		Bottom: region.Polygon[5],
	}
}

func containsRegion(regions []layout.BoundingRegion, region layout.BoundingRegion) bool {
	for _, r := range regions {
		if r.Equal(region) {
			return true
		}
	}
	return false
}

// croppedImageName names the PNG for one rendered figure region. The first
// region of a figure keeps the bare historical name; later regions append
// a numeric suffix.
func croppedImageName(inputPath string, figureIndex, regionIndex int) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	name := fmt.Sprintf("%s_cropped_image_%d", stem, figureIndex)
	if regionIndex > 0 {
		name = fmt.Sprintf("%s_%d", name, regionIndex)
	}
	return name + ".png"
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating figure image: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding figure image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing figure image: %w", err)
	}
	return nil
}
