/*
Copyright 2025 The Antfly Contributors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package layout

// AnalyzeResult is the completed output of a layout analysis: the markdown
// rendering of the document plus the figure regions the service detected.
type AnalyzeResult struct {
	ModelID         string   `json:"modelId,omitempty"`
	APIVersion      string   `json:"apiVersion,omitempty"`
	StringIndexType string   `json:"stringIndexType,omitempty"`
	ContentFormat   string   `json:"contentFormat,omitempty"`
	Content         string   `json:"content"`
	Figures         []Figure `json:"figures,omitempty"`
}

// Figure is a detected non-text visual region. A figure may span several
// bounding regions (for example a chart body plus its caption) and carries
// zero or one caption.
type Figure struct {
	ID              string           `json:"id,omitempty"`
	Spans           []Span           `json:"spans,omitempty"`
	Caption         *Caption         `json:"caption,omitempty"`
	BoundingRegions []BoundingRegion `json:"boundingRegions,omitempty"`
}

// Caption is the text the service associated with a figure, located by its
// own spans and bounding regions.
type Caption struct {
	Content         string           `json:"content"`
	Spans           []Span           `json:"spans,omitempty"`
	BoundingRegions []BoundingRegion `json:"boundingRegions,omitempty"`
}

// BoundingRegion locates part of a figure on one page. Polygon is a flat
// list of x,y vertex pairs in page units: inches for PDF pages, pixels for
// image pages.
type BoundingRegion struct {
	PageNumber int       `json:"pageNumber"`
	Polygon    []float64 `json:"polygon"`
}

// Equal reports whether two regions cover the same area of the same page.
func (r BoundingRegion) Equal(other BoundingRegion) bool {
	if r.PageNumber != other.PageNumber || len(r.Polygon) != len(other.Polygon) {
		return false
	}
	for i, v := range r.Polygon {
		if other.Polygon[i] != v {
			return false
		}
	}
	return true
}

// Span is an offset/length range into AnalyzeResult.Content.
type Span struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// Slice returns the portion of content the span covers, clamped to the
// content bounds. Out-of-range spans yield "".
func (s Span) Slice(content string) string {
	start := s.Offset
	if start < 0 || start >= len(content) {
		return ""
	}
	end := start + s.Length
	if end > len(content) {
		end = len(content)
	}
	if end <= start {
		return ""
	}
	return content[start:end]
}

// analyzeOperation is the polling envelope around a running analysis.
type analyzeOperation struct {
	Status        string         `json:"status"`
	Error         *serviceError  `json:"error,omitempty"`
	AnalyzeResult *AnalyzeResult `json:"analyzeResult,omitempty"`
}

type serviceError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Operation status values reported by the layout service.
const (
	statusNotStarted = "notStarted"
	statusRunning    = "running"
	statusSucceeded  = "succeeded"
	statusFailed     = "failed"
)
