// Package markdown post-processes analyzer-produced markdown, splicing
// figure descriptions into their figure blocks and normalizing heading
// depth.
package markdown

import (
	"fmt"
	"strings"
)

// PatchFigureDescription replaces the span between a figure's image
// placeholder and its closing </figure> tag with an HTML comment carrying
// the description. The placeholder and the closing tag both survive the
// splice. Markdown without the placeholder, or without a closing tag
// after it, comes back unchanged.
func PatchFigureDescription(md, description string, figureIndex int) string {
	marker := fmt.Sprintf("![](figures/%d)", figureIndex)

	start := strings.Index(md, marker)
	if start == -1 {
		return md
	}
	start += len(marker)

	end := strings.Index(md[start:], "</figure>")
	if end == -1 {
		return md
	}
	end += start

	return md[:start] + `<!-- FigureContent="` + description + `" -->` + md[end:]
}
