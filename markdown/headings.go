package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// headingMark locates one heading in the document body. hashStart is the
// byte offset of the leading '#' run for ATX headings and -1 for setext
// headings, which are never rewritten.
type headingMark struct {
	level     int
	hashStart int
}

// NormalizeHeadings shifts every heading up by a uniform amount so the
// shallowest heading in the document becomes a top-level one, preserving
// relative depth. Setext headings count toward the shallowest level but
// keep their underline form; only ATX hash runs are rewritten. YAML
// frontmatter passes through untouched, and a document whose shallowest
// heading is already level one comes back unchanged.
func NormalizeHeadings(md string) string {
	head, body := splitFrontmatter([]byte(md))

	marks := collectHeadings(body)
	if len(marks) == 0 {
		return md
	}

	minLevel := marks[0].level
	for _, m := range marks[1:] {
		if m.level < minLevel {
			minLevel = m.level
		}
	}
	shift := minLevel - 1
	if shift == 0 {
		return md
	}

	var out bytes.Buffer
	out.Grow(len(md))
	out.Write(head)
	last := 0
	for _, m := range marks {
		if m.hashStart < 0 {
			continue
		}
		out.Write(body[last:m.hashStart])
		out.WriteString(strings.Repeat("#", m.level-shift))
		last = m.hashStart + m.level
	}
	out.Write(body[last:])
	return out.String()
}

// collectHeadings parses the markdown body and returns its headings in
// document order. Hash runs inside code fences or blockquotes are not
// headings and never appear here.
func collectHeadings(body []byte) []headingMark {
	doc := goldmark.New().Parser().Parse(text.NewReader(body))

	var marks []headingMark
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if heading.Lines().Len() == 0 {
			return ast.WalkSkipChildren, nil
		}

		textStart := heading.Lines().At(0).Start
		lineStart := bytes.LastIndexByte(body[:textStart], '\n') + 1
		hashStart, run := leadingHashRun(body[lineStart:])
		mark := headingMark{level: heading.Level, hashStart: -1}
		if run == heading.Level {
			mark.hashStart = lineStart + hashStart
		}
		marks = append(marks, mark)
		return ast.WalkSkipChildren, nil
	})
	return marks
}

// leadingHashRun reports where a line's ATX hash run starts, after up to
// three spaces of indentation, and how long it is.
func leadingHashRun(line []byte) (start, length int) {
	for start < len(line) && start < 3 && line[start] == ' ' {
		start++
	}
	for start+length < len(line) && line[start+length] == '#' {
		length++
	}
	return start, length
}

// splitFrontmatter splits a leading YAML frontmatter block, delimiters
// included, from the markdown body. Content without a valid frontmatter
// block comes back whole with a nil head.
func splitFrontmatter(content []byte) (head, body []byte) {
	var prefixLen int
	switch {
	case bytes.HasPrefix(content, []byte("---\n")):
		prefixLen = 4
	case bytes.HasPrefix(content, []byte("---\r\n")):
		prefixLen = 5
	default:
		return nil, content
	}

	remaining := content[prefixLen:]
	endIdx := bytes.Index(remaining, []byte("\n---\n"))
	closerLen := 5
	if endIdx == -1 {
		if endIdx = bytes.Index(remaining, []byte("\n---\r\n")); endIdx == -1 {
			return nil, content
		}
		closerLen = 6
	}

	var frontmatter map[string]any
	if err := yaml.Unmarshal(remaining[:endIdx], &frontmatter); err != nil {
		return nil, content
	}

	split := prefixLen + endIdx + closerLen
	return content[:split], content[split:]
}
