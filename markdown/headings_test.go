package markdown

import "testing"

func TestNormalizeHeadings(t *testing.T) {
	tests := []struct {
		name string
		md   string
		want string
	}{
		{
			name: "already top level",
			md:   "# Title\n\nbody\n\n## Section\n",
			want: "# Title\n\nbody\n\n## Section\n",
		},
		{
			name: "uniform shift",
			md:   "### Title\n\nbody\n\n#### Section\n\n##### Sub\n",
			want: "# Title\n\nbody\n\n## Section\n\n### Sub\n",
		},
		{
			name: "no headings",
			md:   "just text\nwith lines\n",
			want: "just text\nwith lines\n",
		},
		{
			name: "empty",
			md:   "",
			want: "",
		},
		{
			name: "code fence not a heading",
			md:   "## Real\n\n```\n# comment inside fence\n```\n",
			want: "# Real\n\n```\n# comment inside fence\n```\n",
		},
		{
			name: "indented heading keeps indentation",
			md:   "   ## Indented\n",
			want: "   # Indented\n",
		},
		{
			name: "hash later in heading text stays",
			md:   "## Issue #42\n",
			want: "# Issue #42\n",
		},
		{
			name: "frontmatter untouched",
			md:   "---\ntitle: \"## not a heading\"\n---\n## Body\n",
			want: "---\ntitle: \"## not a heading\"\n---\n# Body\n",
		},
		{
			name: "setext counts toward shallowest but keeps its form",
			md:   "Title\n=====\n\n### Deep\n",
			want: "Title\n=====\n\n### Deep\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeHeadings(tt.md); got != tt.want {
				t.Errorf("NormalizeHeadings(%q) = %q, want %q", tt.md, got, tt.want)
			}
		})
	}
}

func TestNormalizeHeadingsDeepDocument(t *testing.T) {
	md := "#### A\n\n##### B\n\n###### C\n"
	want := "# A\n\n## B\n\n### C\n"
	if got := NormalizeHeadings(md); got != want {
		t.Errorf("NormalizeHeadings = %q, want %q", got, want)
	}
}

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantHead string
		wantBody string
	}{
		{
			name:     "valid frontmatter",
			content:  "---\ntitle: Report\n---\n# Body\n",
			wantHead: "---\ntitle: Report\n---\n",
			wantBody: "# Body\n",
		},
		{
			name:     "no frontmatter",
			content:  "# Body\n",
			wantHead: "",
			wantBody: "# Body\n",
		},
		{
			name:     "unclosed frontmatter",
			content:  "---\ntitle: Report\n# Body\n",
			wantHead: "",
			wantBody: "---\ntitle: Report\n# Body\n",
		},
		{
			name:     "invalid yaml",
			content:  "---\n\t{not yaml\n---\n# Body\n",
			wantHead: "",
			wantBody: "---\n\t{not yaml\n---\n# Body\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head, body := splitFrontmatter([]byte(tt.content))
			if string(head) != tt.wantHead {
				t.Errorf("head = %q, want %q", head, tt.wantHead)
			}
			if string(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}
