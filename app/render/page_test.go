package render

import (
	"html/template"
	"testing"

	"github.com/Semior001/xdigest/app/digest"
	"github.com/stretchr/testify/assert"
)

func TestBuildPage_Defaults(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Page
	}{
		{
			name: "empty document",
			in:   `{}`,
			want: Page{
				Lang:         "en",
				PageTitle:    "X Feed Digest",
				HeaderTitle:  "X Feed Digest",
				SummaryTitle: "High Signal Summary",
				Summary:      []template.HTML{},
			},
		},
		{
			name: "overrides",
			in: `{"title": "T", "date": "D", "page_title": "Tab", "header_title": "Header",
				"lang": "en-US<script>", "summary_title": "tl;dr", "summary": "just one"}`,
			want: Page{
				Lang:         "en-USscript",
				PageTitle:    "Tab",
				HeaderTitle:  "Header",
				Date:         "D",
				SummaryTitle: "tl;dr",
				Summary:      []template.HTML{"just one"},
			},
		},
		{
			name: "empty page title falls back, lang sanitized to nothing",
			in:   `{"title": "T", "date": "D", "page_title": "", "lang": "!!!"}`,
			want: Page{
				Lang:         "en",
				PageTitle:    "T — D",
				HeaderTitle:  "T",
				Date:         "D",
				SummaryTitle: "High Signal Summary",
				Summary:      []template.HTML{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildPage(decode(t, tt.in)))
		})
	}
}

func TestBuildItem(t *testing.T) {
	tests := []struct {
		name string
		in   digest.Item
		want Item
	}{
		{
			name: "derived link with custom label",
			in: digest.Item{
				Tag:       digest.NewText("hot take!"),
				Title:     digest.NewText("t"),
				Body:      digest.NewText(`"quoted" & 'single'`),
				URL:       digest.NewText("https://x.com/1"),
				LinkLabel: digest.NewText("Open"),
			},
			want: Item{
				Tag:      "hottake",
				TagLabel: "Hottake",
				Title:    "t",
				Body:     "&#34;quoted&#34; &amp; &#39;single&#39;",
				Links:    []Link{{Label: "Open", URL: "https://x.com/1"}},
			},
		},
		{
			name: "explicit links win over url",
			in: digest.Item{
				URL:   digest.NewText("https://x.com/1"),
				Links: digest.List[digest.Link]{{Label: digest.NewText("A"), URL: digest.NewText("https://a")}},
			},
			want: Item{
				Body:  "",
				Links: []Link{{Label: "A", URL: "https://a"}},
			},
		},
		{
			name: "label without tag is dropped, empty raw body is kept",
			in: digest.Item{
				TagLabel: digest.NewText("Label"),
				Body:     digest.NewText("ignored"),
				BodyHTML: digest.NewText(""),
			},
			want: Item{Links: []Link{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildItem(tt.in))
		})
	}
}
