package render

import (
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/Semior001/xdigest/app/digest"
	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Page is the view of a digest passed to the template.
// Every string field is plain text and is escaped by the template,
// template.HTML fields are already safe to embed.
type Page struct {
	Lang         string
	PageTitle    string
	HeaderTitle  string
	Date         string
	SummaryTitle string
	Summary      []template.HTML
	Sections     []Section
}

// Section is a view of a digest section with at least one item.
type Section struct {
	Emoji string
	Title string
	Items []Item
}

// Item is a view of a single digest item.
type Item struct {
	Tag      string // css class, empty if the item has no tag
	TagLabel string
	Title    string
	Body     template.HTML
	Links    []Link
}

// Link is a view of an item link with a non-empty URL.
type Link struct {
	Label string
	URL   string
}

// ItemCount returns the number of items across all sections of the page.
func (p Page) ItemCount() int {
	n := 0
	for _, s := range p.Sections {
		n += len(s.Items)
	}
	return n
}

var (
	classUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	langUnsafe  = regexp.MustCompile(`[^a-zA-Z0-9-]`)
)

// BuildPage maps the digest onto its page view, resolving defaults
// and dropping sections without items.
func BuildPage(d digest.Digest) Page {
	title := d.Title.Or(digest.DefaultTitle)
	date := d.Date.Value

	pageTitle := title
	if date != "" {
		pageTitle = title + " — " + date
	}

	p := Page{
		Lang:         langUnsafe.ReplaceAllString(d.Lang.Or(digest.DefaultLang), ""),
		PageTitle:    d.PageTitle.OrIfEmpty(pageTitle),
		HeaderTitle:  d.HeaderTitle.Or(title),
		Date:         date,
		SummaryTitle: d.SummaryTitle.Or(digest.DefaultSummaryTitle),
	}

	if p.Lang == "" {
		p.Lang = digest.DefaultLang
	}

	p.Summary = lo.Map(d.Summary, func(l digest.SummaryLine, _ int) template.HTML {
		return fragment(l.Text, l.HTML)
	})

	for _, s := range d.Sections {
		if len(s.Items) == 0 {
			continue
		}

		p.Sections = append(p.Sections, Section{
			Emoji: s.Emoji.Value,
			Title: s.Title.Value,
			Items: lo.Map(s.Items, func(it digest.Item, _ int) Item { return buildItem(it) }),
		})
	}

	return p
}

func buildItem(it digest.Item) Item {
	res := Item{
		Title: it.Title.Value,
		Body:  fragment(it.Body.Value, false),
	}

	if it.BodyHTML.Set {
		res.Body = fragment(it.BodyHTML.Value, true)
	}

	if res.Tag = classUnsafe.ReplaceAllString(strings.ToLower(it.Tag.Value), ""); res.Tag != "" {
		res.TagLabel = it.TagLabel.OrIfEmpty(cases.Title(language.Und).String(res.Tag))
	}

	links := []digest.Link(it.Links)
	if len(links) == 0 && it.URL.Value != "" {
		links = []digest.Link{{
			Label: digest.NewText(it.LinkLabel.Or(digest.DefaultLinkLabel)),
			URL:   it.URL,
		}}
	}

	links = lo.Filter(links, func(l digest.Link, _ int) bool { return l.URL.Value != "" })
	res.Links = lo.Map(links, func(l digest.Link, _ int) Link {
		return Link{Label: l.Label.Or(digest.DefaultLinkLabel), URL: l.URL.Value}
	})

	return res
}

// fragment returns the raw string as is and escapes plain text.
func fragment(s string, raw bool) template.HTML {
	if raw {
		return template.HTML(s)
	}
	return template.HTML(html.EscapeString(s))
}
