// Package digest contains the digest document model and its lenient JSON decoding.
package digest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	// DefaultTitle is used when the document has no title at all.
	DefaultTitle = "X Feed Digest"
	// DefaultSummaryTitle is the heading of the summary box.
	DefaultSummaryTitle = "High Signal Summary"
	// DefaultLinkLabel labels links that don't specify one.
	DefaultLinkLabel = "View Tweet"
	// DefaultLang is the page language when none or an invalid one is set.
	DefaultLang = "en"
)

// ErrNotObject is returned when the root of the document is not a JSON object.
var ErrNotObject = errors.New("json root must be an object")

// Digest is one rendered page's worth of grouped content.
type Digest struct {
	Title        Text              `json:"title"`
	Date         Text              `json:"date"`
	PageTitle    Text              `json:"page_title"`
	HeaderTitle  Text              `json:"header_title"`
	Lang         Text              `json:"lang"`
	SummaryTitle Text              `json:"summary_title"`
	Summary      List[SummaryLine] `json:"summary"`
	Sections     List[Section]     `json:"sections"`
}

// SummaryLine is a single line of the summary box, either plain text or raw HTML.
type SummaryLine struct {
	Text string
	HTML bool
}

// Section is a named, emoji-tagged group of items.
type Section struct {
	Emoji Text       `json:"emoji"`
	Title Text       `json:"title"`
	Items List[Item] `json:"items"`
}

// Item is a single post-like entry.
type Item struct {
	Tag       Text       `json:"tag"`
	TagLabel  Text       `json:"tag_label"`
	Title     Text       `json:"title"`
	Body      Text       `json:"body"`
	BodyHTML  Text       `json:"body_html"`
	URL       Text       `json:"url"`
	LinkLabel Text       `json:"link_label"`
	Links     List[Link] `json:"links"`
}

// Link is a labeled reference attached to an item.
type Link struct {
	Label Text `json:"label"`
	URL   Text `json:"url"`
}

// Decode reads the whole reader and decodes a digest from it.
// Fields are looked up on a best-effort basis, the only hard requirements are
// well-formed JSON and an object at the root.
func Decode(rd io.Reader) (Digest, error) {
	bts, err := io.ReadAll(rd)
	if err != nil {
		return Digest{}, fmt.Errorf("read document: %w", err)
	}

	var raw json.RawMessage
	if err = json.Unmarshal(bts, &raw); err != nil {
		return Digest{}, fmt.Errorf("parse json: %w", err)
	}

	if raw = bytes.TrimSpace(raw); raw[0] != '{' {
		return Digest{}, ErrNotObject
	}

	var d Digest
	if err = json.Unmarshal(raw, &d); err != nil {
		return Digest{}, fmt.Errorf("decode digest: %w", err)
	}

	return d, nil
}

// UnmarshalJSON accepts a string, an object with "html" or "text" keys,
// or any other scalar, which is taken as plain text.
func (l *SummaryLine) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return errSkip
	}

	switch b[0] {
	case 'n', '[':
		return errSkip
	case '{':
		var obj map[string]Text
		if err := json.Unmarshal(b, &obj); err != nil {
			return fmt.Errorf("unmarshal summary line: %w", err)
		}
		if h, ok := obj["html"]; ok {
			*l = SummaryLine{Text: h.Value, HTML: true}
			return nil
		}
		*l = SummaryLine{Text: obj["text"].Value}
		return nil
	default:
		var t Text
		if err := t.UnmarshalJSON(b); err != nil {
			return err
		}
		*l = SummaryLine{Text: t.Value}
		return nil
	}
}
