package normalize

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// sourceDayLayout matches "Monday, 05/01/2023"; bare "5/1/2023" is accepted too.
	sourceDayLayout = "Monday, 1/2/2006"
	labiiDayLayout  = "Monday, 2006-01-02"
)

// ParseDay parses a Benchling day separator label.
func ParseDay(text string) (time.Time, error) {
	t, err := time.Parse(sourceDayLayout, strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, &DateError{Text: text, Err: err}
	}
	return t, nil
}

// FormatDay renders a date the way Labii day markers label it.
func FormatDay(t time.Time) string {
	return t.Format(labiiDayLayout)
}

// DayMarker builds <div class="labii-day"><span class="labii-day-label">label</span></div>.
func DayMarker(label string) *html.Node {
	return element(atom.Div, attrs("class", "labii-day"),
		element(atom.Span, attrs("class", "labii-day-label"), textNode(label)),
	)
}

func rewriteDayMarkers(dom *goquery.Document) error {
	var err error
	dom.Find("div.daySeparator").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		date := s.Find("span.daySeparator-date").First()
		if date.Length() == 0 {
			return true
		}
		day, perr := ParseDay(date.Text())
		if perr != nil {
			err = perr
			return false
		}
		s.ReplaceWithNodes(DayMarker(FormatDay(day)))
		return true
	})
	return err
}

func rewriteTextItems(dom *goquery.Document) {
	dom.Find("div.mediocre-item.is-text").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithNodes(element(atom.P, nil, textNode(strings.TrimSpace(s.Text()))))
	})
}

func rewriteCodeItems(dom *goquery.Document) {
	dom.Find("div.mediocre-item.is-code").Each(func(_ int, s *goquery.Selection) {
		code := element(atom.Code, attrs("class", "language-plaintext"), textNode(strings.TrimSpace(s.Text())))
		s.ReplaceWithNodes(element(atom.Pre, attrs("data-language", "Plain text", "spellcheck", "false"), code))
	})
}

// element builds an element node with the given children.
func element(a atom.Atom, attr []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attr}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// attrs pairs up key, value, key, value...
func attrs(kv ...string) []html.Attribute {
	out := make([]html.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}
