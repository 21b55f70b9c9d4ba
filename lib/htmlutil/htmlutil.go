package htmlutil

import (
	"context"
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("certcomp.lib.htmlutil")

// OwnText returns the first text node that is a direct child of the first
// element in `sel`, trimmed. The second return value is false when there is no
// such text node, which lets callers tell an absent field apart from an empty one.
func OwnText(sel *goquery.Selection) (string, bool) {
	if sel.Length() == 0 {
		return "", false
	}
	for child := sel.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			return strings.TrimSpace(child.Data), true
		}
	}
	return "", false
}

// OwnTextPtr is OwnText but returns nil for an absent text node.
func OwnTextPtr(sel *goquery.Selection) *string {
	text, ok := OwnText(sel)
	if !ok {
		return nil
	}
	return &text
}

// Href returns the href attribute of the first element in `sel`.
func Href(sel *goquery.Selection) (string, bool) {
	return sel.First().Attr("href")
}

// Anchor is a link found in a page, Name is its cleaned up text.
type Anchor struct {
	Name string
	Href string
}

// CleanText drops non-printable runes and collapses every run of whitespace
// into a single space.
func CleanText(s string) string {
	printable := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(printable), " ")
}

// GetAnchors returns every element of `sel` with a parsable href. Relative
// links are resolved against `base` when it is not nil.
func GetAnchors(ctx context.Context, base *url.URL, sel *goquery.Selection) []Anchor {
	_, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	sel.Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		link, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "unparsable href")
			return
		}
		if base != nil {
			link = base.ResolveReference(link)
		}

		anchor := Anchor{Name: CleanText(a.Text()), Href: link.String()}
		anchors = append(anchors, anchor)
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", anchor.Name),
			attribute.String("url", anchor.Href),
		))
	})
	return anchors
}
