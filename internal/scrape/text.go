package scrape

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

// TextScraper fetches a page and keeps only its visible text
type TextScraper struct {
	html *HTMLScraper
}

// NewTextScraper creates a TextScraper on top of an HTMLScraper
func NewTextScraper(h *HTMLScraper) *TextScraper {
	return &TextScraper{html: h}
}

// Name returns the strategy name
func (s *TextScraper) Name() string {
	return StrategyText
}

// Scrape fetches the page and strips markup
func (s *TextScraper) Scrape(ctx context.Context, rawURL string) (*Result, error) {
	p, err := s.html.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	text, err := VisibleText(string(p.body))
	if err != nil {
		return nil, eris.Wrapf(err, "parse %s", rawURL)
	}

	res := s.html.result(rawURL, p, text)
	res.Strategy = StrategyText
	return res, nil
}

// VisibleText returns the text nodes of an HTML document joined by single spaces.
// Script, style and other non-rendered elements are skipped.
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", eris.Wrap(err, "parse HTML")
	}

	var words []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template":
				return
			}
		}

		if n.Type == html.TextNode {
			words = append(words, strings.Fields(n.Data)...)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return strings.Join(words, " "), nil
}
