package fetch

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractText parses HTML and returns the page title and the visible text
// with non-content markup (script, style, nav, footer, header) removed.
// Whitespace is collapsed to single spaces.
func ExtractText(html []byte) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", "", err
	}

	doc.Find("script, style, nav, footer, header").Remove()

	title = strings.TrimSpace(doc.Find("title").First().Text())

	body := doc.Find("body")
	if body.Length() > 0 {
		text = body.Text()
	} else {
		text = doc.Text()
	}
	return title, strings.Join(strings.Fields(text), " "), nil
}

// ExtractLinks returns the absolute form of every anchor href in the page,
// resolved against baseURL. Non-HTTP(S) links are dropped.
func ExtractLinks(html []byte, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" || strings.HasPrefix(href, "#") {
			return
		}
		abs := resolveURL(baseURL, href)
		if abs == "" {
			return
		}
		links = append(links, abs)
	})
	return links, nil
}

// resolveURL resolves href against base and keeps only http(s) results.
func resolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	h, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := b.ResolveReference(h)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}
