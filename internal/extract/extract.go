package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/amishk599/vacancywatch/internal/model"
)

const (
	DefaultContainerSelector = "div.vacancy-item"
	DefaultMarker            = "/vacancy/"
)

// Ensure Extractor implements model.VacancyExtractor.
var _ model.VacancyExtractor = (*Extractor)(nil)

// Extractor finds vacancy containers on a page and reads an identifier from
// the first link inside each one.
type Extractor struct {
	container cascadia.Selector
	link      cascadia.Selector
	marker    string
}

// New compiles the container selector. Empty arguments fall back to the
// defaults.
func New(containerSelector, marker string) (*Extractor, error) {
	if containerSelector == "" {
		containerSelector = DefaultContainerSelector
	}
	if marker == "" {
		marker = DefaultMarker
	}
	container, err := cascadia.Compile(containerSelector)
	if err != nil {
		return nil, fmt.Errorf("compile container selector %q: %w", containerSelector, err)
	}
	return &Extractor{
		container: container,
		link:      cascadia.MustCompile("a[href]"),
		marker:    marker,
	}, nil
}

// Extract returns identifiers in document order. Containers without a usable
// link are counted in Skipped rather than failing the whole page; a page with
// no containers yields an empty Extraction.
func (e *Extractor) Extract(content string) (model.Extraction, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return model.Extraction{}, &model.ParseError{Err: err}
	}
	doc := goquery.NewDocumentFromNode(root)

	var out model.Extraction
	doc.FindMatcher(e.container).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.FindMatcher(e.link).First().Attr("href")
		if !ok {
			out.Skipped++
			return
		}
		id, ok := e.identifier(href)
		if !ok {
			out.Skipped++
			return
		}
		out.IDs = append(out.IDs, id)
	})
	return out, nil
}

// identifier returns the part of href after the last marker, with
// surrounding slashes removed.
func (e *Extractor) identifier(href string) (string, bool) {
	i := strings.LastIndex(href, e.marker)
	if i < 0 {
		return "", false
	}
	id := strings.Trim(href[i+len(e.marker):], "/")
	return id, id != ""
}
