// backend/internal/scrapers/zillow/extractor.go
package zillow

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ps-vitor/zillow-scraper/backend/internal/domain"
)

// DefaultBaseURL is what relative detail links are resolved against.
const DefaultBaseURL = "https://www.zillow.com"

// searchPageStorePattern matches the script that carries the search results payload.
// It is a plain pattern over the markup: the page format is not ours, so the marker is matched verbatim.
var searchPageStorePattern = regexp.MustCompile(`(?is)<script[^>]*data-zrr-shared-data-key="searchPageStore"[^>]*>(.*?)</script>`)

// Extractor pulls listings out of a search results page.
type Extractor struct {
	baseURL *url.URL
}

// NewExtractor creates an Extractor resolving detail links against baseURL.
// An empty baseURL means DefaultBaseURL.
func NewExtractor(baseURL string) (*Extractor, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("base url %q is not absolute", baseURL)
	}

	return &Extractor{baseURL: u}, nil
}

// Extract returns the listings embedded in html, in page order.
// A payload without results yields an empty slice and no error.
func (e *Extractor) Extract(html string) ([]domain.Property, error) {
	match := searchPageStorePattern.FindStringSubmatch(html)
	if match == nil || match[1] == "" {
		return nil, &PayloadNotFoundError{PageTitle: pageTitle(html)}
	}

	// A blank or comment-only body sanitizes to "" and fails to decode below.
	payload := sanitizePayload(match[1])

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after payload", ErrMalformedPayload)
	}

	raw := listResults(parsed)
	properties := make([]domain.Property, 0, len(raw))
	for i, item := range raw {
		// null and other non-object entries become all-placeholder listings.
		entry, _ := item.(map[string]any)

		prop, err := e.normalize(rawListing(entry))
		if err != nil {
			return nil, fmt.Errorf("listing %d: %w", i, err)
		}
		properties = append(properties, prop)
	}

	return properties, nil
}

// sanitizePayload strips the HTML comment some pages wrap the JSON in.
func sanitizePayload(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "<!--")
	cleaned = strings.TrimSuffix(cleaned, "-->")
	return strings.TrimSpace(cleaned)
}

// listResults returns the first non-empty results array, or nil.
func listResults(parsed any) []any {
	paths := [][]string{
		{"cat1", "searchResults", "listResults"},
		{"cat1", "searchList", "results"},
	}

	for _, path := range paths {
		if list, ok := lookup(parsed, path...).([]any); ok && len(list) > 0 {
			return list
		}
	}

	return nil
}

func pageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

var _ domain.ListingExtractor = (*Extractor)(nil)
