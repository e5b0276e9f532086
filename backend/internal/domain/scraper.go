// backend/internal/domain/scraper.go
package domain

import "context"

// PageFetcher downloads a page and returns its body as text.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// ListingExtractor turns a search results page into listings.
type ListingExtractor interface {
	Extract(html string) ([]Property, error)
}
