// internal/services/scraper_service.go
package services

import (
	"context"
	"fmt"

	"github.com/ps-vitor/zillow-scraper/backend/internal/domain"
	"github.com/ps-vitor/zillow-scraper/backend/pkg/logger"
)

// ScraperService fetches one search results page and extracts its listings.
type ScraperService struct {
	fetcher   domain.PageFetcher
	extractor domain.ListingExtractor
	log       logger.Logger
}

func NewScraperService(fetcher domain.PageFetcher, extractor domain.ListingExtractor, log logger.Logger) *ScraperService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ScraperService{fetcher: fetcher, extractor: extractor, log: log}
}

// Scrape returns every listing on the page at url, or an error and no listings.
func (s *ScraperService) Scrape(ctx context.Context, url string) ([]domain.Property, error) {
	html, err := s.fetcher.FetchPage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	properties, err := s.extractor.Extract(html)
	if err != nil {
		return nil, fmt.Errorf("extract listings: %w", err)
	}

	s.log.Info("listings extracted", logger.String("url", url), logger.Int("count", len(properties)))

	return properties, nil
}
