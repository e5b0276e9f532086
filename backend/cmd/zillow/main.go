// ./backend/cmd/zillow/main.go

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ps-vitor/zillow-scraper/backend/internal/config"
	"github.com/ps-vitor/zillow-scraper/backend/internal/presenter"
	"github.com/ps-vitor/zillow-scraper/backend/internal/scrapers/zillow"
	"github.com/ps-vitor/zillow-scraper/backend/internal/services"
	"github.com/ps-vitor/zillow-scraper/backend/pkg/logger"
)

const usage = "Uso: zillow <url_zillow>"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "" {
		fmt.Fprintln(stderr, usage)
		return 1
	}
	target := args[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error al cargar la configuración: %v\n", err)
		return 1
	}

	log, err := logger.New(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Error al crear el logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = log.Sync()
	}()

	svc, err := newScraperService(cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "Error al obtener la información: %v\n", err)
		return 1
	}

	properties, err := svc.Scrape(ctx, target)
	if err != nil {
		log.Error("scrape failed", logger.String("url", target), logger.Error(err))
		fmt.Fprintf(stderr, "Error al obtener la información: %v\n", err)
		return 1
	}

	if len(properties) == 0 {
		fmt.Fprintln(stdout, presenter.NoResultsMessage)
		return 0
	}

	if err := presenter.Print(stdout, properties); err != nil {
		fmt.Fprintf(stderr, "Error al imprimir los resultados: %v\n", err)
		return 1
	}

	return 0
}

func newScraperService(cfg *config.Config, log logger.Logger) (*services.ScraperService, error) {
	z := cfg.Scraping.Zillow

	headers := zillow.DefaultHeaders()
	if z.UserAgent != "" {
		headers.Set("User-Agent", z.UserAgent)
	}
	if z.AcceptLanguage != "" {
		headers.Set("Accept-Language", z.AcceptLanguage)
	}
	for k, v := range z.Headers {
		headers.Set(k, v)
	}

	fetcher := zillow.NewFetcher(zillow.FetcherConfig{
		DefaultHeaders: headers,
		Timeout:        z.RequestTimeout,
		MaxRedirects:   z.MaxRedirects,
	}, log.With(logger.String("component", "fetcher")))

	extractor, err := zillow.NewExtractor(z.BaseURL)
	if err != nil {
		return nil, err
	}

	return services.NewScraperService(fetcher, extractor, log), nil
}
