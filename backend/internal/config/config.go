package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultPath is where the YAML configuration is looked up when CONFIG_PATH is unset.
const DefaultPath = "configs/app.yaml"

const (
	defaultBaseURL        = "https://www.zillow.com"
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultAcceptLanguage = "en-US,en;q=0.9,es;q=0.8"
	defaultMaxRedirects   = 5
	defaultRequestTimeout = 30 * time.Second
	defaultLogLevel       = "warn"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Scraping ScrapingConfig `yaml:"scraping"`
}

type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
}

type ScrapingConfig struct {
	Zillow ZillowConfig `yaml:"zillow"`
}

type ZillowConfig struct {
	BaseURL        string            `yaml:"base_url"`
	UserAgent      string            `yaml:"user_agent"`
	AcceptLanguage string            `yaml:"accept_language"`
	Headers        map[string]string `yaml:"headers"`
	MaxRedirects   int               `yaml:"max_redirects"`
	RequestTimeout time.Duration     `yaml:"request_timeout"`
}

// Default returns the configuration used when no file or environment overrides exist.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:     "zillow-scraper",
			Env:      "development",
			LogLevel: defaultLogLevel,
		},
		Scraping: ScrapingConfig{
			Zillow: ZillowConfig{
				BaseURL:        defaultBaseURL,
				UserAgent:      defaultUserAgent,
				AcceptLanguage: defaultAcceptLanguage,
				MaxRedirects:   defaultMaxRedirects,
				RequestTimeout: defaultRequestTimeout,
			},
		},
	}
}

// Load builds the configuration from defaults, the YAML file at CONFIG_PATH (or DefaultPath),
// a .env file and finally the process environment. Missing files are skipped.
func Load() (*Config, error) {
	// Carrega .env se existir
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}

	return LoadFile(path)
}

// LoadFile is Load without the .env step, reading the YAML file at path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	yamlFile, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("ZILLOW_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}

	z := &c.Scraping.Zillow
	if v := os.Getenv("ZILLOW_BASE_URL"); v != "" {
		z.BaseURL = v
	}
	if v := os.Getenv("ZILLOW_USER_AGENT"); v != "" {
		z.UserAgent = v
	}
	if v := os.Getenv("ZILLOW_MAX_REDIRECTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ZILLOW_MAX_REDIRECTS: %w", err)
		}
		z.MaxRedirects = n
	}
	if v := os.Getenv("ZILLOW_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ZILLOW_REQUEST_TIMEOUT: %w", err)
		}
		z.RequestTimeout = d
	}

	return nil
}

// Validate reports the first invalid setting.
// The log level is not checked: logger.New falls back to warn for names it does not know.
func (c *Config) Validate() error {
	z := c.Scraping.Zillow
	if z.MaxRedirects < 0 {
		return fmt.Errorf("scraping.zillow.max_redirects must not be negative, got %d", z.MaxRedirects)
	}
	if z.RequestTimeout <= 0 {
		return fmt.Errorf("scraping.zillow.request_timeout must be positive, got %s", z.RequestTimeout)
	}

	u, err := url.Parse(z.BaseURL)
	if err != nil {
		return fmt.Errorf("scraping.zillow.base_url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("scraping.zillow.base_url must be an absolute URL, got %q", z.BaseURL)
	}

	return nil
}
