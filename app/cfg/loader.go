package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./audiodex.db" description:"Path to the SQLite catalog database"`

	// Crawl configuration
	MinBookDuration int `long:"min-book-duration" env:"MIN_BOOK_DURATION" default:"0" description:"Minimum acceptable duration in seconds; shorter candidates are skipped"`
	MaxPages        int `long:"max-pages" env:"MAX_PAGES" default:"200" description:"Maximum number of search result pages per crawl run"`
	PageSize        int `long:"page-size" env:"PAGE_SIZE" default:"50" description:"Number of results requested per search page"`

	// External services
	GoogleAPIKey        string `long:"google-api-key" env:"GOOGLE_API_KEY" description:"API key for the YouTube Data API"`
	YouTubeSearchAPIURL string `long:"youtube-search-api-url" env:"YOUTUBE_SEARCH_API_URL" default:"https://www.googleapis.com/youtube/v3/search" description:"YouTube search endpoint"`
	YouTubeVideosAPIURL string `long:"youtube-videos-api-url" env:"YOUTUBE_VIDEO_API_URL" default:"https://www.googleapis.com/youtube/v3/videos" description:"YouTube video details endpoint"`
	BooksAPIURL         string `long:"books-api-url" env:"BOOKS_API_URL" default:"https://www.googleapis.com/books/v1/volumes" description:"Google Books volumes endpoint"`
	BooksAPIKey         string `long:"books-api-key" env:"GOOGLE_BOOKS_API_KEY" description:"API key for the Google Books API"`
	OllamaHost          string `long:"ollama-host" env:"OLLAMA_HOST" default:"http://localhost:11434" description:"Base URL of the Ollama inference service"`
	OllamaModel         string `long:"ollama-model" env:"OLLAMA_MODEL" default:"qwen2.5:latest" description:"Model name used for classification calls"`

	// Category vocabulary
	Categories     string `long:"categories" env:"BOOK_CATEGORIES" description:"Comma-separated category vocabulary (overrides the categories file)"`
	CategoriesFile string `long:"categories-file" env:"CATEGORIES_FILE" default:"./categories.yml" description:"YAML file with the category vocabulary and sort order"`

	// HTTP configuration
	Port        string `long:"port" env:"PORT" default:"8080" description:"HTTP server port for the serve command"`
	UserAgent   string `long:"user-agent" env:"USER_AGENT" default:"audiodex/1.0" description:"User agent string for HTTP requests"`
	HTTPTimeout int    `long:"http-timeout" env:"HTTP_TIMEOUT" default:"15" description:"Timeout in seconds for external HTTP calls"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load parses configuration from environment variables and command-line
// flags. It returns the leftover positional arguments (the command name).
// A nil Cfg with a nil error means help was requested.
func Load() (*Cfg, []string, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)
	parser.Usage = "[OPTIONS] COMMAND"

	args, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil, nil
			}
		}
		return nil, nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:              raw.DBPath,
		MinBookDuration:     raw.MinBookDuration,
		MaxPages:            raw.MaxPages,
		PageSize:            raw.PageSize,
		GoogleAPIKey:        raw.GoogleAPIKey,
		YouTubeSearchAPIURL: raw.YouTubeSearchAPIURL,
		YouTubeVideosAPIURL: raw.YouTubeVideosAPIURL,
		BooksAPIURL:         raw.BooksAPIURL,
		BooksAPIKey:         raw.BooksAPIKey,
		OllamaHost:          raw.OllamaHost,
		OllamaModel:         raw.OllamaModel,
		Categories:          raw.Categories,
		CategoriesFile:      raw.CategoriesFile,
		Port:                raw.Port,
		UserAgent:           raw.UserAgent,
		HTTPTimeout:         raw.HTTPTimeout,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	globalCfg = cfg

	return cfg, args, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
