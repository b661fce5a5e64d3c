package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Crawl configuration
	MinBookDuration int
	MaxPages        int
	PageSize        int

	// External services
	GoogleAPIKey        string
	YouTubeSearchAPIURL string
	YouTubeVideosAPIURL string
	BooksAPIURL         string
	BooksAPIKey         string
	OllamaHost          string
	OllamaModel         string

	// Category vocabulary
	Categories     string
	CategoriesFile string

	// HTTP configuration
	Port        string
	UserAgent   string
	HTTPTimeout int

	// Application metadata
	Debug   bool
	Version string
}

// Category is a single vocabulary entry with its display sort order.
type Category struct {
	Name string `yaml:"name"`
	Sort int    `yaml:"sort"`
}
