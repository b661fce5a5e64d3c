package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fedotkin/audiodex/app/api"
	"github.com/fedotkin/audiodex/app/books"
	"github.com/fedotkin/audiodex/app/cfg"
	"github.com/fedotkin/audiodex/app/crawler"
	"github.com/fedotkin/audiodex/app/database"
	"github.com/fedotkin/audiodex/app/llm"
	"github.com/fedotkin/audiodex/app/sweep"
)

const commandUsage = "Commands: run-crawl-unfiltered, run-crawl-by-author, run-crawl-by-category, deduplicate, prune-unavailable, serve"

func main() {
	config, args, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if config == nil {
		// Help was shown, exit gracefully
		return
	}

	if config.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: audiodex [OPTIONS] COMMAND")
		fmt.Fprintln(os.Stderr, commandUsage)
		os.Exit(1)
	}

	db, err := database.NewConnection(config.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", config.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	schemaVersion, _, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", config.DBPath, "schema_version", schemaVersion)

	bookRepo := database.NewBookRepository(db)

	vocabulary, err := config.Vocabulary()
	if err != nil {
		slog.Error("Failed to load category vocabulary", "error", err)
		os.Exit(1)
	}
	if len(vocabulary) > 0 {
		categories := make([]database.Category, 0, len(vocabulary))
		for _, category := range vocabulary {
			categories = append(categories, database.Category{Name: category.Name, SortOrder: category.Sort})
		}
		if err := bookRepo.SyncCategories(categories); err != nil {
			slog.Error("Failed to sync category vocabulary", "error", err)
			os.Exit(1)
		}
	}

	vocabularyNames := make([]string, 0, len(vocabulary))
	for _, category := range vocabulary {
		vocabularyNames = append(vocabularyNames, category.Name)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command := args[0]; command {
	case "run-crawl-unfiltered":
		runner := newRunner(config, db, bookRepo, vocabularyNames)
		stats, err := runner.Run(ctx, "audiobook")
		reportCrawl(stats, err)
	case "run-crawl-by-author":
		authors, err := bookRepo.ListAuthors()
		if err != nil {
			slog.Error("Failed to list authors", "error", err)
			os.Exit(1)
		}
		names := make([]string, 0, len(authors))
		for _, author := range authors {
			names = append(names, author.Name)
		}
		runner := newRunner(config, db, bookRepo, vocabularyNames)
		stats, err := runner.RunMany(ctx, names)
		reportCrawl(stats, err)
	case "run-crawl-by-category":
		runner := newRunner(config, db, bookRepo, vocabularyNames)
		stats, err := runner.RunMany(ctx, vocabularyNames)
		reportCrawl(stats, err)
	case "deduplicate":
		result, err := sweep.Deduplicate(database.NewMaintenanceRepository(db))
		if err != nil {
			slog.Error("Deduplication failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Deduplication complete", "groups", result.Groups, "removed", result.Removed, "errored", result.Errored)
	case "prune-unavailable":
		pruner := sweep.NewPruner(database.NewMaintenanceRepository(db), config.UserAgent, httpTimeout(config))
		result, err := pruner.Run(ctx)
		if err != nil {
			slog.Error("Prune failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Prune complete", "checked", result.Checked, "removed", result.Removed, "errored", result.Errored)
	case "serve":
		serve(ctx, config, bookRepo)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n%s\n", command, commandUsage)
		os.Exit(1)
	}
}

func httpTimeout(config *cfg.Cfg) time.Duration {
	return time.Duration(config.HTTPTimeout) * time.Second
}

func newRunner(config *cfg.Cfg, db *database.DB, bookRepo database.BookRepository, vocabulary []string) *crawler.Runner {
	timeout := httpTimeout(config)

	source := crawler.NewYouTubeSource(
		config.YouTubeSearchAPIURL, config.YouTubeVideosAPIURL,
		config.GoogleAPIKey, config.PageSize, timeout)
	resolver := books.NewClient(config.BooksAPIURL, config.BooksAPIKey, timeout)
	classifier := llm.NewClient(config.OllamaHost, config.OllamaModel, timeout)

	pipeline := crawler.NewPipeline(bookRepo, resolver, classifier, vocabulary, config.MinBookDuration)

	return crawler.NewRunner(source, pipeline, database.NewCursorRepository(db), config.MaxPages)
}

func reportCrawl(stats crawler.Stats, err error) {
	slog.Info("Crawl summary",
		"pages", stats.Pages,
		"stored", stats.Stored,
		"skipped", stats.Skipped,
		"existing", stats.Exists,
		"errored", stats.Errored)

	if err != nil {
		slog.Error("Crawl halted", "error", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, config *cfg.Cfg, repo database.ReadRepository) {
	handler := api.NewHandler(repo)
	server := api.NewServer(handler, config.Version)

	httpServer := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", config.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
		return
	}
	slog.Info("HTTP server stopped")
}
