package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
)

// Stats is the running summary of one crawl invocation.
type Stats struct {
	Pages   int
	Stored  int
	Skipped int
	Exists  int
	Errored int
}

func (s *Stats) add(o Stats) {
	s.Pages += o.Pages
	s.Stored += o.Stored
	s.Skipped += o.Skipped
	s.Exists += o.Exists
	s.Errored += o.Errored
}

type processor interface {
	Process(ctx context.Context, c Candidate) (Outcome, error)
}

type cursorStore interface {
	Get(key string) (string, error)
	Set(key, token string) error
	Clear(key string) error
}

// Runner drives the paged crawl loop for one query. The pagination token is
// persisted per query, so independent crawls resume independently.
type Runner struct {
	source   Source
	pipeline processor
	cursors  cursorStore
	maxPages int
}

// NewRunner creates a new crawl runner
func NewRunner(source Source, pipeline *Pipeline, cursors cursorStore, maxPages int) *Runner {
	return &Runner{
		source:   source,
		pipeline: pipeline,
		cursors:  cursors,
		maxPages: maxPages,
	}
}

func cursorKey(query string) string {
	return "page_token:" + query
}

// Run crawls up to the page budget for the query, resuming from the saved
// cursor. The new token is persisted immediately after each successful page
// fetch, before any candidate on that page is processed, so a crash mid-page
// resumes at the next page. A fetch failure halts the run and keeps the
// cursor; exhaustion and reaching the page budget clear it.
func (r *Runner) Run(ctx context.Context, query string) (Stats, error) {
	key := cursorKey(query)

	token, err := r.cursors.Get(key)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to load cursor: %w", err)
	}

	var stats Stats
	processed := make(map[string]bool)

	for page := 0; page < r.maxPages; page++ {
		result, err := r.source.FetchPage(ctx, query, token)
		if err != nil {
			// Cursor keeps its last saved value for the next run.
			return stats, fmt.Errorf("failed to fetch page: %w", err)
		}
		stats.Pages++

		token = result.NextToken
		if token != "" {
			if err := r.cursors.Set(key, token); err != nil {
				return stats, fmt.Errorf("failed to save cursor: %w", err)
			}
		}

		slog.Info("fetched page", "query", query, "page", stats.Pages, "candidates", len(result.Candidates))

		for _, candidate := range result.Candidates {
			if processed[candidate.VideoID] {
				continue
			}
			processed[candidate.VideoID] = true

			outcome, err := r.pipeline.Process(ctx, candidate)
			if err != nil {
				if errors.Is(err, ErrResolverUnavailable) {
					return stats, err
				}
				slog.Error("failed to process candidate", "video_id", candidate.VideoID, "error", err)
				stats.Errored++
				continue
			}

			switch outcome {
			case OutcomeStored:
				stats.Stored++
			case OutcomeSkipped:
				stats.Skipped++
			case OutcomeExists:
				stats.Exists++
			}
		}

		if token == "" {
			break
		}
	}

	if err := r.cursors.Clear(key); err != nil {
		return stats, fmt.Errorf("failed to clear cursor: %w", err)
	}

	return stats, nil
}

// RunMany crawls one query per seed term, prefixed with the base query, and
// accumulates the per-run summaries. Seeds are shuffled so interrupted runs
// spread coverage instead of always retracing the same prefix.
func (r *Runner) RunMany(ctx context.Context, seeds []string) (Stats, error) {
	shuffled := make([]string, len(seeds))
	copy(shuffled, seeds)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	var total Stats
	for _, seed := range shuffled {
		stats, err := r.Run(ctx, `intitle:"audiobook" `+seed)
		total.add(stats)
		if err != nil {
			return total, err
		}
	}

	return total, nil
}
