package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fedotkin/audiodex/app/books"
	"github.com/fedotkin/audiodex/app/database"
	"github.com/fedotkin/audiodex/app/llm"
	"github.com/fedotkin/audiodex/app/textutil"
)

// ErrResolverUnavailable marks a bibliographic source failure. It indicates
// infrastructure unavailability, not one bad record, so the crawl run halts.
var ErrResolverUnavailable = errors.New("metadata resolver unavailable")

// Resolver standardizes a working title/author against a bibliographic
// source. A nil result with a nil error means no confident match.
type Resolver interface {
	Lookup(ctx context.Context, title, author string) (*books.Info, error)
}

// Classifier is the inference surface the funnel relies on. Absent results
// are treated as insufficient signal, never as rejections.
type Classifier interface {
	GuessTitleAuthor(ctx context.Context, title string) (*llm.TitleAuthor, error)
	GuessAuthor(ctx context.Context, text string) (string, error)
	GuessLanguage(ctx context.Context, text string) (*bool, error)
	GuessCategories(ctx context.Context, text string, vocabulary []string) ([]string, error)
}

// Outcome is the terminal state of one candidate.
type Outcome int

const (
	// OutcomeExists means the identifier was already cataloged or skipped.
	OutcomeExists Outcome = iota
	// OutcomeStored means a new audiobook was created.
	OutcomeStored
	// OutcomeSkipped means a skip record was written.
	OutcomeSkipped
)

// Pipeline pushes one candidate through the eligibility funnel. Steps
// short-circuit in order; once a skip is recorded no further steps run.
type Pipeline struct {
	repo        database.BookRepository
	resolver    Resolver
	classifier  Classifier
	vocabulary  []string
	minDuration int
}

// NewPipeline creates a new eligibility pipeline
func NewPipeline(repo database.BookRepository, resolver Resolver, classifier Classifier, vocabulary []string, minDuration int) *Pipeline {
	return &Pipeline{
		repo:        repo,
		resolver:    resolver,
		classifier:  classifier,
		vocabulary:  vocabulary,
		minDuration: minDuration,
	}
}

// Process evaluates one candidate. Persistence failures are returned to the
// caller; a wrapped ErrResolverUnavailable means the whole run should halt.
func (p *Pipeline) Process(ctx context.Context, c Candidate) (Outcome, error) {
	book, skip, err := p.repo.FindByVideoID(c.VideoID)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing records: %w", err)
	}
	if book != nil || skip != nil {
		return OutcomeExists, nil
	}

	if !isEnglishCode(c.Language) {
		return p.skip(c.VideoID, "not English")
	}

	var duration *int
	if c.RawDuration != "" {
		if seconds, ok := textutil.ParseISODuration(c.RawDuration); ok {
			if seconds < p.minDuration {
				return p.skip(c.VideoID, "too short")
			}
			duration = &seconds
		}
		// An unparseable duration is not grounds for rejection on its own.
	}

	title := textutil.NormalizeTitle(c.Title)
	description := textutil.DecodeEntities(c.Description)
	thumbnail := c.Thumbnail

	isEnglish, err := p.classifier.GuessLanguage(ctx, title+" "+description)
	if err != nil {
		slog.Warn("language classification failed", "video_id", c.VideoID, "error", err)
		isEnglish = nil
	}
	if isEnglish != nil && !*isEnglish {
		return p.skip(c.VideoID, "not English (LLM)")
	}

	var author string
	extracted, err := p.classifier.GuessTitleAuthor(ctx, title)
	if err != nil {
		slog.Warn("title extraction failed", "video_id", c.VideoID, "error", err)
		extracted = nil
	}
	if extracted != nil && extracted.Author != "" {
		title = extracted.Title
		author = extracted.Author
	}
	if strings.EqualFold(author, llm.UnknownAuthor) {
		author = ""
	}

	if author == "" {
		author, err = p.classifier.GuessAuthor(ctx, description)
		if err != nil {
			slog.Warn("author extraction failed", "video_id", c.VideoID, "error", err)
			author = ""
		}
	}

	info, err := p.resolver.Lookup(ctx, title, author)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrResolverUnavailable, err)
	}
	if info != nil {
		title = info.Title
		author = info.Author
		description = info.Description
		if thumbnail == "" {
			thumbnail = info.Thumbnail
		}
	}

	if author == "" || strings.EqualFold(author, llm.UnknownAuthor) {
		return p.skip(c.VideoID, "no author found")
	}

	categories, err := p.classifier.GuessCategories(ctx, title+" "+description, p.vocabulary)
	if err != nil {
		slog.Warn("category classification failed", "video_id", c.VideoID, "error", err)
		categories = nil
	}

	created, err := p.repo.CreateBook(database.BookRecord{
		VideoID:     c.VideoID,
		Title:       title,
		Description: description,
		Thumbnail:   thumbnail,
		Author:      author,
		Duration:    duration,
		Categories:  categories,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to store audiobook: %w", err)
	}
	if !created {
		return OutcomeExists, nil
	}

	slog.Info("stored audiobook", "video_id", c.VideoID, "title", title, "author", author)
	return OutcomeStored, nil
}

func (p *Pipeline) skip(videoID, reason string) (Outcome, error) {
	if err := p.repo.RecordSkip(videoID, reason); err != nil {
		return 0, fmt.Errorf("failed to record skip: %w", err)
	}
	slog.Info("skipped candidate", "video_id", videoID, "reason", reason)
	return OutcomeSkipped, nil
}

// isEnglishCode reports whether a structured language code allows the
// candidate through. A missing code is insufficient signal and passes.
func isEnglishCode(code string) bool {
	if code == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(code), "en")
}
