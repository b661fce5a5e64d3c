package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fedotkin/audiodex/app/database"
)

// PruneResult summarizes one dead-link sweep.
type PruneResult struct {
	Checked int
	Removed int
	Errored int
}

// Pruner checks every stored thumbnail link and removes audiobooks whose
// source reports them gone.
type Pruner struct {
	repo       database.MaintenanceRepository
	userAgent  string
	httpClient *http.Client
}

// NewPruner creates a new dead-link pruner
func NewPruner(repo database.MaintenanceRepository, userAgent string, timeout time.Duration) *Pruner {
	return &Pruner{
		repo:       repo,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Run issues a HEAD request for every audiobook with a thumbnail link. A 404
// or 403 means the source removed the content; the audiobook is deleted. Any
// other status, and any transport error, leaves the record untouched.
// Audiobooks without a thumbnail are never checked.
func (p *Pruner) Run(ctx context.Context) (PruneResult, error) {
	links, err := p.repo.BooksWithThumbnails()
	if err != nil {
		return PruneResult{}, fmt.Errorf("failed to list audiobook links: %w", err)
	}

	var result PruneResult
	for _, link := range links {
		result.Checked++

		gone, err := p.linkGone(ctx, link.Thumbnail)
		if err != nil {
			slog.Warn("link check failed", "video_id", link.VideoID, "error", err)
			result.Errored++
			continue
		}
		if !gone {
			continue
		}

		if err := p.repo.DeleteBooks([]int64{link.ID}); err != nil {
			slog.Error("failed to delete unavailable audiobook", "video_id", link.VideoID, "error", err)
			result.Errored++
			continue
		}

		slog.Info("pruned unavailable audiobook", "video_id", link.VideoID)
		result.Removed++
	}

	return result, nil
}

func (p *Pruner) linkGone(ctx context.Context, link string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, "HEAD", link, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to check link: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden, nil
}
