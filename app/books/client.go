// Package books queries a bibliographic source (Google Books) and
// fuzzy-matches candidate titles against it to standardize noisy metadata.
package books

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// MinMatchScore is the token-sort similarity (0-100) a candidate title must
// reach for the lookup to be treated as a match.
const MinMatchScore = 75

const maxResults = 5

// Info is the standardized book metadata returned on a successful match.
type Info struct {
	Title       string
	Author      string
	Description string
	Thumbnail   string
}

// Client queries the Google Books volumes API
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new bibliographic client
func NewClient(apiURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type volumeInfo struct {
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	ImageLinks  struct {
		Thumbnail      string `json:"thumbnail"`
		SmallThumbnail string `json:"smallThumbnail"`
	} `json:"imageLinks"`
}

type volume struct {
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumesResponse struct {
	Items []volume `json:"items"`
}

// Lookup searches the bibliographic source for a working title and optional
// author. It returns nil when no candidate title scores at least
// MinMatchScore against the working title. Transport and decode failures are
// returned as errors; the caller is expected to treat them as fatal to the
// current run.
func (c *Client) Lookup(ctx context.Context, title, author string) (*Info, error) {
	query := fmt.Sprintf("intitle:%q", title)
	if author != "" {
		query += fmt.Sprintf(" inauthor:%q", author)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("printType", "books")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query books API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("books API HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	var data volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode books API response: %w", err)
	}

	best := bestMatch(title, data.Items)
	if best == nil {
		return nil, nil
	}

	return buildInfo(best), nil
}

// bestMatch picks the candidate whose title scores highest against the
// working title, requiring at least MinMatchScore. Candidates lacking a
// title or any author are discarded before scoring.
func bestMatch(title string, items []volume) *volumeInfo {
	var best *volumeInfo
	bestScore := MinMatchScore - 1

	for i := range items {
		info := &items[i].VolumeInfo
		if info.Title == "" || len(info.Authors) == 0 {
			continue
		}

		score := fuzzy.TokenSortRatio(title, info.Title)
		if score > bestScore {
			bestScore = score
			best = info
		}
	}

	return best
}

func buildInfo(info *volumeInfo) *Info {
	title := info.Title
	if info.Subtitle != "" {
		title += ": " + info.Subtitle
	}

	description := info.Description
	if len(info.Categories) > 0 {
		description += "\n\nCategories: " + strings.Join(info.Categories, ", ")
	}

	thumbnail := info.ImageLinks.Thumbnail
	if thumbnail == "" {
		thumbnail = info.ImageLinks.SmallThumbnail
	}

	return &Info{
		Title:       title,
		Author:      info.Authors[0],
		Description: description,
		Thumbnail:   thumbnail,
	}
}
