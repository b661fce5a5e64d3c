package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// YouTubeSource pages through the YouTube Data API. Each page is a search
// call followed by one batched videos call for durations, languages and tags,
// which the search endpoint does not return.
type YouTubeSource struct {
	searchURL  string
	videosURL  string
	apiKey     string
	pageSize   int
	httpClient *http.Client
}

// NewYouTubeSource creates a new content source backed by the YouTube Data API
func NewYouTubeSource(searchURL, videosURL, apiKey string, pageSize int, timeout time.Duration) *YouTubeSource {
	return &YouTubeSource{
		searchURL:  searchURL,
		videosURL:  videosURL,
		apiKey:     apiKey,
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type searchThumbnail struct {
	URL string `json:"url"`
}

type searchResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Thumbnails  struct {
				High    searchThumbnail `json:"high"`
				Default searchThumbnail `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Tags                 []string `json:"tags"`
			DefaultAudioLanguage string   `json:"defaultAudioLanguage"`
			DefaultLanguage      string   `json:"defaultLanguage"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type videoDetails struct {
	duration string
	language string
	tags     []string
}

// FetchPage retrieves one search page and enriches it with per-video details.
func (s *YouTubeSource) FetchPage(ctx context.Context, query, token string) (*Page, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(s.pageSize))
	params.Set("key", s.apiKey)
	if token != "" {
		params.Set("pageToken", token)
	}

	var search searchResponse
	if err := s.getJSON(ctx, s.searchURL, params, &search); err != nil {
		return nil, fmt.Errorf("failed to fetch search page: %w", err)
	}

	var ids []string
	for _, item := range search.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}

	details, err := s.fetchDetails(ctx, ids)
	if err != nil {
		return nil, err
	}

	page := &Page{NextToken: search.NextPageToken}
	for _, item := range search.Items {
		id := item.ID.VideoID
		if id == "" {
			continue
		}

		thumbnail := item.Snippet.Thumbnails.High.URL
		if thumbnail == "" {
			thumbnail = item.Snippet.Thumbnails.Default.URL
		}

		candidate := Candidate{
			VideoID:     id,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			Thumbnail:   thumbnail,
		}
		if d, ok := details[id]; ok {
			candidate.RawDuration = d.duration
			candidate.Language = d.language
			candidate.Tags = d.tags
		}

		page.Candidates = append(page.Candidates, candidate)
	}

	return page, nil
}

func (s *YouTubeSource) fetchDetails(ctx context.Context, ids []string) (map[string]videoDetails, error) {
	details := make(map[string]videoDetails, len(ids))
	if len(ids) == 0 {
		return details, nil
	}

	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", strings.Join(ids, ","))
	params.Set("key", s.apiKey)

	var videos videosResponse
	if err := s.getJSON(ctx, s.videosURL, params, &videos); err != nil {
		return nil, fmt.Errorf("failed to fetch video details: %w", err)
	}

	for _, item := range videos.Items {
		language := item.Snippet.DefaultAudioLanguage
		if language == "" {
			language = item.Snippet.DefaultLanguage
		}
		details[item.ID] = videoDetails{
			duration: item.ContentDetails.Duration,
			language: language,
			tags:     item.Snippet.Tags,
		}
	}

	return details, nil
}

func (s *YouTubeSource) getJSON(ctx context.Context, rawURL string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call content source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("content source HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode content source response: %w", err)
	}

	return nil
}
