// Package llm talks to a local inference service (Ollama) and parses its
// schema-constrained responses into one of four result shapes. Malformed
// responses become absent results, never errors; transport failures are
// returned and the caller decides how much signal it needed.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// UnknownAuthor is the sentinel the model tends to emit when it cannot name
// an author; it is treated the same as an empty result.
const UnknownAuthor = "unknown"

// TitleAuthor is the result of title/author extraction from a noisy title.
type TitleAuthor struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Client sends structured prompts to the inference service
type Client struct {
	host       string
	model      string
	httpClient *http.Client
}

// NewClient creates a new inference client
func NewClient(host, model string, timeout time.Duration) *Client {
	return &Client{
		host:       strings.TrimSuffix(host, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string          `json:"model"`
	Messages []chatMessage   `json:"messages"`
	Format   json.RawMessage `json:"format,omitempty"`
	Stream   bool            `json:"stream"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// GuessTitleAuthor extracts a book title and author from a noisy video
// title. Returns nil when the model produced no usable answer.
func (c *Client) GuessTitleAuthor(ctx context.Context, videoTitle string) (*TitleAuthor, error) {
	prompt := fmt.Sprintf(`This string contains a book title and may contain author, as well as other text.
Give me the book title and author (if available). If no author is available, return an empty string for author.
Here is the book title: %s`, videoTitle)

	var result TitleAuthor
	ok, err := c.chat(ctx, prompt, titleAuthorSchema, &result)
	if err != nil || !ok {
		return nil, err
	}
	return &result, nil
}

// GuessAuthor extracts an author name from descriptive text. Returns the
// empty string when no author could be determined.
func (c *Client) GuessAuthor(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(`This string contains a book title, description and may contain author name, as well as other text.
Try to determine the author name. If no author is available, return an empty string for author.
Here is the text: %s`, text)

	var result struct {
		Author string `json:"author"`
	}
	ok, err := c.chat(ctx, prompt, authorSchema, &result)
	if err != nil || !ok {
		return "", err
	}

	if strings.EqualFold(result.Author, UnknownAuthor) {
		return "", nil
	}
	return result.Author, nil
}

// GuessLanguage classifies whether the text is English. Returns nil when the
// model produced no usable answer; callers must treat nil as insufficient
// signal, not as a negative.
func (c *Client) GuessLanguage(ctx context.Context, text string) (*bool, error) {
	prompt := fmt.Sprintf(`Tell me if this text is in English or not. If it is, return true, otherwise return false.
Here is the text: %s`, text)

	var result struct {
		IsEnglish bool `json:"is_english"`
	}
	ok, err := c.chat(ctx, prompt, languageSchema, &result)
	if err != nil || !ok {
		return nil, err
	}
	return &result.IsEnglish, nil
}

// GuessCategories classifies the text into zero or more categories from the
// given vocabulary. Names outside the vocabulary are discarded even if the
// model returns them.
func (c *Client) GuessCategories(ctx context.Context, text string, vocabulary []string) ([]string, error) {
	prompt := fmt.Sprintf(`This string contains text describing an audiobook.
Based on text, classify the book in one or more of the following categories: %s.
Do not include any categories outside of this list.
Here is the book text: %s`, strings.Join(vocabulary, ", "), text)

	var result struct {
		Categories []string `json:"categories"`
	}
	ok, err := c.chat(ctx, prompt, categoriesSchema, &result)
	if err != nil || !ok {
		return nil, err
	}

	valid := make(map[string]bool, len(vocabulary))
	for _, name := range vocabulary {
		valid[name] = true
	}

	var categories []string
	for _, name := range result.Categories {
		if valid[name] {
			categories = append(categories, name)
		}
	}
	return categories, nil
}

// chat performs one inference call and unmarshals the response content into
// out. Returns ok=false with a nil error when the content is not valid JSON
// for the requested shape.
func (c *Client) chat(ctx context.Context, prompt string, format json.RawMessage, out interface{}) (bool, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Format:   format,
		Stream:   false,
	})
	if err != nil {
		return false, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.host+"/api/chat", bytes.NewReader(reqBody))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to call inference service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("inference service HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return false, fmt.Errorf("failed to decode inference response: %w", err)
	}

	if err := json.Unmarshal([]byte(chatResp.Message.Content), out); err != nil {
		// Constrained decoding is best effort; a model that ignores the
		// schema yields an absent result, not an error.
		return false, nil
	}

	return true, nil
}
