package api

import (
	"time"

	"github.com/fedotkin/audiodex/app/database"
)

type Handler struct {
	repo database.ReadRepository
}

type bookResponse struct {
	ID          int64     `json:"id"`
	VideoID     string    `json:"video_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	Duration    *int      `json:"duration"`
	Author      string    `json:"author"`
	Categories  []string  `json:"categories"`
	CreatedAt   time.Time `json:"created_at"`
}

type categoryResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func presentBook(book database.Audiobook) bookResponse {
	categories := book.Categories
	if categories == nil {
		categories = []string{}
	}
	return bookResponse{
		ID:          book.ID,
		VideoID:     book.VideoID,
		Title:       book.Title,
		Description: book.Description,
		Thumbnail:   book.Thumbnail,
		Duration:    book.Duration,
		Author:      book.Author,
		Categories:  categories,
		CreatedAt:   book.CreatedAt,
	}
}

func presentBooks(books []database.Audiobook) []bookResponse {
	out := make([]bookResponse, 0, len(books))
	for _, book := range books {
		out = append(out, presentBook(book))
	}
	return out
}

func presentCategories(categories []database.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, categoryResponse{
			ID:        category.ID,
			Name:      category.Name,
			SortOrder: category.SortOrder,
		})
	}
	return out
}
