package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fedotkin/audiodex/app/database"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxRandomBooks  = 50
)

// NewHandler creates a new API handler backed by the catalog read queries
func NewHandler(repo database.ReadRepository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.repo.CountBooks(); err == nil {
		health["books"] = count
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.repo.ListCategories()
	if err != nil {
		slog.Error("Database error", "operation", "list_categories", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": presentCategories(categories),
		"total":      len(categories),
	})
}

func (h *Handler) GetCategoryBooks(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
		return
	}

	category, err := h.repo.GetCategory(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_category", "category_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if category == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	page, limit, offset := pagination(c)
	books, total, err := h.repo.BooksByCategory(id, limit, offset)
	if err != nil {
		slog.Error("Database error", "operation", "books_by_category", "category_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": categoryResponse{ID: category.ID, Name: category.Name, SortOrder: category.SortOrder},
		"books":    presentBooks(books),
		"total":    total,
		"page":     page,
		"per_page": limit,
	})
}

func (h *Handler) GetBook(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid audiobook id"})
		return
	}

	book, err := h.repo.GetBook(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_book", "book_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if book == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Audiobook not found"})
		return
	}

	c.JSON(http.StatusOK, presentBook(*book))
}

func (h *Handler) SearchBooks(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing search query"})
		return
	}

	page, limit, offset := pagination(c)
	books, total, err := h.repo.SearchBooks(query, limit, offset)
	if err != nil {
		slog.Error("Database error", "operation", "search_books", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"books":    presentBooks(books),
		"total":    total,
		"page":     page,
		"per_page": limit,
	})
}

func (h *Handler) GetRandomBooks(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("n", "10"))
	if err != nil || n < 1 {
		n = 10
	}
	if n > maxRandomBooks {
		n = maxRandomBooks
	}

	books, err := h.repo.RandomBooks(n)
	if err != nil {
		slog.Error("Database error", "operation", "random_books", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": presentBooks(books)})
}

func (h *Handler) GetBookCount(c *gin.Context) {
	count, err := h.repo.CountBooks()
	if err != nil {
		slog.Error("Database error", "operation", "count_books", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"total": count})
}

func pagination(c *gin.Context) (page, limit, offset int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err = strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	return page, limit, (page - 1) * limit
}
