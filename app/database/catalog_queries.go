package database

import (
	"database/sql"
	"fmt"
)

// Read-side queries backing the catalog API.

// GetBook returns an audiobook by its catalog id
func (r *SQLBookRepository) GetBook(id int64) (*Audiobook, error) {
	return r.getBook("b.id = ?", id)
}

// GetCategory returns a category by id
func (r *SQLBookRepository) GetCategory(id int64) (*Category, error) {
	var category Category
	err := r.db.QueryRow("SELECT id, name, sort_order FROM categories WHERE id = ?", id).
		Scan(&category.ID, &category.Name, &category.SortOrder)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// CountBooks returns the total number of audiobooks in the catalog
func (r *SQLBookRepository) CountBooks() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM audiobooks").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count audiobooks: %w", err)
	}
	return count, nil
}

// BooksByCategory returns a page of audiobooks attached to a category along
// with the total match count.
func (r *SQLBookRepository) BooksByCategory(categoryID int64, limit, offset int) ([]Audiobook, int, error) {
	var total int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM audiobook_categories WHERE category_id = ?
	`, categoryID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count category audiobooks: %w", err)
	}

	books, err := r.listBooks(`
		JOIN audiobook_categories bc ON bc.audiobook_id = b.id
		WHERE bc.category_id = ?
		ORDER BY b.created_at DESC
		LIMIT ? OFFSET ?
	`, categoryID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return books, total, nil
}

// SearchBooks matches audiobooks by title, description or author name and
// returns a page plus the total match count.
func (r *SQLBookRepository) SearchBooks(query string, limit, offset int) ([]Audiobook, int, error) {
	pattern := "%" + query + "%"

	var total int
	err := r.db.QueryRow(`
		SELECT COUNT(*)
		FROM audiobooks b
		LEFT JOIN authors a ON a.id = b.author_id
		WHERE b.title LIKE ? OR b.description LIKE ? OR a.name LIKE ?
	`, pattern, pattern, pattern).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	books, err := r.listBooks(`
		WHERE b.title LIKE ? OR b.description LIKE ? OR a.name LIKE ?
		ORDER BY b.created_at DESC
		LIMIT ? OFFSET ?
	`, pattern, pattern, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return books, total, nil
}

// RandomBooks returns up to n audiobooks in random order
func (r *SQLBookRepository) RandomBooks(n int) ([]Audiobook, error) {
	return r.listBooks("ORDER BY RANDOM() LIMIT ?", n)
}

func (r *SQLBookRepository) listBooks(clause string, args ...interface{}) ([]Audiobook, error) {
	rows, err := r.db.Query(`
		SELECT b.id, b.video_id, b.title, COALESCE(b.description, ''),
		       COALESCE(b.thumbnail, ''), b.duration, b.author_id,
		       COALESCE(a.name, ''), b.created_at
		FROM audiobooks b
		LEFT JOIN authors a ON a.id = b.author_id
		`+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audiobooks: %w", err)
	}
	defer rows.Close()

	var books []Audiobook
	for rows.Next() {
		var book Audiobook
		err := rows.Scan(
			&book.ID, &book.VideoID, &book.Title, &book.Description,
			&book.Thumbnail, &book.Duration, &book.AuthorID,
			&book.Author, &book.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audiobook row: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audiobook rows: %w", err)
	}

	for i := range books {
		categories, err := r.bookCategories(books[i].ID)
		if err != nil {
			return nil, err
		}
		books[i].Categories = categories
	}

	return books, nil
}
