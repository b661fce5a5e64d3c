package database

import (
	"database/sql"
	"fmt"
	"time"
)

// SQLBookRepository handles catalog operations for audiobooks
type SQLBookRepository struct {
	db *DB
}

// NewBookRepository creates a new audiobook repository
func NewBookRepository(db *DB) *SQLBookRepository {
	return &SQLBookRepository{db: db}
}

// FindByVideoID resolves an external identifier to an audiobook or a skip
// record. Both results are nil when the identifier is unknown.
func (r *SQLBookRepository) FindByVideoID(videoID string) (*Audiobook, *SkippedVideo, error) {
	book, err := r.getBook("video_id = ?", videoID)
	if err != nil {
		return nil, nil, err
	}
	if book != nil {
		return book, nil, nil
	}

	var skip SkippedVideo
	err = r.db.QueryRow(`
		SELECT id, video_id, COALESCE(reason, ''), created_at
		FROM skipped_videos
		WHERE video_id = ?
	`, videoID).Scan(&skip.ID, &skip.VideoID, &skip.Reason, &skip.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get skip record: %w", err)
	}

	return nil, &skip, nil
}

// CreateBook stores an enriched candidate. The audiobook, its author and any
// missing categories are created in one transaction; nothing is written when
// the external identifier already exists in either the catalog or the skip
// list.
func (r *SQLBookRepository) CreateBook(record BookRecord) (bool, error) {
	if record.VideoID == "" {
		return false, fmt.Errorf("missing video id in book record")
	}

	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := identifierExists(tx, record.VideoID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	var authorID *int64
	if record.Author != "" {
		id, err := resolveAuthor(tx, record.Author)
		if err != nil {
			return false, err
		}
		authorID = &id
	}

	res, err := tx.Exec(`
		INSERT INTO audiobooks (video_id, title, description, thumbnail, duration, author_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.VideoID, record.Title, record.Description, record.Thumbnail,
		record.Duration, authorID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert audiobook: %w", err)
	}

	bookID, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to get audiobook id: %w", err)
	}

	for _, name := range record.Categories {
		categoryID, err := resolveCategory(tx, name)
		if err != nil {
			return false, err
		}

		_, err = tx.Exec(`
			INSERT OR IGNORE INTO audiobook_categories (audiobook_id, category_id)
			VALUES (?, ?)
		`, bookID, categoryID)
		if err != nil {
			return false, fmt.Errorf("failed to attach category: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit audiobook: %w", err)
	}

	return true, nil
}

// RecordSkip marks an external identifier as permanently rejected.
func (r *SQLBookRepository) RecordSkip(videoID, reason string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO skipped_videos (video_id, reason, created_at)
		VALUES (?, ?, ?)
	`, videoID, reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert skip record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit skip record: %w", err)
	}

	return nil
}

// ListAuthors returns all authors ordered by name
func (r *SQLBookRepository) ListAuthors() ([]Author, error) {
	rows, err := r.db.Query("SELECT id, name FROM authors ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	defer rows.Close()

	var authors []Author
	for rows.Next() {
		var author Author
		if err := rows.Scan(&author.ID, &author.Name); err != nil {
			return nil, fmt.Errorf("failed to scan author row: %w", err)
		}
		authors = append(authors, author)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating author rows: %w", err)
	}

	return authors, nil
}

// ListCategories returns all categories in display order
func (r *SQLBookRepository) ListCategories() ([]Category, error) {
	rows, err := r.db.Query("SELECT id, name, sort_order FROM categories ORDER BY sort_order, name")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var category Category
		if err := rows.Scan(&category.ID, &category.Name, &category.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return categories, nil
}

// SyncCategories registers the configured vocabulary, creating missing
// categories and keeping sort orders in line with the configuration.
func (r *SQLBookRepository) SyncCategories(categories []Category) error {
	for _, category := range categories {
		_, err := r.db.Exec(`
			INSERT INTO categories (name, sort_order) VALUES (?, ?)
			ON CONFLICT (name) DO UPDATE SET sort_order = excluded.sort_order
		`, category.Name, category.SortOrder)
		if err != nil {
			return fmt.Errorf("failed to sync category %q: %w", category.Name, err)
		}
	}
	return nil
}

func identifierExists(tx *sql.Tx, videoID string) (bool, error) {
	var n int
	err := tx.QueryRow(`
		SELECT (SELECT COUNT(*) FROM audiobooks WHERE video_id = ?)
		     + (SELECT COUNT(*) FROM skipped_videos WHERE video_id = ?)
	`, videoID, videoID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check existing identifier: %w", err)
	}
	return n > 0, nil
}

func resolveAuthor(tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRow("SELECT id FROM authors WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up author: %w", err)
	}

	res, err := tx.Exec("INSERT INTO authors (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to create author: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get author id: %w", err)
	}
	return id, nil
}

func resolveCategory(tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRow("SELECT id FROM categories WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up category: %w", err)
	}

	res, err := tx.Exec("INSERT INTO categories (name, sort_order) VALUES (?, 0)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to create category: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get category id: %w", err)
	}
	return id, nil
}

func (r *SQLBookRepository) getBook(where string, args ...interface{}) (*Audiobook, error) {
	var book Audiobook
	err := r.db.QueryRow(`
		SELECT b.id, b.video_id, b.title, COALESCE(b.description, ''),
		       COALESCE(b.thumbnail, ''), b.duration, b.author_id,
		       COALESCE(a.name, ''), b.created_at
		FROM audiobooks b
		LEFT JOIN authors a ON a.id = b.author_id
		WHERE `+where,
		args...,
	).Scan(
		&book.ID, &book.VideoID, &book.Title, &book.Description,
		&book.Thumbnail, &book.Duration, &book.AuthorID,
		&book.Author, &book.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audiobook: %w", err)
	}

	categories, err := r.bookCategories(book.ID)
	if err != nil {
		return nil, err
	}
	book.Categories = categories

	return &book, nil
}

func (r *SQLBookRepository) bookCategories(bookID int64) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT c.name
		FROM categories c
		JOIN audiobook_categories bc ON bc.category_id = c.id
		WHERE bc.audiobook_id = ?
		ORDER BY c.sort_order, c.name
	`, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get audiobook categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan category name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return names, nil
}
