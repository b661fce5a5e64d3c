package database

import (
	"fmt"
	"strings"
)

// SQLMaintenanceRepository backs the offline maintenance sweeps
type SQLMaintenanceRepository struct {
	db *DB
}

// NewMaintenanceRepository creates a new maintenance repository
func NewMaintenanceRepository(db *DB) *SQLMaintenanceRepository {
	return &SQLMaintenanceRepository{db: db}
}

// DuplicateGroups returns every (title, author) pair held by more than one
// audiobook, with member ids ordered oldest first.
func (r *SQLMaintenanceRepository) DuplicateGroups() ([]DuplicateGroup, error) {
	rows, err := r.db.Query(`
		SELECT title, author_id
		FROM audiobooks
		WHERE author_id IS NOT NULL
		GROUP BY title, author_id
		HAVING COUNT(*) > 1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get duplicate groups: %w", err)
	}
	defer rows.Close()

	var groups []DuplicateGroup
	for rows.Next() {
		var group DuplicateGroup
		if err := rows.Scan(&group.Title, &group.AuthorID); err != nil {
			return nil, fmt.Errorf("failed to scan duplicate group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating duplicate groups: %w", err)
	}

	for i := range groups {
		ids, err := r.groupMembers(groups[i].Title, groups[i].AuthorID)
		if err != nil {
			return nil, err
		}
		groups[i].BookIDs = ids
	}

	return groups, nil
}

func (r *SQLMaintenanceRepository) groupMembers(title string, authorID int64) ([]int64, error) {
	rows, err := r.db.Query(`
		SELECT id FROM audiobooks
		WHERE title = ? AND author_id = ?
		ORDER BY created_at, id
	`, title, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group members: %w", err)
	}

	return ids, nil
}

// BooksWithThumbnails returns all audiobooks that carry a thumbnail URI
func (r *SQLMaintenanceRepository) BooksWithThumbnails() ([]BookLink, error) {
	rows, err := r.db.Query(`
		SELECT id, video_id, thumbnail
		FROM audiobooks
		WHERE thumbnail != ''
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get audiobooks with thumbnails: %w", err)
	}
	defer rows.Close()

	var links []BookLink
	for rows.Next() {
		var link BookLink
		if err := rows.Scan(&link.ID, &link.VideoID, &link.Thumbnail); err != nil {
			return nil, fmt.Errorf("failed to scan audiobook link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audiobook links: %w", err)
	}

	return links, nil
}

// DeleteBooks detaches category associations and deletes the given
// audiobooks in a single transaction.
func (r *SQLMaintenanceRepository) DeleteBooks(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec("DELETE FROM audiobook_categories WHERE audiobook_id IN ("+placeholders+")", args...)
	if err != nil {
		return fmt.Errorf("failed to detach categories: %w", err)
	}

	_, err = tx.Exec("DELETE FROM audiobooks WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return fmt.Errorf("failed to delete audiobooks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deletion: %w", err)
	}

	return nil
}
