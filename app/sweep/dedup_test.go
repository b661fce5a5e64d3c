package sweep

import (
	"testing"
	"time"

	"github.com/fedotkin/audiodex/app/database"
)

func newSweepDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.NewConnection(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func insertBookAt(t *testing.T, db *database.DB, videoID, title, thumbnail string, authorID int64, createdAt time.Time) int64 {
	t.Helper()

	res, err := db.Exec(`
		INSERT INTO audiobooks (video_id, title, thumbnail, author_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, videoID, title, thumbnail, authorID, createdAt)
	if err != nil {
		t.Fatalf("Failed to insert audiobook: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get audiobook id: %v", err)
	}
	return id
}

func insertAuthor(t *testing.T, db *database.DB, name string) int64 {
	t.Helper()

	res, err := db.Exec("INSERT INTO authors (name) VALUES (?)", name)
	if err != nil {
		t.Fatalf("Failed to insert author: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get author id: %v", err)
	}
	return id
}

func countBooks(t *testing.T, db *database.DB) int {
	t.Helper()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM audiobooks").Scan(&count); err != nil {
		t.Fatalf("Failed to count audiobooks: %v", err)
	}
	return count
}

func TestDeduplicateKeepsEarliest(t *testing.T) {
	db := newSweepDB(t)
	repo := database.NewMaintenanceRepository(db)

	authorID := insertAuthor(t, db, "Frank Herbert")
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	earliest := insertBookAt(t, db, "dup-1", "Dune", "", authorID, base)
	insertBookAt(t, db, "dup-2", "Dune", "", authorID, base.Add(time.Hour))
	insertBookAt(t, db, "dup-3", "Dune", "", authorID, base.Add(2*time.Hour))
	insertBookAt(t, db, "solo-1", "Dune Messiah", "", authorID, base)

	result, err := Deduplicate(repo)
	if err != nil {
		t.Fatalf("Deduplicate returned error: %v", err)
	}

	if result.Groups != 1 || result.Removed != 2 || result.Errored != 0 {
		t.Errorf("Unexpected result: %+v", result)
	}
	if got := countBooks(t, db); got != 2 {
		t.Errorf("Expected 2 surviving audiobooks, got %d", got)
	}

	var survivor int64
	err = db.QueryRow("SELECT id FROM audiobooks WHERE title = 'Dune'").Scan(&survivor)
	if err != nil {
		t.Fatalf("Failed to find surviving audiobook: %v", err)
	}
	if survivor != earliest {
		t.Errorf("Expected the earliest record %d to survive, got %d", earliest, survivor)
	}
}

func TestDeduplicateDetachesCategories(t *testing.T) {
	db := newSweepDB(t)
	books := database.NewBookRepository(db)
	repo := database.NewMaintenanceRepository(db)

	if _, err := books.CreateBook(database.BookRecord{
		VideoID:    "dup-1",
		Title:      "Dune",
		Author:     "Frank Herbert",
		Categories: []string{"Fiction"},
	}); err != nil {
		t.Fatalf("CreateBook returned error: %v", err)
	}

	var authorID int64
	if err := db.QueryRow("SELECT id FROM authors WHERE name = 'Frank Herbert'").Scan(&authorID); err != nil {
		t.Fatalf("Failed to find author: %v", err)
	}

	duplicate := insertBookAt(t, db, "dup-2", "Dune", "", authorID, time.Now().UTC().Add(time.Hour))
	if _, err := db.Exec(
		"INSERT INTO audiobook_categories (audiobook_id, category_id) SELECT ?, id FROM categories WHERE name = 'Fiction'",
		duplicate,
	); err != nil {
		t.Fatalf("Failed to attach category: %v", err)
	}

	result, err := Deduplicate(repo)
	if err != nil {
		t.Fatalf("Deduplicate returned error: %v", err)
	}
	if result.Removed != 1 {
		t.Fatalf("Expected 1 removal, got %+v", result)
	}

	var joinRows int
	err = db.QueryRow("SELECT COUNT(*) FROM audiobook_categories WHERE audiobook_id = ?", duplicate).Scan(&joinRows)
	if err != nil {
		t.Fatalf("Failed to count join rows: %v", err)
	}
	if joinRows != 0 {
		t.Errorf("Expected the deleted duplicate's categories detached, found %d rows", joinRows)
	}
}

func TestDeduplicateNothingToMerge(t *testing.T) {
	db := newSweepDB(t)
	repo := database.NewMaintenanceRepository(db)

	authorID := insertAuthor(t, db, "Jane Austen")
	insertBookAt(t, db, "solo-1", "Emma", "", authorID, time.Now().UTC())

	result, err := Deduplicate(repo)
	if err != nil {
		t.Fatalf("Deduplicate returned error: %v", err)
	}
	if result.Groups != 0 || result.Removed != 0 {
		t.Errorf("Expected an empty sweep, got %+v", result)
	}
	if got := countBooks(t, db); got != 1 {
		t.Errorf("Expected the catalog untouched, got %d audiobooks", got)
	}
}
