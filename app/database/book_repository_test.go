package database

import (
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func intPtr(n int) *int {
	return &n
}

func TestCreateBookIsIdempotent(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))

	record := BookRecord{
		VideoID:     "vid-001",
		Title:       "Dune",
		Author:      "Frank Herbert",
		Duration:    intPtr(3600),
		Categories:  []string{"Sci-Fi"},
		Description: "A desert planet.",
	}

	created, err := repo.CreateBook(record)
	if err != nil {
		t.Fatalf("CreateBook returned error: %v", err)
	}
	if !created {
		t.Fatal("Expected first CreateBook to create the audiobook")
	}

	created, err = repo.CreateBook(record)
	if err != nil {
		t.Fatalf("Second CreateBook returned error: %v", err)
	}
	if created {
		t.Error("Expected second CreateBook with same video id to be a no-op")
	}

	count, err := repo.CountBooks()
	if err != nil {
		t.Fatalf("CountBooks returned error: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 audiobook, got %d", count)
	}
}

func TestCreateBookRejectedAfterSkip(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))

	if err := repo.RecordSkip("vid-002", "too short"); err != nil {
		t.Fatalf("RecordSkip returned error: %v", err)
	}

	created, err := repo.CreateBook(BookRecord{VideoID: "vid-002", Title: "Short Book"})
	if err != nil {
		t.Fatalf("CreateBook returned error: %v", err)
	}
	if created {
		t.Error("Expected CreateBook to be rejected for a skipped identifier")
	}

	book, skip, err := repo.FindByVideoID("vid-002")
	if err != nil {
		t.Fatalf("FindByVideoID returned error: %v", err)
	}
	if book != nil {
		t.Error("Identifier must not be present in both audiobooks and skip list")
	}
	if skip == nil || skip.Reason != "too short" {
		t.Errorf("Expected skip record with reason 'too short', got %+v", skip)
	}
}

func TestCreateBookResolvesAuthorAndCategories(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))

	if err := repo.SyncCategories([]Category{{Name: "Fiction", SortOrder: 1}, {Name: "Mystery", SortOrder: 2}}); err != nil {
		t.Fatalf("SyncCategories returned error: %v", err)
	}

	for i, videoID := range []string{"vid-a", "vid-b"} {
		created, err := repo.CreateBook(BookRecord{
			VideoID:    videoID,
			Title:      "Book " + string(rune('A'+i)),
			Author:     "Agatha Christie",
			Categories: []string{"Mystery", "Fiction"},
		})
		if err != nil {
			t.Fatalf("CreateBook returned error: %v", err)
		}
		if !created {
			t.Fatalf("Expected %s to be created", videoID)
		}
	}

	authors, err := repo.ListAuthors()
	if err != nil {
		t.Fatalf("ListAuthors returned error: %v", err)
	}
	if len(authors) != 1 {
		t.Errorf("Expected author to be reused by exact name, got %d authors", len(authors))
	}

	book, _, err := repo.FindByVideoID("vid-a")
	if err != nil {
		t.Fatalf("FindByVideoID returned error: %v", err)
	}
	if book == nil {
		t.Fatal("Expected audiobook vid-a to exist")
	}
	if book.Author != "Agatha Christie" {
		t.Errorf("Expected author name on book, got %q", book.Author)
	}
	if len(book.Categories) != 2 {
		t.Errorf("Expected 2 categories, got %v", book.Categories)
	}
	// Categories come back in configured sort order
	if len(book.Categories) == 2 && (book.Categories[0] != "Fiction" || book.Categories[1] != "Mystery") {
		t.Errorf("Expected [Fiction Mystery], got %v", book.Categories)
	}
}

func TestFindByVideoIDUnknown(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))

	book, skip, err := repo.FindByVideoID("nope")
	if err != nil {
		t.Fatalf("FindByVideoID returned error: %v", err)
	}
	if book != nil || skip != nil {
		t.Error("Expected both results to be nil for an unknown identifier")
	}
}

func TestSearchBooks(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))

	records := []BookRecord{
		{VideoID: "s1", Title: "Pride and Prejudice", Author: "Jane Austen"},
		{VideoID: "s2", Title: "Emma", Author: "Jane Austen"},
		{VideoID: "s3", Title: "Dracula", Author: "Bram Stoker"},
	}
	for _, record := range records {
		if _, err := repo.CreateBook(record); err != nil {
			t.Fatalf("CreateBook returned error: %v", err)
		}
	}

	books, total, err := repo.SearchBooks("Austen", 10, 0)
	if err != nil {
		t.Fatalf("SearchBooks returned error: %v", err)
	}
	if total != 2 || len(books) != 2 {
		t.Errorf("Expected 2 matches for author search, got total=%d len=%d", total, len(books))
	}

	books, total, err = repo.SearchBooks("Dracula", 10, 0)
	if err != nil {
		t.Fatalf("SearchBooks returned error: %v", err)
	}
	if total != 1 || len(books) != 1 {
		t.Fatalf("Expected 1 match for title search, got total=%d len=%d", total, len(books))
	}
	if books[0].Author != "Bram Stoker" {
		t.Errorf("Expected author 'Bram Stoker', got %q", books[0].Author)
	}
}

func TestCursorRepository(t *testing.T) {
	db := newTestDB(t)
	cursors := NewCursorRepository(db)

	token, err := cursors.Get("page_token:audiobook")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if token != "" {
		t.Errorf("Expected empty token for fresh key, got %q", token)
	}

	if err := cursors.Set("page_token:audiobook", "CAUQAA"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := cursors.Set("page_token:audiobook", "CDIQAA"); err != nil {
		t.Fatalf("Second Set returned error: %v", err)
	}

	token, err = cursors.Get("page_token:audiobook")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if token != "CDIQAA" {
		t.Errorf("Expected latest token, got %q", token)
	}

	if err := cursors.Clear("page_token:audiobook"); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	token, err = cursors.Get("page_token:audiobook")
	if err != nil {
		t.Fatalf("Get after clear returned error: %v", err)
	}
	if token != "" {
		t.Errorf("Expected empty token after clear, got %q", token)
	}
}

func TestCursorKeysAreIndependent(t *testing.T) {
	cursors := NewCursorRepository(newTestDB(t))

	if err := cursors.Set("page_token:a", "tok-a"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := cursors.Set("page_token:b", "tok-b"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := cursors.Clear("page_token:a"); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}

	token, err := cursors.Get("page_token:b")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if token != "tok-b" {
		t.Errorf("Clearing one key must not affect another, got %q", token)
	}
}
