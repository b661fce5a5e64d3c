package database

// BookRepository is the catalog store used by the eligibility pipeline.
type BookRepository interface {
	// FindByVideoID resolves an external identifier to an existing audiobook
	// or skip record. At most one of the two results is non-nil.
	FindByVideoID(videoID string) (*Audiobook, *SkippedVideo, error)

	// CreateBook stores an enriched candidate in one transaction, creating
	// the author and any missing categories on the way. Returns false when
	// the external identifier is already present in the catalog or the skip
	// list.
	CreateBook(record BookRecord) (bool, error)

	// RecordSkip marks an external identifier as permanently rejected.
	RecordSkip(videoID, reason string) error

	ListAuthors() ([]Author, error)
	ListCategories() ([]Category, error)
	SyncCategories(categories []Category) error
}

// CursorRepository persists the resumable pagination token per crawl key.
type CursorRepository interface {
	Get(key string) (string, error)
	Set(key, token string) error
	Clear(key string) error
}

// ReadRepository is the query surface of the catalog API.
type ReadRepository interface {
	ListCategories() ([]Category, error)
	GetCategory(id int64) (*Category, error)
	BooksByCategory(categoryID int64, limit, offset int) ([]Audiobook, int, error)
	GetBook(id int64) (*Audiobook, error)
	SearchBooks(query string, limit, offset int) ([]Audiobook, int, error)
	RandomBooks(n int) ([]Audiobook, error)
	CountBooks() (int, error)
}

// MaintenanceRepository backs the offline sweeps.
type MaintenanceRepository interface {
	DuplicateGroups() ([]DuplicateGroup, error)
	BooksWithThumbnails() ([]BookLink, error)

	// DeleteBooks detaches category associations and deletes the given
	// audiobooks in a single transaction.
	DeleteBooks(ids []int64) error
}
