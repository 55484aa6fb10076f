package index

import (
	"github.com/seliv/margin/internal/annot"
	"github.com/seliv/margin/internal/models"
)

// CommentIndex defines the interface for comment indexing operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type CommentIndex interface {
	UpsertFile(path, checksum string, anns []*annot.Annotation) error
	DeleteFile(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListFiles(limit, offset int, author string) ([]models.FileSummary, int, error)
	Comments(path string) ([]CommentRow, error)
	Authors() ([]models.AuthorCount, error)
	Timeline(limit int) ([]CommentRow, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies CommentIndex at compile time.
var _ CommentIndex = (*DB)(nil)
