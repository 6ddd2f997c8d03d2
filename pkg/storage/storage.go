// Package storage archives uploaded statement files so a bad ingestion can be
// replayed from the original bytes.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// StatementFile is the stored metadata of one archived upload.
type StatementFile struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // internal storage path
	CreatedAt   time.Time `json:"created_at"`
}

// Archive stores and retrieves raw statement files per user.
type Archive interface {
	// Store writes the upload and returns its metadata.
	Store(ctx context.Context, userID uuid.UUID, filename string, contentType string, r io.Reader) (*StatementFile, error)

	// Open returns a reader over an archived file for re-ingestion.
	Open(ctx context.Context, userID uuid.UUID, fileID uuid.UUID) (io.ReadCloser, *StatementFile, error)

	// Info returns metadata without opening the file.
	Info(ctx context.Context, userID uuid.UUID, fileID uuid.UUID) (*StatementFile, error)

	// List returns a user's archived files.
	List(ctx context.Context, userID uuid.UUID) ([]*StatementFile, error)

	// Delete removes an archived file and its metadata.
	Delete(ctx context.Context, userID uuid.UUID, fileID uuid.UUID) error
}

// Config holds storage configuration.
type Config struct {
	LocalPath string
}

// New creates the archive backend. Local disk is the only backend today.
func New(cfg Config) (Archive, error) {
	return NewLocalArchive(cfg.LocalPath)
}
