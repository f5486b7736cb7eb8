package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/msomdec/bookshelf/internal/domain"
)

// BlobStore implements domain.MediaStore with SQLite BLOBs. It is the media
// backend when no S3 bucket is configured; objects are served back through
// the /api/media route, which is what baseURL points at.
type BlobStore struct {
	db      *sql.DB
	baseURL string
}

var _ domain.MediaStore = (*BlobStore)(nil)

// NewBlobStore creates a BlobStore whose URLs are rooted at /api/media.
func NewBlobStore(db *DB) *BlobStore {
	return &BlobStore{db: db.SqlDB, baseURL: "/api/media"}
}

// WithBaseURL returns a copy of the store that builds URLs under base.
func (s *BlobStore) WithBaseURL(base string) *BlobStore {
	return &BlobStore{db: s.db, baseURL: strings.TrimSuffix(base, "/")}
}

func (s *BlobStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO media_blobs (storage_key, content_type, data, created_at) VALUES (?, ?, ?, ?)",
		key, contentType, data, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("save media blob: %w", err)
	}
	return s.baseURL + "/" + (&url.URL{Path: key}).EscapedPath(), nil
}

func (s *BlobStore) Get(ctx context.Context, key string) (*domain.MediaObject, error) {
	obj := &domain.MediaObject{Key: key}
	err := s.db.QueryRowContext(ctx,
		"SELECT content_type, data FROM media_blobs WHERE storage_key = ?", key,
	).Scan(&obj.ContentType, &obj.Data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get media blob: %w", err)
	}
	return obj, nil
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM media_blobs WHERE storage_key = ?", key,
	)
	if err != nil {
		return fmt.Errorf("delete media blob: %w", err)
	}
	return nil
}
