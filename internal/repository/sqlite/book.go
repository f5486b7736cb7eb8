package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/msomdec/bookshelf/internal/domain"
)

// BookRepository implements domain.BookRepository using SQLite.
type BookRepository struct {
	db *sql.DB
}

var _ domain.BookRepository = (*BookRepository)(nil)

func NewBookRepository(db *DB) *BookRepository {
	return &BookRepository{db: db.SqlDB}
}

func (r *BookRepository) Create(ctx context.Context, book *domain.Book) error {
	now := time.Now().UTC()
	id := uuid.NewString()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO books (id, user_id, title, caption, rating, image_url, image_key, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, book.UserID, book.Title, book.Caption, book.Rating, book.ImageURL, book.ImageKey, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}

	book.ID = id
	book.CreatedAt = now
	book.UpdatedAt = now
	return nil
}

func (r *BookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	b := &domain.Book{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, caption, rating, image_url, image_key, created_at, updated_at
		 FROM books WHERE id = ?`, id,
	).Scan(&b.ID, &b.UserID, &b.Title, &b.Caption, &b.Rating, &b.ImageURL, &b.ImageKey, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query book: %w", err)
	}
	return b, nil
}

// List returns a page of books, newest first, with the author's public
// fields joined in.
func (r *BookRepository) List(ctx context.Context, limit, offset int) ([]domain.Book, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.user_id, b.title, b.caption, b.rating, b.image_url, b.image_key, b.created_at, b.updated_at,
		        u.id, u.username, u.profile_image
		 FROM books b
		 JOIN users u ON u.id = b.user_id
		 ORDER BY b.created_at DESC, b.id DESC
		 LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		author := &domain.User{}
		if err := rows.Scan(&b.ID, &b.UserID, &b.Title, &b.Caption, &b.Rating, &b.ImageURL, &b.ImageKey, &b.CreatedAt, &b.UpdatedAt,
			&author.ID, &author.Username, &author.ProfileImage); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		b.Author = author
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *BookRepository) ListByUser(ctx context.Context, userID string) ([]domain.Book, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, caption, rating, image_url, image_key, created_at, updated_at
		 FROM books WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list books by user: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(&b.ID, &b.UserID, &b.Title, &b.Caption, &b.Rating, &b.ImageURL, &b.ImageKey, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *BookRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete book rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
