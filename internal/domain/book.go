package domain

import (
	"context"
	"time"
)

// Book is a review posted by a user.
type Book struct {
	ID        string
	UserID    string
	Title     string
	Caption   string
	Rating    int
	ImageURL  string
	ImageKey  string // media store key, used for deletion
	CreatedAt time.Time
	UpdatedAt time.Time

	// Author is populated by list queries only.
	Author *User
}

// BookRepository handles book persistence.
type BookRepository interface {
	Create(ctx context.Context, book *Book) error
	GetByID(ctx context.Context, id string) (*Book, error)
	// List returns books newest first with Author set.
	List(ctx context.Context, limit, offset int) ([]Book, error)
	ListByUser(ctx context.Context, userID string) ([]Book, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}
