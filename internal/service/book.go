package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/msomdec/bookshelf/internal/domain"
)

const (
	maxImageSize     = 10 * 1024 * 1024 // 10MB
	defaultPageLimit = 5
	maxPageLimit     = 50

	// maxPage keeps (page-1)*limit from overflowing.
	maxPage = math.MaxInt / maxPageLimit
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// NewBook is the input for BookService.Create. Image is a base64 data URI
// ("data:image/png;base64,...") or bare base64.
type NewBook struct {
	Title   string
	Caption string
	Rating  int
	Image   string
}

// BookPage is one page of the public book feed.
type BookPage struct {
	Books      []domain.Book
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// BookService manages book reviews and their cover images.
type BookService struct {
	books domain.BookRepository
	media domain.MediaStore
}

// NewBookService creates a new BookService.
func NewBookService(books domain.BookRepository, media domain.MediaStore) *BookService {
	return &BookService{books: books, media: media}
}

// Create validates the input, stores the image and records the book.
func (s *BookService) Create(ctx context.Context, userID string, in NewBook) (*domain.Book, error) {
	title := strings.TrimSpace(in.Title)
	caption := strings.TrimSpace(in.Caption)
	if title == "" || caption == "" || in.Image == "" || in.Rating == 0 {
		return nil, fmt.Errorf("%w: all fields are required", domain.ErrInvalidInput)
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidInput)
	}

	data, err := decodeImage(in.Image)
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("%w: image exceeds 10MB limit", domain.ErrInvalidInput)
	}
	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return nil, fmt.Errorf("%w: not an image, please upload an image", domain.ErrInvalidInput)
	}

	key := fmt.Sprintf("books/%s/%s%s", userID, uuid.NewString(), mtype.Extension())
	imageURL, err := s.media.Put(ctx, key, mtype.String(), data)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	book := &domain.Book{
		UserID:   userID,
		Title:    title,
		Caption:  caption,
		Rating:   in.Rating,
		ImageURL: imageURL,
		ImageKey: key,
	}
	if err := s.books.Create(ctx, book); err != nil {
		s.deleteImage(ctx, key)
		return nil, fmt.Errorf("create book: %w", err)
	}

	return book, nil
}

// List returns a page of books, newest first. Out-of-range paging values
// fall back to the defaults.
func (s *BookService) List(ctx context.Context, page, limit int) (*BookPage, error) {
	page = min(max(page, 1), maxPage)
	if limit < 1 {
		limit = defaultPageLimit
	}
	limit = min(limit, maxPageLimit)

	books, err := s.books.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	total, err := s.books.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}

	return &BookPage{
		Books:      books,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// Get returns a single book.
func (s *BookService) Get(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.books.GetByID(ctx, bookID)
}

// ListByUser returns the given user's books.
func (s *BookService) ListByUser(ctx context.Context, userID string) ([]domain.Book, error) {
	return s.books.ListByUser(ctx, userID)
}

// Delete removes a book owned by userID, then its image.
func (s *BookService) Delete(ctx context.Context, userID, bookID string) error {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return fmt.Errorf("get book: %w", err)
	}
	if book.UserID != userID {
		return domain.ErrForbidden
	}

	if err := s.books.Delete(ctx, bookID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if book.ImageKey != "" {
		s.deleteImage(ctx, book.ImageKey)
	}
	return nil
}

// deleteImage is best effort; an orphaned object is only logged.
func (s *BookService) deleteImage(ctx context.Context, key string) {
	if err := s.media.Delete(ctx, key); err != nil {
		slog.Warn("delete image", "key", key, "error", err)
	}
}

func decodeImage(image string) ([]byte, error) {
	payload := image
	if strings.HasPrefix(payload, "data:") {
		_, after, ok := strings.Cut(payload, ";base64,")
		if !ok {
			return nil, fmt.Errorf("%w: image must be base64 encoded", domain.ErrInvalidInput)
		}
		payload = after
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: image is not valid base64", domain.ErrInvalidInput)
		}
	}
	return data, nil
}
