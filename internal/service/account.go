package service

import (
	"context"
	"fmt"

	"github.com/msomdec/bookshelf/internal/domain"
)

// AccountService removes accounts together with everything they own.
type AccountService struct {
	users domain.UserRepository
	books *BookService
}

// NewAccountService creates a new AccountService.
func NewAccountService(users domain.UserRepository, books *BookService) *AccountService {
	return &AccountService{users: users, books: books}
}

// Delete removes the user. Their book rows go with it through the foreign
// key; their cover images are removed from the media store afterwards, best
// effort. Outstanding session tokens stop working because the principal no
// longer resolves.
func (s *AccountService) Delete(ctx context.Context, userID string) error {
	books, err := s.books.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	for _, b := range books {
		if b.ImageKey != "" {
			s.books.deleteImage(ctx, b.ImageKey)
		}
	}
	return nil
}
