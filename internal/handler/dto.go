package handler

import (
	"time"

	"github.com/msomdec/bookshelf/internal/domain"
	"github.com/msomdec/bookshelf/internal/service"
)

// UserDTO is the JSON representation of a principal. It never carries the
// password hash.
type UserDTO struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
	}
}

// SessionDTO is returned by register and login.
type SessionDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

func toSessionDTO(s *service.Session) SessionDTO {
	return SessionDTO{Token: s.Token, User: toUserDTO(s.User)}
}

// AuthorDTO is the public projection of a book's author.
type AuthorDTO struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage"`
}

// BookDTO is the JSON representation of a book.
type BookDTO struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Caption   string     `json:"caption"`
	Rating    int        `json:"rating"`
	Image     string     `json:"image"`
	UserID    string     `json:"userId"`
	User      *AuthorDTO `json:"user,omitempty"`
	CreatedAt string     `json:"createdAt"`
	UpdatedAt string     `json:"updatedAt"`
}

func toBookDTO(b *domain.Book) BookDTO {
	dto := BookDTO{
		ID:        b.ID,
		Title:     b.Title,
		Caption:   b.Caption,
		Rating:    b.Rating,
		Image:     b.ImageURL,
		UserID:    b.UserID,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
		UpdatedAt: b.UpdatedAt.Format(time.RFC3339),
	}
	if b.Author != nil {
		dto.User = &AuthorDTO{
			ID:           b.Author.ID,
			Username:     b.Author.Username,
			ProfileImage: b.Author.ProfileImage,
		}
	}
	return dto
}

func toBookDTOs(books []domain.Book) []BookDTO {
	dtos := make([]BookDTO, len(books))
	for i := range books {
		dtos[i] = toBookDTO(&books[i])
	}
	return dtos
}

// BookPageDTO is one page of the book feed.
type BookPageDTO struct {
	Books       []BookDTO `json:"books"`
	CurrentPage int       `json:"currentPage"`
	TotalBooks  int       `json:"totalBooks"`
	TotalPages  int       `json:"totalPages"`
}
