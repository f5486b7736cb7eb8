package sqlite_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/bookshelf/internal/domain"
)

func TestBookRepository_CreateGetDelete(t *testing.T) {
	db := newTestDB(t)
	repo := db.Books()
	ctx := context.Background()
	owner := createUser(t, db, "reader", "reader@example.com")

	book := &domain.Book{UserID: owner.ID, Title: "Dune", Caption: "spice", Rating: 5, ImageURL: "u", ImageKey: "k"}
	require.NoError(t, repo.Create(ctx, book))
	assert.NotEmpty(t, book.ID)

	got, err := repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, 5, got.Rating)
	assert.Equal(t, "k", got.ImageKey)

	require.NoError(t, repo.Delete(ctx, book.ID))
	_, err = repo.GetByID(ctx, book.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, book.ID), domain.ErrNotFound)
}

func TestBookRepository_RatingConstraint(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "reader", "reader@example.com")

	err := db.Books().Create(context.Background(), &domain.Book{UserID: owner.ID, Title: "Bad", Rating: 9})
	assert.Error(t, err)
}

func TestBookRepository_ListAndCount(t *testing.T) {
	db := newTestDB(t)
	repo := db.Books()
	ctx := context.Background()
	owner := createUser(t, db, "reader", "reader@example.com")
	other := createUser(t, db, "other", "other@example.com")

	for i := range 7 {
		require.NoError(t, repo.Create(ctx, &domain.Book{UserID: owner.ID, Title: fmt.Sprintf("Book %d", i), Rating: 3}))
	}
	require.NoError(t, repo.Create(ctx, &domain.Book{UserID: other.ID, Title: "Theirs", Rating: 4}))

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, total)

	page1, err := repo.List(ctx, 5, 0)
	require.NoError(t, err)
	assert.Len(t, page1, 5)
	require.NotNil(t, page1[0].Author)
	assert.NotEmpty(t, page1[0].Author.Username)

	page2, err := repo.List(ctx, 5, 5)
	require.NoError(t, err)
	assert.Len(t, page2, 3)

	mine, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 7)
}

func TestBookRepository_CascadeOnUserDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "reader", "reader@example.com")
	require.NoError(t, db.Books().Create(ctx, &domain.Book{UserID: owner.ID, Title: "Gone", Rating: 2}))

	require.NoError(t, db.Users().Delete(ctx, owner.ID))

	total, err := db.Books().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}
