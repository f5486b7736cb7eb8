package service_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/bookshelf/internal/domain"
	"github.com/msomdec/bookshelf/internal/service"
)

type memoryMedia struct {
	mu        sync.Mutex
	objects   map[string]string // key -> content type
	deleteErr error
}

func newMemoryMedia() *memoryMedia {
	return &memoryMedia{objects: make(map[string]string)}
}

func (m *memoryMedia) Put(_ context.Context, key, contentType string, _ []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = contentType
	return "https://cdn.example.com/" + key, nil
}

func (m *memoryMedia) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return m.deleteErr
}

func pngDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newTestBookService(t *testing.T) (*service.BookService, *memoryMedia, string, string) {
	t.Helper()
	db := newTestDB(t)
	ctx := context.Background()
	owner := &domain.User{Username: "owner", Email: "owner@example.com", PasswordHash: "h"}
	require.NoError(t, db.Users().Create(ctx, owner))
	other := &domain.User{Username: "other", Email: "other@example.com", PasswordHash: "h"}
	require.NoError(t, db.Users().Create(ctx, other))

	media := newMemoryMedia()
	return service.NewBookService(db.Books(), media), media, owner.ID, other.ID
}

func TestBookService_Create(t *testing.T) {
	books, media, ownerID, _ := newTestBookService(t)

	book, err := books.Create(context.Background(), ownerID, service.NewBook{
		Title: " Dune ", Caption: "Spice must flow", Rating: 5, Image: pngDataURI(t),
	})
	require.NoError(t, err)

	assert.Equal(t, "Dune", book.Title)
	assert.True(t, strings.HasPrefix(book.ImageKey, "books/"+ownerID+"/"))
	assert.True(t, strings.HasSuffix(book.ImageKey, ".png"))
	assert.Equal(t, "https://cdn.example.com/"+book.ImageKey, book.ImageURL)
	assert.Equal(t, "image/png", media.objects[book.ImageKey])
}

func TestBookService_Create_AcceptsBareBase64(t *testing.T) {
	books, _, ownerID, _ := newTestBookService(t)
	bare := strings.TrimPrefix(pngDataURI(t), "data:image/png;base64,")

	_, err := books.Create(context.Background(), ownerID, service.NewBook{
		Title: "Emma", Caption: "Matchmaking", Rating: 4, Image: bare,
	})
	require.NoError(t, err)
}

func TestBookService_Create_Validation(t *testing.T) {
	books, media, ownerID, _ := newTestBookService(t)
	img := pngDataURI(t)
	text := "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello world"))

	tests := []struct {
		name string
		in   service.NewBook
	}{
		{"missing title", service.NewBook{Caption: "c", Rating: 3, Image: img}},
		{"missing caption", service.NewBook{Title: "t", Rating: 3, Image: img}},
		{"missing image", service.NewBook{Title: "t", Caption: "c", Rating: 3}},
		{"missing rating", service.NewBook{Title: "t", Caption: "c", Image: img}},
		{"rating too high", service.NewBook{Title: "t", Caption: "c", Rating: 6, Image: img}},
		{"negative rating", service.NewBook{Title: "t", Caption: "c", Rating: -1, Image: img}},
		{"not base64", service.NewBook{Title: "t", Caption: "c", Rating: 3, Image: "data:image/png;base64,@@@"}},
		{"data uri without base64", service.NewBook{Title: "t", Caption: "c", Rating: 3, Image: "data:image/png,abc"}},
		{"not an image", service.NewBook{Title: "t", Caption: "c", Rating: 3, Image: text}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := books.Create(context.Background(), ownerID, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Empty(t, media.objects, "rejected input must not reach the media store")
}

func TestBookService_List(t *testing.T) {
	books, _, ownerID, otherID := newTestBookService(t)
	ctx := context.Background()
	img := pngDataURI(t)

	for range 6 {
		_, err := books.Create(ctx, ownerID, service.NewBook{Title: "t", Caption: "c", Rating: 3, Image: img})
		require.NoError(t, err)
	}
	_, err := books.Create(ctx, otherID, service.NewBook{Title: "t", Caption: "c", Rating: 3, Image: img})
	require.NoError(t, err)

	page, err := books.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 5, page.Limit)
	assert.Equal(t, 7, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Books, 5)

	page, err = books.List(ctx, 2, 5)
	require.NoError(t, err)
	assert.Len(t, page.Books, 2)

	page, err = books.List(ctx, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, 50, page.Limit)

	page, err = books.List(ctx, math.MaxInt, 5)
	require.NoError(t, err)
	assert.Empty(t, page.Books, "a huge page number is past the end, not wrapped to the start")
	assert.Positive(t, page.Page)
	assert.Equal(t, 7, page.Total)

	mine, err := books.ListByUser(ctx, otherID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestBookService_Delete(t *testing.T) {
	books, media, ownerID, otherID := newTestBookService(t)
	ctx := context.Background()

	book, err := books.Create(ctx, ownerID, service.NewBook{Title: "t", Caption: "c", Rating: 3, Image: pngDataURI(t)})
	require.NoError(t, err)

	got, err := books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, ownerID, got.UserID)

	assert.ErrorIs(t, books.Delete(ctx, otherID, book.ID), domain.ErrForbidden)
	assert.Contains(t, media.objects, book.ImageKey)

	require.NoError(t, books.Delete(ctx, ownerID, book.ID))
	assert.NotContains(t, media.objects, book.ImageKey)

	assert.ErrorIs(t, books.Delete(ctx, ownerID, book.ID), domain.ErrNotFound)
	_, err = books.Get(ctx, book.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookService_Delete_MediaFailureIsNotFatal(t *testing.T) {
	books, media, ownerID, _ := newTestBookService(t)
	ctx := context.Background()

	book, err := books.Create(ctx, ownerID, service.NewBook{Title: "t", Caption: "c", Rating: 3, Image: pngDataURI(t)})
	require.NoError(t, err)

	media.deleteErr = errors.New("bucket unavailable")
	require.NoError(t, books.Delete(ctx, ownerID, book.ID))
}
