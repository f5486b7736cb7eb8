package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/msomdec/bookshelf/internal/domain"
	"github.com/msomdec/bookshelf/internal/service"
)

// BookHandler serves the book review endpoints. Every route is protected.
type BookHandler struct {
	books *service.BookService
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(books *service.BookService) *BookHandler {
	return &BookHandler{books: books}
}

// HandleCreate posts a review.
// POST /api/books
// Request:  {"title":"...","caption":"...","rating":1-5,"image":"data:image/...;base64,..."}
func (h *BookHandler) HandleCreate(w http.ResponseWriter, r *http.Request, ac AuthorizationContext) {
	var req struct {
		Title   string `json:"title"`
		Caption string `json:"caption"`
		Rating  int    `json:"rating"`
		Image   string `json:"image"`
	}
	if err := readJSON(r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	book, err := h.books.Create(r.Context(), ac.Principal.ID, service.NewBook{
		Title:   req.Title,
		Caption: req.Caption,
		Rating:  req.Rating,
		Image:   req.Image,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBookDTO(book))
}

// HandleList returns the paginated feed, newest first.
// GET /api/books?page=1&limit=5
func (h *BookHandler) HandleList(w http.ResponseWriter, r *http.Request, _ AuthorizationContext) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.books.List(r.Context(), page, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, BookPageDTO{
		Books:       toBookDTOs(result.Books),
		CurrentPage: result.Page,
		TotalBooks:  result.Total,
		TotalPages:  result.TotalPages,
	})
}

// HandleListMine returns the caller's own books.
// GET /api/books/user
func (h *BookHandler) HandleListMine(w http.ResponseWriter, r *http.Request, ac AuthorizationContext) {
	books, err := h.books.ListByUser(r.Context(), ac.Principal.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookDTOs(books))
}

// HandleGet returns one book.
// GET /api/books/{id}
func (h *BookHandler) HandleGet(w http.ResponseWriter, r *http.Request, _ AuthorizationContext) {
	book, err := h.books.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Book not found")
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookDTO(book))
}

// HandleDelete removes one of the caller's books.
// DELETE /api/books/{id}
func (h *BookHandler) HandleDelete(w http.ResponseWriter, r *http.Request, ac AuthorizationContext) {
	err := h.books.Delete(r.Context(), ac.Principal.ID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Book not found")
			return
		}
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
