package handler

import (
	"net/http"

	"github.com/msomdec/bookshelf/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. media may be nil
// when images are served from an external bucket.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, accounts *service.AccountService, books *service.BookService, media MediaReader) {
	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.HandleFunc("GET /", HandleHome)

	authH := NewAuthHandler(auth, accounts)
	mux.HandleFunc("POST /api/auth/register", authH.HandleRegister)
	mux.HandleFunc("POST /api/auth/login", authH.HandleLogin)
	mux.Handle("GET /api/auth/me", RequireAuth(auth, authH.HandleMe))
	mux.Handle("DELETE /api/auth/me", RequireAuth(auth, authH.HandleDeleteMe))

	bookH := NewBookHandler(books)
	mux.Handle("POST /api/books", RequireAuth(auth, bookH.HandleCreate))
	mux.Handle("GET /api/books", RequireAuth(auth, bookH.HandleList))
	mux.Handle("GET /api/books/user", RequireAuth(auth, bookH.HandleListMine))
	mux.Handle("GET /api/books/{id}", RequireAuth(auth, bookH.HandleGet))
	mux.Handle("DELETE /api/books/{id}", RequireAuth(auth, bookH.HandleDelete))

	if media != nil {
		mux.HandleFunc("GET /api/media/{key...}", NewMediaHandler(media).HandleGet)
	}
}
