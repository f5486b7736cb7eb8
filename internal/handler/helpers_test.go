package handler_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/msomdec/bookshelf/internal/domain"
	"github.com/msomdec/bookshelf/internal/handler"
	"github.com/msomdec/bookshelf/internal/repository/sqlite"
	"github.com/msomdec/bookshelf/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests"

type testEnv struct {
	db     *sqlite.DB
	tokens *service.TokenService
	auth   *service.AuthService
	books  *service.BookService
	srv    *httptest.Server
}

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestAuth(t *testing.T, users domain.UserRepository) (*service.AuthService, *service.TokenService) {
	t.Helper()
	tokens, err := service.NewTokenService(testJWTSecret)
	require.NoError(t, err)
	auth, err := service.NewAuthService(context.Background(), users, service.NewPasswordHasher(bcrypt.MinCost, 2), tokens)
	require.NoError(t, err)
	return auth, tokens
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	auth, tokens := newTestAuth(t, db.Users())
	blobs := db.MediaBlobs()
	books := service.NewBookService(db.Books(), blobs)
	accounts := service.NewAccountService(db.Users(), books)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, auth, accounts, books, blobs)
	srv := httptest.NewServer(handler.Wrap(mux, 50<<20))
	t.Cleanup(srv.Close)

	return &testEnv{db: db, tokens: tokens, auth: auth, books: books, srv: srv}
}

// do sends a JSON request and decodes a JSON object response, if any.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

// register creates an account through the API and returns its token.
func (e *testEnv) register(t *testing.T, username, email, password string) (string, map[string]any) {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "register: %v", body)
	return body["token"].(string), body["user"].(map[string]any)
}

func (e *testEnv) countUsers(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.SqlDB.QueryRow("SELECT COUNT(*) FROM users").Scan(&n))
	return n
}

func pngDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
