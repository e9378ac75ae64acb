package integration__test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/notecove/notecove/internal/config"
	"github.com/notecove/notecove/internal/db"
	apphttp "github.com/notecove/notecove/internal/http"
	"github.com/notecove/notecove/internal/session"
)

func testConfig() config.Config {
	return config.Config{
		Env:             "test",
		Port:            0,
		SessionSecret:   "test-secret-key",
		SessionTTLHours: 1,
		SessionCookie:   "notecove_session",
	}
}

func setupTestRouter(t *testing.T) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")

	if dsn == "" {
		t.Skip("TEST_DB_DSN not set, skipping integration test")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)

	if err != nil {
		t.Fatalf("Failed to create pgx pool: %v", err)
	}

	t.Cleanup(pool.Close)

	if err := db.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router := apphttp.NewRouter(logger, pool, session.NewMemoryStore(), testConfig())

	return router, pool
}

func resetDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE notes, users
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

func doRequest(router http.Handler, method, path string, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, *http.Response) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w, w.Result()
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

func extractSessionCookie(t *testing.T, response *http.Response) *http.Cookie {
	t.Helper()

	for _, c := range response.Cookies() {
		if c.Name == "notecove_session" && c.Value != "" {
			return c
		}
	}

	t.Fatalf("session cookie not found in response")

	return nil
}

func registerAndLogin(t *testing.T, router http.Handler, username, email string) *http.Cookie {
	t.Helper()

	registerBody := `{"username":"` + username + `","fullName":"Test Person","email":"` + email + `","password":"password123"}`

	w, _ := doRequest(router, http.MethodPost, "/api/auth/register", registerBody)

	if w.Code != http.StatusOK {
		t.Fatalf("register got status %d, body=%s", w.Code, w.Body.String())
	}

	loginBody := `{"email":"` + email + `","password":"password123"}`

	w2, response := doRequest(router, http.MethodPost, "/api/auth/login", loginBody)

	if w2.Code != http.StatusOK {
		t.Fatalf("login got status %d, body=%s", w2.Code, w2.Body.String())
	}

	return extractSessionCookie(t, response)
}

type noteResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	User      struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

type apiErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestNotesIntegration_FullLifecycle(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)

	defer resetDB(t, pool)

	aliceCookie := registerAndLogin(t, router, "alice", "alice@example.com")

	// CREATE

	w, _ := doRequest(router, http.MethodPost, "/api/notes", `{"title":"Groceries","content":"milk, eggs"}`, aliceCookie)

	if w.Code != http.StatusOK {
		t.Fatalf("create got status %d, body=%s", w.Code, w.Body.String())
	}

	var created noteResponse
	mustReadJSON(t, w, &created)

	if created.ID == "" {
		t.Fatalf("create expected an id, got empty")
	}
	if created.User.Username != "alice" {
		t.Fatalf("create got owner %q, want alice", created.User.Username)
	}

	// LIST

	w2, _ := doRequest(router, http.MethodGet, "/api/notes", "", aliceCookie)

	if w2.Code != http.StatusOK {
		t.Fatalf("list got status %d, body=%s", w2.Code, w2.Body.String())
	}

	var list struct {
		Items []noteResponse `json:"items"`
		Count int            `json:"count"`
	}
	mustReadJSON(t, w2, &list)

	if list.Count != 1 || len(list.Items) != 1 {
		t.Fatalf("list expected exactly one note, got count=%d items=%d", list.Count, len(list.Items))
	}

	// GET by id

	w3, _ := doRequest(router, http.MethodGet, "/api/notes/"+created.ID, "", aliceCookie)

	if w3.Code != http.StatusOK {
		t.Fatalf("get got status %d, body=%s", w3.Code, w3.Body.String())
	}

	// UPDATE

	w4, _ := doRequest(router, http.MethodPut, "/api/notes/"+created.ID, `{"title":"Groceries v2","content":"milk"}`, aliceCookie)

	if w4.Code != http.StatusOK {
		t.Fatalf("update got status %d, body=%s", w4.Code, w4.Body.String())
	}

	var updated noteResponse
	mustReadJSON(t, w4, &updated)

	if updated.Title != "Groceries v2" {
		t.Fatalf("update got title %q, want %q", updated.Title, "Groceries v2")
	}

	// DELETE

	w5, _ := doRequest(router, http.MethodDelete, "/api/notes/"+created.ID, "", aliceCookie)

	if w5.Code != http.StatusOK {
		t.Fatalf("delete got status %d, body=%s", w5.Code, w5.Body.String())
	}

	// GET after delete

	w6, _ := doRequest(router, http.MethodGet, "/api/notes/"+created.ID, "", aliceCookie)

	if w6.Code != http.StatusNotFound {
		t.Fatalf("get(after delete) got status %d, want 404, body=%s", w6.Code, w6.Body.String())
	}
}

func TestNotesIntegration_OwnershipIsolation(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)

	defer resetDB(t, pool)

	aliceCookie := registerAndLogin(t, router, "alice", "alice@example.com")
	bobCookie := registerAndLogin(t, router, "bob", "bob@example.com")

	w, _ := doRequest(router, http.MethodPost, "/api/notes", `{"title":"Secret","content":"alice only"}`, aliceCookie)

	if w.Code != http.StatusOK {
		t.Fatalf("create got status %d, body=%s", w.Code, w.Body.String())
	}

	var created noteResponse
	mustReadJSON(t, w, &created)

	// Bob cannot read, update or delete Alice's note

	w2, _ := doRequest(router, http.MethodGet, "/api/notes/"+created.ID, "", bobCookie)

	if w2.Code != http.StatusForbidden {
		t.Fatalf("foreign get got status %d, want 403, body=%s", w2.Code, w2.Body.String())
	}

	w3, _ := doRequest(router, http.MethodPut, "/api/notes/"+created.ID, `{"title":"Hacked","content":"x"}`, bobCookie)

	if w3.Code != http.StatusForbidden {
		t.Fatalf("foreign update got status %d, want 403, body=%s", w3.Code, w3.Body.String())
	}

	w4, _ := doRequest(router, http.MethodDelete, "/api/notes/"+created.ID, "", bobCookie)

	if w4.Code != http.StatusForbidden {
		t.Fatalf("foreign delete got status %d, want 403, body=%s", w4.Code, w4.Body.String())
	}

	// Bob's list does not contain Alice's note

	w5, _ := doRequest(router, http.MethodGet, "/api/notes", "", bobCookie)

	if w5.Code != http.StatusOK {
		t.Fatalf("list got status %d, body=%s", w5.Code, w5.Body.String())
	}

	var list struct {
		Count int `json:"count"`
	}
	mustReadJSON(t, w5, &list)

	if list.Count != 0 {
		t.Fatalf("bob's list should be empty, got count=%d", list.Count)
	}
}

func TestNotesIntegration_LogoutRevokesSession(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)

	defer resetDB(t, pool)

	aliceCookie := registerAndLogin(t, router, "alice", "alice@example.com")

	w, _ := doRequest(router, http.MethodPost, "/api/auth/logout", "", aliceCookie)

	if w.Code != http.StatusOK {
		t.Fatalf("logout got status %d, body=%s", w.Code, w.Body.String())
	}

	// the old cookie still carries a signed token, but the session is gone

	w2, _ := doRequest(router, http.MethodGet, "/api/notes", "", aliceCookie)

	if w2.Code != http.StatusUnauthorized {
		t.Fatalf("list(after logout) got status %d, want 401, body=%s", w2.Code, w2.Body.String())
	}

	var e apiErrorResponse
	_ = json.Unmarshal(w2.Body.Bytes(), &e)

	if e.Error.Code != "unauthorized" {
		t.Fatalf("expected unauthorized, got %q", e.Error.Code)
	}
}

func TestNotesIntegration_DuplicateRegistration(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)

	defer resetDB(t, pool)

	body := `{"username":"alice","fullName":"Test Person","email":"alice@example.com","password":"password123"}`

	w, _ := doRequest(router, http.MethodPost, "/api/auth/register", body)

	if w.Code != http.StatusOK {
		t.Fatalf("register got status %d, body=%s", w.Code, w.Body.String())
	}

	// same username again

	w2, _ := doRequest(router, http.MethodPost, "/api/auth/register", `{"username":"alice","fullName":"Test Person","email":"other@example.com","password":"password123"}`)

	if w2.Code != http.StatusConflict {
		t.Fatalf("duplicate username got status %d, want 409, body=%s", w2.Code, w2.Body.String())
	}

	var e apiErrorResponse
	mustReadJSON(t, w2, &e)

	if e.Error.Code != "username_taken" {
		t.Fatalf("expected username_taken, got %q", e.Error.Code)
	}

	// same email again

	w3, _ := doRequest(router, http.MethodPost, "/api/auth/register", `{"username":"alice2","fullName":"Test Person","email":"alice@example.com","password":"password123"}`)

	if w3.Code != http.StatusConflict {
		t.Fatalf("duplicate email got status %d, want 409, body=%s", w3.Code, w3.Body.String())
	}

	var e2 apiErrorResponse
	mustReadJSON(t, w3, &e2)

	if e2.Error.Code != "email_taken" {
		t.Fatalf("expected email_taken, got %q", e2.Error.Code)
	}
}
