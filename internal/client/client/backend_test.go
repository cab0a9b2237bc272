package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/nfcgate-console/internal/common"
)

const testToken = "tok-123"

// fakeBackend is a minimal in-memory stand-in for the NFCGate admin API.
type fakeBackend struct {
	mu        sync.Mutex
	hasAdmins bool
	users     []adminDTO
	nextID    int64
	requests  []*http.Request
	router    chi.Router
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{hasAdmins: true, nextID: 1}
	b.users = []adminDTO{{ID: 1, Username: "root"}}
	b.nextID = 2

	r := chi.NewRouter()
	r.Use(b.record)
	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "server": "nfcgate"})
	})
	r.Get("/api/auth/status", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"has_admins": b.hasAdmins})
	})
	r.Post("/api/auth/login", b.login)
	r.Group(func(r chi.Router) {
		r.Use(requireToken)
		r.Get("/api/logs/tail", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"rows": []map[string]any{
				{"ts": "2024-01-01T00:00:00Z", "tag": "apdu", "origin": "reader", "session": 7, "args": map[string]any{"x": 1}},
			}})
		})
		r.Get("/api/admin/users", func(w http.ResponseWriter, _ *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			writeJSON(w, http.StatusOK, map[string]any{"users": b.users})
		})
		r.Delete("/api/admin/users/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if id == 1 {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": CodeCannotDeleteSelf})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
		})
	})
	b.router = r

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *fakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.Clone(context.Background()))
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *fakeBackend) lastRequest() *http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[len(b.requests)-1]
}

func (b *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": CodeBadJSON})
		return
	}
	b.mu.Lock()
	hasAdmins := b.hasAdmins
	b.mu.Unlock()
	if !hasAdmins {
		writeJSON(w, http.StatusConflict, map[string]any{"error": CodeNoAdmins})
		return
	}
	if in.Username != "root" || in.Password != "secret" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": CodeInvalidCredentials})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":        testToken,
		"expires_unix": 1700000000,
		"user":         map[string]any{"id": 1, "username": "root"},
	})
}

func requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(common.TokenHeaderName) != testToken {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// stubSession is a Session with a fixed token that counts invalidations.
type stubSession struct {
	mu          sync.Mutex
	token       string
	invalidated int
}

func (s *stubSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *stubSession) Invalidate(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated++
	s.token = ""
}

func (s *stubSession) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidated
}

func newTestClient(t *testing.T, url string, s Session) *HTTPClient {
	t.Helper()
	c, err := NewHTTPClient(url)
	require.NoError(t, err)
	if s != nil {
		c.SetSession(s)
	}
	return c
}
