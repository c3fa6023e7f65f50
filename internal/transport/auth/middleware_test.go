package auth

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"
)

type fakeTokenResolver struct {
	tokens map[string]*domain.AccessToken
}

func (f *fakeTokenResolver) FindTokenByPlainToken(ctx context.Context, plainToken string) (*domain.AccessToken, error) {
	if t, ok := f.tokens[plainToken]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func authedHandler(t *testing.T, gotUserID *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserID(r.Context())
		if err != nil {
			t.Errorf("GetUserID: %v", err)
		}
		*gotUserID = userID
		w.WriteHeader(http.StatusOK)
	})
}

func TestTokenMiddleware_BearerHeader(t *testing.T) {
	resolver := &fakeTokenResolver{tokens: map[string]*domain.AccessToken{
		"1|secret": {ID: 1, UserID: "user-1"},
	}}

	var gotUserID string
	handler := TokenMiddleware(resolver)(authedHandler(t, &gotUserID))

	r := httptest.NewRequest("GET", "/receivables", nil)
	r.Header.Set("Authorization", "Bearer 1|secret")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotUserID != "user-1" {
		t.Fatalf("userID = %q, want user-1", gotUserID)
	}
}

func TestTokenMiddleware_QueryTokenOnlyOnWebsocketPath(t *testing.T) {
	resolver := &fakeTokenResolver{tokens: map[string]*domain.AccessToken{
		"1|secret": {ID: 1, UserID: "user-1"},
	}}

	var gotUserID string
	handler := TokenMiddleware(resolver)(authedHandler(t, &gotUserID))

	// the websocket handshake cannot set headers, so /ws accepts ?token=
	r := httptest.NewRequest("GET", "/ws?token=1|secret", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("/ws with query token: status = %d, want 200", w.Code)
	}
	if gotUserID != "user-1" {
		t.Fatalf("userID = %q, want user-1", gotUserID)
	}

	// everywhere else a query token must not authenticate
	r = httptest.NewRequest("GET", "/receivables?token=1|secret", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("/receivables with query token: status = %d, want 401", w.Code)
	}
}

func TestTokenMiddleware_MissingOrUnknownToken(t *testing.T) {
	resolver := &fakeTokenResolver{tokens: map[string]*domain.AccessToken{}}

	handler := TokenMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	r := httptest.NewRequest("GET", "/receivables", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", w.Code)
	}

	r = httptest.NewRequest("GET", "/receivables", nil)
	r.Header.Set("Authorization", "Bearer 9|bogus")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown token: status = %d, want 401", w.Code)
	}
}
