package drive

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth", "token.json")
	store := NewTokenStore(path)

	if _, err := store.Load(); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error before save, got %v", err)
	}

	expiry := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	if err := store.Save(&oauth2.Token{AccessToken: "access", RefreshToken: "refresh", Expiry: expiry}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file permissions = %o, want 600", perm)
	}

	token, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if token.AccessToken != "access" || token.RefreshToken != "refresh" || !token.Expiry.Equal(expiry) {
		t.Errorf("unexpected token: %+v", token)
	}
}

func TestTokenStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokenStore(path).Load(); err == nil {
		t.Error("expected error for corrupt token file")
	}
}

type staticTokenSource struct {
	tokens []string
	calls  int
}

func (s *staticTokenSource) Token() (*oauth2.Token, error) {
	token := &oauth2.Token{AccessToken: s.tokens[s.calls]}
	s.calls++
	return token, nil
}

func TestSavingTokenSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewTokenStore(path)
	ts := &savingTokenSource{
		base:  &staticTokenSource{tokens: []string{"first", "first", "second"}},
		store: store,
		last:  "first",
	}

	for i := 0; i < 2; i++ {
		if _, err := ts.Token(); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected unchanged token not to be written")
	}

	if _, err := ts.Token(); err != nil {
		t.Fatal(err)
	}
	saved, err := store.Load()
	if err != nil {
		t.Fatalf("expected refreshed token to be saved: %v", err)
	}
	if saved.AccessToken != "second" {
		t.Errorf("saved token = %q, want second", saved.AccessToken)
	}
}

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCode   string
		wantErr    bool
	}{
		{name: "valid", query: "?state=abc&code=xyz", wantStatus: http.StatusOK, wantCode: "xyz"},
		{name: "state mismatch", query: "?state=evil&code=xyz", wantStatus: http.StatusBadRequest},
		{name: "missing code", query: "?state=abc", wantStatus: http.StatusBadRequest},
		{name: "denied", query: "?state=abc&error=access_denied", wantStatus: http.StatusForbidden, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes := make(chan string, 1)
			errs := make(chan error, 1)
			handler := callbackHandler("abc", codes, errs)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			select {
			case code := <-codes:
				if code != tt.wantCode {
					t.Errorf("code = %q, want %q", code, tt.wantCode)
				}
			default:
				if tt.wantCode != "" {
					t.Errorf("expected code %q to be delivered", tt.wantCode)
				}
			}

			select {
			case <-errs:
				if !tt.wantErr {
					t.Error("unexpected error delivered")
				}
			default:
				if tt.wantErr {
					t.Error("expected an error to be delivered")
				}
			}
		})
	}
}
