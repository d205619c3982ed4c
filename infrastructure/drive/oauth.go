package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// TokenStore keeps an OAuth token in a JSON file
type TokenStore struct {
	path string
}

// NewTokenStore creates a token store backed by path
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load reads the stored token
func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", s.path, err)
	}
	return token, nil
}

// Save writes the token with owner-only permissions, replacing any previous one
func (s *TokenStore) Save(token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// savingTokenSource persists every token that differs from the last one seen,
// so refreshed access tokens survive across runs
type savingTokenSource struct {
	mu    sync.Mutex
	base  oauth2.TokenSource
	store *TokenStore
	last  string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		s.last = token.AccessToken
		if err := s.store.Save(token); err != nil {
			return nil, err
		}
	}
	return token, nil
}

// OAuthOption is a functional option for the OAuth login flow
type OAuthOption func(*oauthFlow)

// WithAuthOutput sets where the login URL and progress are printed
func WithAuthOutput(w io.Writer) OAuthOption {
	return func(f *oauthFlow) {
		f.output = w
	}
}

type oauthFlow struct {
	config *oauth2.Config
	store  *TokenStore
	output io.Writer
}

// token returns a usable token source, running the browser login only when no
// stored token can be refreshed
func (f *oauthFlow) token(ctx context.Context) (oauth2.TokenSource, error) {
	if stored, err := f.store.Load(); err == nil {
		ts := f.config.TokenSource(ctx, stored)
		if _, err := ts.Token(); err == nil {
			return &savingTokenSource{base: ts, store: f.store, last: stored.AccessToken}, nil
		}
		fmt.Fprintln(f.output, "Stored Google token could not be refreshed; signing in again.")
	}

	token, err := f.login(ctx)
	if err != nil {
		return nil, err
	}
	if err := f.store.Save(token); err != nil {
		fmt.Fprintf(f.output, "Warning: couldn't save token: %v\n", err)
	}
	return &savingTokenSource{base: f.config.TokenSource(ctx, token), store: f.store, last: token.AccessToken}, nil
}

// login receives the authorization code on a loopback listener bound to a free port
func (f *oauthFlow) login(ctx context.Context) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start callback listener: %w", err)
	}

	cfg := *f.config
	cfg.RedirectURL = fmt.Sprintf("http://%s/callback", listener.Addr().String())
	state := uuid.NewString()

	codes := make(chan string, 1)
	errs := make(chan error, 1)
	server := &http.Server{Handler: callbackHandler(state, codes, errs)}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()
	defer server.Close()

	fmt.Fprintln(f.output, "Sign in to Google Drive by visiting:")
	fmt.Fprintln(f.output)
	fmt.Fprintln(f.output, cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))
	fmt.Fprintln(f.output)

	var code string
	select {
	case code = <-codes:
	case err := <-errs:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("unable to exchange auth code: %w", err)
	}
	fmt.Fprintln(f.output, "Authentication successful!")
	return token, nil
}

// callbackHandler accepts one redirect carrying the expected state
func callbackHandler(state string, codes chan<- string, errs chan<- error) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		if msg := q.Get("error"); msg != "" {
			http.Error(w, "authorization denied", http.StatusForbidden)
			select {
			case errs <- fmt.Errorf("authorization denied: %s", msg):
			default:
			}
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing authorization code", http.StatusBadRequest)
			return
		}
		select {
		case codes <- code:
		default:
		}
		fmt.Fprint(w, "Authorization complete. You can close this window.")
	})
	return mux
}

// NewClientWithOAuth creates a Google Drive client authenticated as a user.
// The token is read from and refreshed into tokenPath; the first run prints a
// sign-in URL and waits for the browser redirect.
func NewClientWithOAuth(ctx context.Context, credentialsPath, tokenPath string, opts ...OAuthOption) (*Client, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read OAuth credentials file: %w", err)
	}
	config, err := google.ConfigFromJSON(b, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse OAuth credentials: %w", err)
	}

	flow := &oauthFlow{config: config, store: NewTokenStore(tokenPath), output: os.Stderr}
	for _, opt := range opts {
		opt(flow)
	}

	ts, err := flow.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to get OAuth token: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %w", err)
	}
	return &Client{driveService: &GoogleDriveService{service: srv}}, nil
}
