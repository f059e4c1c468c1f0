package session

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/services"
	"golang.org/x/oauth2"
)

type fakeExchanger struct {
	mu       sync.Mutex
	exchanges []string
	refreshes []string

	exchangeToken *services.Token
	refreshToken  *services.Token
	refreshErr    error
}

func (f *fakeExchanger) AuthURL(state string) string { return "https://auth.example/" + state }

func (f *fakeExchanger) Exchange(ctx context.Context, code string) (*services.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchanges = append(f.exchanges, code)
	return f.exchangeToken, nil
}

func (f *fakeExchanger) Refresh(ctx context.Context, refreshToken string) (*services.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes = append(f.refreshes, refreshToken)
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshToken, nil
}

type fakeAuthorizer struct {
	mu    sync.Mutex
	calls int
	code  string
	err   error
}

func (f *fakeAuthorizer) Authorize(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.code, f.err
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "refreshtoken.txt"))
}

func authError(status int) error {
	return &oauth2.RetrieveError{Response: &http.Response{StatusCode: status}}
}

func TestManagerToken(t *testing.T) {
	t.Run("Blocks Until Credential Installed", func(t *testing.T) {
		m := NewManager(ManagerOpts{Store: newTestStore(t)})

		got := make(chan string, 1)
		go func() {
			token, err := m.Token(context.Background())
			if err != nil {
				t.Errorf("token failed: %v", err)
			}
			got <- token
		}()

		select {
		case token := <-got:
			t.Fatalf("token returned %q before install", token)
		case <-time.After(20 * time.Millisecond):
		}

		m.install(&services.Token{
			AccessToken: "access-1",
			Expiry:      time.Now().Add(time.Hour),
		})

		select {
		case token := <-got:
			if token != "access-1" {
				t.Errorf("expected %q, got %q", "access-1", token)
			}
		case <-time.After(time.Second):
			t.Fatal("token still blocked after install")
		}
	})

	t.Run("Context Cancellation Unblocks", func(t *testing.T) {
		m := NewManager(ManagerOpts{Store: newTestStore(t)})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := m.Token(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("Closed Gate Blocks Again", func(t *testing.T) {
		m := NewManager(ManagerOpts{Store: newTestStore(t)})
		m.install(&services.Token{AccessToken: "access-1", Expiry: time.Now().Add(time.Hour)})
		m.closeGate()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		if _, err := m.Token(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded while gate closed, got %v", err)
		}
	})
}

func TestManagerRun(t *testing.T) {
	t.Run("Grants When No Refresh Token Stored", func(t *testing.T) {
		exchange := &fakeExchanger{
			exchangeToken: &services.Token{
				AccessToken:  "access-1",
				RefreshToken: "refresh-1",
				Expiry:       time.Now().Add(time.Hour),
			},
		}
		auth := &fakeAuthorizer{code: "auth-code"}
		store := newTestStore(t)

		m := NewManager(ManagerOpts{Exchange: exchange, Authorizer: auth, Store: store})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- m.Run(ctx) }()

		tctx, tcancel := context.WithTimeout(context.Background(), time.Second)
		defer tcancel()
		token, err := m.Token(tctx)
		if err != nil {
			t.Fatalf("token failed: %v", err)
		}
		if token != "access-1" {
			t.Errorf("expected %q, got %q", "access-1", token)
		}

		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}

		exchange.mu.Lock()
		defer exchange.mu.Unlock()
		if len(exchange.exchanges) != 1 || exchange.exchanges[0] != "auth-code" {
			t.Errorf("unexpected exchanges %v", exchange.exchanges)
		}
		if len(exchange.refreshes) != 0 {
			t.Errorf("unexpected refresh calls %v", exchange.refreshes)
		}

		if persisted, _ := store.Load(); persisted != "refresh-1" {
			t.Errorf("expected refresh token persisted, got %q", persisted)
		}
	})

	t.Run("Refreshes When Token Stored", func(t *testing.T) {
		exchange := &fakeExchanger{
			refreshToken: &services.Token{
				AccessToken: "access-2",
				Expiry:      time.Now().Add(time.Hour),
			},
		}
		auth := &fakeAuthorizer{code: "auth-code"}
		store := newTestStore(t)
		if err := store.Save("stored-refresh"); err != nil {
			t.Fatal(err)
		}

		m := NewManager(ManagerOpts{Exchange: exchange, Authorizer: auth, Store: store})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go m.Run(ctx)

		tctx, tcancel := context.WithTimeout(context.Background(), time.Second)
		defer tcancel()
		if token, err := m.Token(tctx); err != nil || token != "access-2" {
			t.Fatalf("expected access-2, got %q err %v", token, err)
		}

		auth.mu.Lock()
		calls := auth.calls
		auth.mu.Unlock()
		if calls != 0 {
			t.Errorf("expected no authorization flow, got %d calls", calls)
		}

		exchange.mu.Lock()
		defer exchange.mu.Unlock()
		if len(exchange.refreshes) != 1 || exchange.refreshes[0] != "stored-refresh" {
			t.Errorf("unexpected refresh calls %v", exchange.refreshes)
		}
	})

	t.Run("Rejected Refresh Falls Back To Grant", func(t *testing.T) {
		exchange := &fakeExchanger{
			refreshErr: authError(http.StatusBadRequest),
			exchangeToken: &services.Token{
				AccessToken:  "access-3",
				RefreshToken: "refresh-3",
				Expiry:       time.Now().Add(time.Hour),
			},
		}
		auth := &fakeAuthorizer{code: "auth-code"}
		store := newTestStore(t)
		if err := store.Save("revoked-refresh"); err != nil {
			t.Fatal(err)
		}

		m := NewManager(ManagerOpts{Exchange: exchange, Authorizer: auth, Store: store})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go m.Run(ctx)

		tctx, tcancel := context.WithTimeout(context.Background(), time.Second)
		defer tcancel()
		if token, err := m.Token(tctx); err != nil || token != "access-3" {
			t.Fatalf("expected access-3, got %q err %v", token, err)
		}

		auth.mu.Lock()
		calls := auth.calls
		auth.mu.Unlock()
		if calls != 1 {
			t.Errorf("expected one authorization flow, got %d", calls)
		}
	})

	t.Run("Renews At Expiry Minus Margin", func(t *testing.T) {
		exchange := &fakeExchanger{
			refreshToken: &services.Token{
				AccessToken: "short-lived",
				Expiry:      time.Now().Add(70 * time.Millisecond),
			},
		}
		store := newTestStore(t)
		if err := store.Save("stored-refresh"); err != nil {
			t.Fatal(err)
		}

		m := NewManager(ManagerOpts{
			Exchange:      exchange,
			Store:         store,
			RenewalMargin: 20 * time.Millisecond,
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go m.Run(ctx)

		deadline := time.Now().Add(time.Second)
		for time.Now().Before(deadline) {
			exchange.mu.Lock()
			n := len(exchange.refreshes)
			exchange.mu.Unlock()
			if n >= 2 {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
		t.Fatal("credential was never renewed")
	})
}

func TestManagerInstall(t *testing.T) {
	t.Run("Empty Refresh Token Keeps Previous", func(t *testing.T) {
		store := newTestStore(t)
		m := NewManager(ManagerOpts{Store: store})

		m.install(&services.Token{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			Expiry:       time.Now().Add(time.Hour),
		})
		m.install(&services.Token{
			AccessToken: "access-2",
			Expiry:      time.Now().Add(time.Hour),
		})

		m.mu.Lock()
		refreshToken := m.refreshToken
		m.mu.Unlock()
		if refreshToken != "refresh-1" {
			t.Errorf("expected retained refresh token, got %q", refreshToken)
		}

		if persisted, _ := store.Load(); persisted != "refresh-1" {
			t.Errorf("expected persisted refresh-1, got %q", persisted)
		}
	})
}
