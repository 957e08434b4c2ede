package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/inkwellapp/inkwell/internal/backend"
)

type mockAccounts struct {
	createAccount      func(ctx context.Context, email, password, name string) (*backend.Account, error)
	createEmailSession func(ctx context.Context, email, password string) (*backend.SessionToken, error)
	getAccount         func(ctx context.Context, session string) (*backend.Account, error)
	deleteSession      func(ctx context.Context, session string) error
}

func (m *mockAccounts) CreateAccount(ctx context.Context, email, password, name string) (*backend.Account, error) {
	if m.createAccount != nil {
		return m.createAccount(ctx, email, password, name)
	}
	return nil, errors.New("unexpected CreateAccount call")
}

func (m *mockAccounts) CreateEmailSession(ctx context.Context, email, password string) (*backend.SessionToken, error) {
	if m.createEmailSession != nil {
		return m.createEmailSession(ctx, email, password)
	}
	return nil, errors.New("unexpected CreateEmailSession call")
}

func (m *mockAccounts) GetAccount(ctx context.Context, session string) (*backend.Account, error) {
	if m.getAccount != nil {
		return m.getAccount(ctx, session)
	}
	return nil, errors.New("unexpected GetAccount call")
}

func (m *mockAccounts) DeleteSession(ctx context.Context, session string) error {
	if m.deleteSession != nil {
		return m.deleteSession(ctx, session)
	}
	return errors.New("unexpected DeleteSession call")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ada() *backend.Account {
	return &backend.Account{ID: "u1", Name: "Ada", Email: "ada@example.com"}
}

func TestManager_Resolve(t *testing.T) {
	t.Run("empty token is anonymous", func(t *testing.T) {
		m := NewManager(&mockAccounts{}, nil, testLogger())
		s, err := m.Resolve(context.Background(), "")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if s.Authenticated {
			t.Error("empty token resolved as authenticated")
		}
	})

	t.Run("caches the result", func(t *testing.T) {
		var calls int32
		accounts := &mockAccounts{
			getAccount: func(context.Context, string) (*backend.Account, error) {
				atomic.AddInt32(&calls, 1)
				return ada(), nil
			},
		}
		m := NewManager(accounts, nil, testLogger())

		for i := 0; i < 3; i++ {
			s, err := m.Resolve(context.Background(), "tok")
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if !s.Authenticated || s.User.ID != "u1" {
				t.Errorf("got %+v", s)
			}
		}
		if got := atomic.LoadInt32(&calls); got != 1 {
			t.Errorf("GetAccount called %d times, want 1", got)
		}
	})

	t.Run("missing scope means anonymous, not error", func(t *testing.T) {
		accounts := &mockAccounts{
			getAccount: func(context.Context, string) (*backend.Account, error) {
				return nil, &backend.Error{Kind: backend.KindMissingScope, Status: 401}
			},
		}
		m := NewManager(accounts, nil, testLogger())
		s, err := m.Resolve(context.Background(), "guest-tok")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if s.Authenticated {
			t.Error("guest resolved as authenticated")
		}
	})

	t.Run("concurrent resolves share one remote call", func(t *testing.T) {
		var calls int32
		accounts := &mockAccounts{
			getAccount: func(context.Context, string) (*backend.Account, error) {
				atomic.AddInt32(&calls, 1)
				time.Sleep(50 * time.Millisecond)
				return ada(), nil
			},
		}
		m := NewManager(accounts, nil, testLogger())

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s, err := m.Resolve(context.Background(), "tok")
				if err != nil {
					t.Errorf("Resolve: %v", err)
				}
				if !s.Authenticated {
					t.Error("expected authenticated session")
				}
			}()
		}
		wg.Wait()
		if got := atomic.LoadInt32(&calls); got != 1 {
			t.Errorf("GetAccount called %d times, want 1", got)
		}
	})
}

func TestManager_Login(t *testing.T) {
	t.Run("already authenticated issues no new session", func(t *testing.T) {
		accounts := &mockAccounts{
			getAccount: func(context.Context, string) (*backend.Account, error) { return ada(), nil },
			createEmailSession: func(context.Context, string, string) (*backend.SessionToken, error) {
				t.Error("CreateEmailSession should not be called")
				return nil, errors.New("no")
			},
		}
		m := NewManager(accounts, nil, testLogger())

		s, token, err := m.Login(context.Background(), "existing-tok", "ada@example.com", "password1")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if token != "existing-tok" {
			t.Errorf("token = %q", token)
		}
		if !s.Authenticated || s.User.Email != "ada@example.com" {
			t.Errorf("got %+v", s)
		}
	})

	t.Run("fresh login issues a session", func(t *testing.T) {
		accounts := &mockAccounts{
			createEmailSession: func(_ context.Context, email, password string) (*backend.SessionToken, error) {
				if email != "ada@example.com" || password != "password1" {
					t.Errorf("got email=%q password=%q", email, password)
				}
				return &backend.SessionToken{ID: "s1", UserID: "u1", Secret: "new-secret"}, nil
			},
			getAccount: func(context.Context, string) (*backend.Account, error) { return ada(), nil },
		}
		m := NewManager(accounts, nil, testLogger())

		s, token, err := m.Login(context.Background(), "", "ada@example.com", "password1")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if token != "new-secret" {
			t.Errorf("token = %q", token)
		}
		if !s.Authenticated {
			t.Error("expected authenticated session")
		}
	})

	t.Run("session already active falls back to current user", func(t *testing.T) {
		accounts := &mockAccounts{
			createEmailSession: func(context.Context, string, string) (*backend.SessionToken, error) {
				return nil, &backend.Error{Kind: backend.KindSessionActive, Status: 401}
			},
			getAccount: func(context.Context, string) (*backend.Account, error) { return ada(), nil },
		}
		m := NewManager(accounts, nil, testLogger())

		s, token, err := m.Login(context.Background(), "tok", "ada@example.com", "password1")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if token != "tok" {
			t.Errorf("token = %q", token)
		}
		if !s.Authenticated {
			t.Error("expected authenticated session")
		}
	})

	t.Run("invalid credentials propagate", func(t *testing.T) {
		wantErr := &backend.Error{Kind: backend.KindInvalidCredentials, Status: 401, Message: "Invalid credentials"}
		accounts := &mockAccounts{
			createEmailSession: func(context.Context, string, string) (*backend.SessionToken, error) {
				return nil, wantErr
			},
		}
		m := NewManager(accounts, nil, testLogger())

		_, _, err := m.Login(context.Background(), "", "ada@example.com", "wrong")
		if !backend.IsKind(err, backend.KindInvalidCredentials) {
			t.Errorf("got err %v", err)
		}
	})
}

func TestManager_Register(t *testing.T) {
	t.Run("creates account then logs in", func(t *testing.T) {
		created := false
		accounts := &mockAccounts{
			createAccount: func(_ context.Context, email, _, name string) (*backend.Account, error) {
				created = true
				if email != "ada@example.com" || name != "Ada" {
					t.Errorf("got email=%q name=%q", email, name)
				}
				return ada(), nil
			},
			createEmailSession: func(context.Context, string, string) (*backend.SessionToken, error) {
				return &backend.SessionToken{Secret: "secret"}, nil
			},
			getAccount: func(context.Context, string) (*backend.Account, error) { return ada(), nil },
		}
		m := NewManager(accounts, nil, testLogger())

		s, token, err := m.Register(context.Background(), "", "ada@example.com", "password1", "Ada")
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if !created {
			t.Error("CreateAccount was not called")
		}
		if token != "secret" || !s.Authenticated {
			t.Errorf("got token=%q session=%+v", token, s)
		}
	})

	t.Run("existing account falls back to login", func(t *testing.T) {
		accounts := &mockAccounts{
			createAccount: func(context.Context, string, string, string) (*backend.Account, error) {
				return nil, &backend.Error{Kind: backend.KindAlreadyExists, Status: 409}
			},
			createEmailSession: func(context.Context, string, string) (*backend.SessionToken, error) {
				return &backend.SessionToken{Secret: "secret"}, nil
			},
			getAccount: func(context.Context, string) (*backend.Account, error) { return ada(), nil },
		}
		m := NewManager(accounts, nil, testLogger())

		s, _, err := m.Register(context.Background(), "", "ada@example.com", "password1", "Ada")
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if !s.Authenticated {
			t.Error("expected authenticated session")
		}
	})

	t.Run("terminates an existing session first", func(t *testing.T) {
		deleted := false
		accounts := &mockAccounts{
			getAccount:    func(context.Context, string) (*backend.Account, error) { return ada(), nil },
			deleteSession: func(context.Context, string) error { deleted = true; return nil },
			createAccount: func(context.Context, string, string, string) (*backend.Account, error) {
				return ada(), nil
			},
			createEmailSession: func(context.Context, string, string) (*backend.SessionToken, error) {
				return &backend.SessionToken{Secret: "secret"}, nil
			},
		}
		m := NewManager(accounts, nil, testLogger())

		if _, _, err := m.Register(context.Background(), "old-tok", "new@example.com", "password1", "New"); err != nil {
			t.Fatalf("Register: %v", err)
		}
		if !deleted {
			t.Error("existing session was not terminated")
		}
	})
}

func TestManager_Logout(t *testing.T) {
	t.Run("empty token succeeds", func(t *testing.T) {
		m := NewManager(&mockAccounts{}, nil, testLogger())
		ok, err := m.Logout(context.Background(), "")
		if err != nil || !ok {
			t.Errorf("got ok=%v err=%v", ok, err)
		}
	})

	t.Run("missing remote session still succeeds", func(t *testing.T) {
		accounts := &mockAccounts{
			deleteSession: func(context.Context, string) error {
				return &backend.Error{Kind: backend.KindNotFound, Status: 404}
			},
		}
		m := NewManager(accounts, nil, testLogger())
		ok, err := m.Logout(context.Background(), "stale-tok")
		if err != nil || !ok {
			t.Errorf("got ok=%v err=%v", ok, err)
		}
	})

	t.Run("clears the cache", func(t *testing.T) {
		var calls int32
		accounts := &mockAccounts{
			getAccount: func(context.Context, string) (*backend.Account, error) {
				atomic.AddInt32(&calls, 1)
				return ada(), nil
			},
			deleteSession: func(context.Context, string) error { return nil },
		}
		m := NewManager(accounts, nil, testLogger())

		if _, err := m.Resolve(context.Background(), "tok"); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if _, err := m.Logout(context.Background(), "tok"); err != nil {
			t.Fatalf("Logout: %v", err)
		}
		if _, err := m.Resolve(context.Background(), "tok"); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got := atomic.LoadInt32(&calls); got != 2 {
			t.Errorf("GetAccount called %d times, want 2", got)
		}
	})
}

func TestManager_Subscribe(t *testing.T) {
	accounts := &mockAccounts{
		createEmailSession: func(context.Context, string, string) (*backend.SessionToken, error) {
			return &backend.SessionToken{Secret: "secret"}, nil
		},
		getAccount:    func(context.Context, string) (*backend.Account, error) { return ada(), nil },
		deleteSession: func(context.Context, string) error { return nil },
	}
	m := NewManager(accounts, nil, testLogger())

	var events []Event
	unsubscribe := m.Subscribe(func(e Event) { events = append(events, e) })

	if _, _, err := m.Login(context.Background(), "", "ada@example.com", "password1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := m.Logout(context.Background(), "secret"); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if !events[0].Session.Authenticated {
		t.Error("first event should be authenticated")
	}
	if events[1].Session.Authenticated {
		t.Error("second event should be anonymous")
	}

	unsubscribe()
	if _, err := m.Logout(context.Background(), "secret"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("received event after unsubscribe")
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Set(ctx, "tok", Session{Authenticated: true}, 10*time.Millisecond)
	if _, ok := store.Get(ctx, "tok"); !ok {
		t.Fatal("expected cache hit")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := store.Get(ctx, "tok"); ok {
		t.Error("entry should have expired")
	}
}
