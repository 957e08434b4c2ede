package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/inkwellapp/inkwell/internal/backend"
)

// User is the authenticated account as the rest of the app sees it.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the reconciled "am I logged in" belief for one session token.
type Session struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

// Anonymous is the guest session.
var Anonymous = Session{}

// Accounts is the slice of the remote account API the manager needs.
type Accounts interface {
	CreateAccount(ctx context.Context, email, password, name string) (*backend.Account, error)
	CreateEmailSession(ctx context.Context, email, password string) (*backend.SessionToken, error)
	GetAccount(ctx context.Context, session string) (*backend.Account, error)
	DeleteSession(ctx context.Context, session string) error
}

// Event describes a session transition delivered to subscribers.
type Event struct {
	Token   string
	Session Session
}

// Manager reconciles the local session belief with the remote account API.
// It is an explicit dependency handed to whoever needs it, never a global.
type Manager struct {
	accounts Accounts
	cache    Store
	logger   *slog.Logger
	ttl      time.Duration

	mu          sync.Mutex
	inflight    map[string]*resolveCall
	subscribers map[int]func(Event)
	nextSubID   int
}

type resolveCall struct {
	done    chan struct{}
	session Session
	err     error
}

func NewManager(accounts Accounts, cache Store, logger *slog.Logger) *Manager {
	if cache == nil {
		cache = NewMemoryStore()
	}
	return &Manager{
		accounts:    accounts,
		cache:       cache,
		logger:      logger,
		ttl:         30 * time.Second,
		inflight:    make(map[string]*resolveCall),
		subscribers: make(map[int]func(Event)),
	}
}

// Subscribe registers fn for session transitions and returns an unsubscribe
// function. Callbacks run synchronously on the goroutine that caused the
// transition.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

func (m *Manager) notify(token string, s Session) {
	m.mu.Lock()
	subs := make([]func(Event), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.Unlock()
	for _, fn := range subs {
		fn(Event{Token: token, Session: s})
	}
}

// Resolve returns the authoritative session for token. The result is cached
// for a short window and concurrent resolves of the same token share one
// remote call. A guest token (missing scope, unauthorized, or no token at
// all) resolves to Anonymous without error.
func (m *Manager) Resolve(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Anonymous, nil
	}
	if cached, ok := m.cache.Get(ctx, token); ok {
		return cached, nil
	}

	m.mu.Lock()
	if call, ok := m.inflight[token]; ok {
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.session, call.err
		case <-ctx.Done():
			return Anonymous, ctx.Err()
		}
	}
	call := &resolveCall{done: make(chan struct{})}
	m.inflight[token] = call
	m.mu.Unlock()

	call.session, call.err = m.fetch(ctx, token)
	close(call.done)

	m.mu.Lock()
	delete(m.inflight, token)
	m.mu.Unlock()

	return call.session, call.err
}

func (m *Manager) fetch(ctx context.Context, token string) (Session, error) {
	account, err := m.accounts.GetAccount(ctx, token)
	if err != nil {
		switch backend.KindOf(err) {
		case backend.KindMissingScope, backend.KindUnauthorized:
			// Expected for guests, not an error.
			m.cache.Set(ctx, token, Anonymous, m.ttl)
			return Anonymous, nil
		}
		m.logger.Error("resolve session failed", "error", err)
		return Anonymous, err
	}
	s := sessionFor(account)
	m.cache.Set(ctx, token, s, m.ttl)
	return s, nil
}

// Login authenticates and returns the session plus the token to store in
// the cookie. If token already resolves to an authenticated session the
// current user is returned without creating a duplicate remote session.
// Unexpected errors propagate for display.
func (m *Manager) Login(ctx context.Context, token, email, password string) (Session, string, error) {
	if token != "" {
		current, err := m.Resolve(ctx, token)
		if err == nil && current.Authenticated {
			return current, token, nil
		}
	}

	issued, err := m.accounts.CreateEmailSession(ctx, email, password)
	if err != nil {
		if backend.IsKind(err, backend.KindSessionActive) && token != "" {
			// A session is already active remotely; fetch who it is
			// instead of erroring.
			return m.forceResolve(ctx, token)
		}
		return Anonymous, "", err
	}

	s, _, err := m.forceResolve(ctx, issued.Secret)
	if err != nil {
		return Anonymous, "", err
	}
	m.notify(issued.Secret, s)
	return s, issued.Secret, nil
}

// Register creates an account and immediately establishes a session for it.
// An existing session is terminated first so re-registration is safe, and a
// remote "already exists" falls back to a plain login.
func (m *Manager) Register(ctx context.Context, token, email, password, name string) (Session, string, error) {
	if token != "" {
		if current, err := m.Resolve(ctx, token); err == nil && current.Authenticated {
			if _, err := m.Logout(ctx, token); err != nil {
				return Anonymous, "", err
			}
		}
	}

	if _, err := m.accounts.CreateAccount(ctx, email, password, name); err != nil {
		if backend.IsKind(err, backend.KindAlreadyExists) {
			return m.Login(ctx, "", email, password)
		}
		return Anonymous, "", err
	}
	return m.Login(ctx, "", email, password)
}

// Logout deletes the remote session. A token with no remote session behind
// it counts as success; logging out is idempotent.
func (m *Manager) Logout(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return true, nil
	}
	m.cache.Delete(ctx, token)
	if err := m.accounts.DeleteSession(ctx, token); err != nil {
		switch backend.KindOf(err) {
		case backend.KindNotFound, backend.KindUnauthorized, backend.KindMissingScope:
			m.notify(token, Anonymous)
			return true, nil
		}
		m.logger.Error("logout failed", "error", err)
		return false, nil
	}
	m.notify(token, Anonymous)
	return true, nil
}

// forceResolve bypasses the cache, for use right after a session mutation.
func (m *Manager) forceResolve(ctx context.Context, token string) (Session, string, error) {
	m.cache.Delete(ctx, token)
	s, err := m.Resolve(ctx, token)
	if err != nil {
		return Anonymous, "", err
	}
	if !s.Authenticated {
		return Anonymous, "", errors.New("session did not authenticate")
	}
	return s, token, nil
}

func sessionFor(account *backend.Account) Session {
	return Session{
		Authenticated: true,
		User: &User{
			ID:    account.ID,
			Name:  account.Name,
			Email: account.Email,
		},
	}
}
