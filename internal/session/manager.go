package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// expirySkew treats a token as expired slightly before the upstream does.
const expirySkew = 30 * time.Second

var ErrNoToken = errors.New("session token unavailable")

// LoginFunc performs a credential login and returns a fresh bearer token.
// Extra fields (such as account identifiers) travel via oauth2.Token.WithExtra.
type LoginFunc func(ctx context.Context) (*oauth2.Token, error)

// Manager caches a password-login bearer token and logs in again when it
// expires or is invalidated. Concurrent callers share one login.
type Manager struct {
	provider string
	login    LoginFunc
	clock    clockwork.Clock

	group singleflight.Group

	mu    sync.Mutex
	token *oauth2.Token
}

func NewManager(provider string, login LoginFunc, clock clockwork.Clock) (*Manager, error) {
	if provider == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if login == nil {
		return nil, fmt.Errorf("login func is required")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Manager{provider: provider, login: login, clock: clock}, nil
}

// Token returns the cached token when still valid, otherwise logs in.
func (m *Manager) Token(ctx context.Context) (*oauth2.Token, error) {
	if token := m.cached(); token != nil {
		return token, nil
	}

	v, err, _ := m.group.Do("login", func() (any, error) {
		if token := m.cached(); token != nil {
			return token, nil
		}
		token, err := m.login(ctx)
		if err != nil {
			loginFailure.WithLabelValues(m.provider).Inc()
			tokenValid.WithLabelValues(m.provider).Set(0)
			return nil, err
		}
		if token == nil || token.AccessToken == "" {
			loginFailure.WithLabelValues(m.provider).Inc()
			tokenValid.WithLabelValues(m.provider).Set(0)
			return nil, ErrNoToken
		}

		m.mu.Lock()
		m.token = token
		m.mu.Unlock()

		loginSuccess.WithLabelValues(m.provider).Inc()
		tokenValid.WithLabelValues(m.provider).Set(1)
		return token, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*oauth2.Token), nil
}

// Invalidate drops the cached token so the next Token call logs in again.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.token = nil
	m.mu.Unlock()
	tokenValid.WithLabelValues(m.provider).Set(0)
}

// Valid reports whether a usable token is cached.
func (m *Manager) Valid() bool {
	return m.cached() != nil
}

func (m *Manager) cached() *oauth2.Token {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == nil || m.token.AccessToken == "" {
		return nil
	}
	if !m.token.Expiry.IsZero() && !m.clock.Now().Before(m.token.Expiry.Add(-expirySkew)) {
		return nil
	}
	return m.token
}
