package credential

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

type TokenChecker interface {
	HasToken(ctx context.Context) (bool, error)
}

var (
	_ TokenChecker       = (*KeyringSource)(nil)
	_ oauth2.TokenSource = (*KeyringSource)(nil)
)

// KeyringSource serves the token saved by `fixit login`. Tokens are not
// refreshable; an expired one yields ErrTokenExpired.
type KeyringSource struct {
	store *Store
	now   func() time.Time

	mu    sync.Mutex
	token *oauth2.Token
}

func NewKeyringSource(store *Store) *KeyringSource {
	return &KeyringSource{store: store, now: time.Now}
}

func (s *KeyringSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil && (s.token.Expiry.IsZero() || s.now().Before(s.token.Expiry)) {
		return s.token, nil
	}

	raw, err := s.store.Token()
	if err != nil {
		return nil, err
	}

	tok := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	if id, err := ParseIdentity(raw); err == nil {
		if id.Expired(s.now()) {
			return nil, ErrTokenExpired
		}
		tok.Expiry = id.Expiry
	}

	s.token = tok
	return tok, nil
}

func (s *KeyringSource) HasToken(context.Context) (bool, error) {
	_, err := s.Token()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNoToken) || errors.Is(err, ErrTokenExpired) {
		return false, nil
	}
	return false, err
}

// Static returns a source for a token supplied out of band, such as FIXIT_TOKEN.
func Static(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

// Resolve returns the caller's identity: token claims first, then whatever
// was saved at login fills any gaps.
func Resolve(tokens oauth2.TokenSource, store *Store) (Identity, error) {
	var id Identity
	if tokens != nil {
		tok, err := tokens.Token()
		if err != nil {
			return Identity{}, err
		}
		if parsed, err := ParseIdentity(tok.AccessToken); err == nil {
			id = parsed
		}
	}
	if store != nil && (id.UserID == "" || id.Role == "" || id.Name == "") {
		saved, ok, err := store.Identity()
		if err != nil {
			return id, err
		}
		if ok {
			if id.UserID == "" {
				id.UserID = saved.UserID
			}
			if id.Role == "" {
				id.Role = saved.Role
			}
			if id.Name == "" {
				id.Name = saved.Name
			}
		}
	}
	return id, nil
}
