package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
	go_json "github.com/goccy/go-json"
)

const (
	serviceName = "fixit"
	keyToken    = "token"
	keyIdentity = "identity"
)

// OpenKeyring opens the OS keyring, falling back to an encrypted file
// under dir when no system backend is available.
func OpenKeyring(fileDir string) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("fixit-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Store keeps the bearer token and the identity returned at login.
type Store struct {
	ring keyring.Keyring
}

func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

func (s *Store) Save(token string, id Identity) error {
	if err := s.ring.Set(keyring.Item{Key: keyToken, Data: []byte(token), Label: "fixit bearer token"}); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	data, err := go_json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encoding identity: %w", err)
	}
	if err := s.ring.Set(keyring.Item{Key: keyIdentity, Data: data, Label: "fixit identity"}); err != nil {
		return fmt.Errorf("saving identity: %w", err)
	}
	return nil
}

func (s *Store) Token() (string, error) {
	item, err := s.ring.Get(keyToken)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("getting token: %w", err)
	}
	if len(item.Data) == 0 {
		return "", ErrNoToken
	}
	return string(item.Data), nil
}

// Identity returns the identity saved at login. ok is false when none was saved.
func (s *Store) Identity() (Identity, bool, error) {
	item, err := s.ring.Get(keyIdentity)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return Identity{}, false, nil
		}
		return Identity{}, false, fmt.Errorf("getting identity: %w", err)
	}
	var id Identity
	if err := go_json.Unmarshal(item.Data, &id); err != nil {
		return Identity{}, false, fmt.Errorf("decoding identity: %w", err)
	}
	return id, true, nil
}

// Clear removes everything saved at login. Missing entries are not an error.
func (s *Store) Clear() error {
	for _, key := range []string{keyToken, keyIdentity} {
		if err := s.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			return fmt.Errorf("deleting %s: %w", key, err)
		}
	}
	return nil
}
