package sweetshop

import (
	"sync"

	"github.com/bytedance/sonic"
)

var _ Storage = &MemoryStorage{}

// MemoryStorage is an in-process Storage.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage returns a MemoryStorage seeded with values.
func NewMemoryStorage(values map[string]string) *MemoryStorage {
	s := &MemoryStorage{values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok && v != ""
}

func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[key] = value
	return nil
}

func (s *MemoryStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// StoredToken returns the persisted bearer token, if any.
func StoredToken(s Storage) (string, bool) {
	if s == nil {
		return "", false
	}
	return s.Get(TokenKey)
}

// StoredIdentity decodes the cached identity snapshot. A snapshot that
// cannot be decoded is treated as missing.
func StoredIdentity(s Storage) (*Identity, bool) {
	if s == nil {
		return nil, false
	}
	raw, ok := s.Get(IdentityKey)
	if !ok {
		return nil, false
	}
	identity := &Identity{}
	if err := sonic.Unmarshal([]byte(raw), identity); err != nil {
		return nil, false
	}
	return identity, true
}

func storeIdentity(s Storage, identity *Identity) error {
	raw, err := sonic.Marshal(identity)
	if err != nil {
		return err
	}
	return s.Set(IdentityKey, string(raw))
}

// ClearCredentials removes both the token and the identity snapshot.
func ClearCredentials(s Storage) error {
	if s == nil {
		return nil
	}
	tokenErr := s.Delete(TokenKey)
	identityErr := s.Delete(IdentityKey)
	if tokenErr != nil {
		return tokenErr
	}
	return identityErr
}
