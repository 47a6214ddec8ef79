package secret

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// EnvStore resolves secrets from environment variables. Keys are upper-cased
// and prefixed, so "news_db" reads SITEPAGES_SECRET_NEWS_DB. Values set at
// runtime shadow the environment for the life of the process.
type EnvStore struct {
	prefix string
	mu     sync.RWMutex
	values map[string][]byte
}

// NewEnvStore creates an EnvStore. An empty prefix uses "SITEPAGES_SECRET_".
func NewEnvStore(prefix string) *EnvStore {
	if prefix == "" {
		prefix = "SITEPAGES_SECRET_"
	}
	return &EnvStore{prefix: prefix, values: make(map[string][]byte)}
}

func (s *EnvStore) envName(key string) string {
	name := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(key))
	return s.prefix + name
}

func (s *EnvStore) Set(key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("secret key is required")
	}
	s.mu.Lock()
	s.values[key] = append([]byte(nil), value...)
	s.mu.Unlock()
	return nil
}

func (s *EnvStore) Get(key string) ([]byte, error) {
	if key == "" {
		return []byte{}, nil
	}
	s.mu.RLock()
	v, ok := s.values[key]
	s.mu.RUnlock()
	if ok {
		return append([]byte(nil), v...), nil
	}
	if env, ok := os.LookupEnv(s.envName(key)); ok {
		return []byte(env), nil
	}
	return []byte{}, nil
}

func (s *EnvStore) Delete(key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}
