package theme

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// DefaultKey is the storage key the preference lives under.
const DefaultKey = "theme"

// Store is a small key/value store for the persisted preference.
type Store interface {
	Load(key string) (string, bool)
	Save(key, value string) error
}

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Load(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStore) Save(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// cookieMaxAge keeps the preference for a year.
const cookieMaxAge = 365 * 24 * 60 * 60

// CookieStore persists the preference in a browser cookie. The cookie is
// readable by page scripts so the theme can be applied before first paint.
type CookieStore struct {
	c       *gin.Context
	written map[string]string
}

// NewCookieStore binds a store to the current request.
func NewCookieStore(c *gin.Context) *CookieStore {
	return &CookieStore{c: c, written: make(map[string]string)}
}

func (s *CookieStore) Load(key string) (string, bool) {
	if v, ok := s.written[key]; ok {
		return v, true
	}
	v, err := s.c.Cookie(key)
	if err != nil {
		return "", false
	}
	return v, true
}

func (s *CookieStore) Save(key, value string) error {
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(key, value, cookieMaxAge, "/", "", false, false)
	s.written[key] = value
	return nil
}
