package session

import (
	"sync"

	"github.com/tripdeskhq/tripdesk/internal/model"
)

// Cache holds the profile for each live session, keyed by subject. It is the
// single injected source for session state; handlers read it instead of
// keeping their own copies.
type Cache struct {
	mu       sync.RWMutex
	profiles map[string]model.Profile
}

// NewCache constructs an empty cache.
func NewCache() *Cache {
	return &Cache{profiles: make(map[string]model.Profile)}
}

// Put stores or refreshes a profile.
func (c *Cache) Put(p model.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles[p.ID] = p
}

// Get returns a profile copy.
func (c *Cache) Get(id string) (model.Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.profiles[id]
	return p, ok
}

// Delete removes a session's profile, as on logout.
func (c *Cache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.profiles, id)
}
