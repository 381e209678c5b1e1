package app

import (
	"errors"
	"sync"

	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrUserExists = errors.New("user already exists")

// Credentials maps usernames to passwords. Passwords are stored as given;
// hashing belongs to a hardening pass of this store.
type Credentials struct {
	mu    sync.RWMutex
	users map[domain.Identity]string
}

func NewCredentials() *Credentials {
	return &Credentials{users: make(map[domain.Identity]string)}
}

func (c *Credentials) Register(id domain.Identity, password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.users[id]; ok {
		return ErrUserExists
	}
	c.users[id] = password
	log.Info().Str("module", "app.credentials").Str("user", string(id)).Msg("user registered")
	return nil
}

// Check reports whether password matches the one registered for id.
func (c *Credentials) Check(id domain.Identity, password string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stored, ok := c.users[id]
	return ok && stored == password
}
