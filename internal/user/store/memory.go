package store

import (
	"context"
	"fmt"
	"sync"

	"gangland/internal/user"
	"gangland/pkg/platform/sentinel"
)

// InMemoryStore keeps users in insertion order. Lookups scan, as the SQL store
// returns the first matching row.
type InMemoryStore struct {
	mu    sync.RWMutex
	users []user.User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) find(match func(user.User) bool, what string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, fmt.Errorf("user by %s: %w", what, sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindByConsoleID(_ context.Context, consoleID string) (*user.User, error) {
	return s.find(func(u user.User) bool { return u.ConsoleID == consoleID }, "consoleid")
}

func (s *InMemoryStore) FindByTicket(_ context.Context, ticket string) (*user.User, error) {
	return s.find(func(u user.User) bool { return u.ConsoleTicket == ticket }, "consoleticket")
}

func (s *InMemoryStore) FindByIP(_ context.Context, ip string) (*user.User, error) {
	return s.find(func(u user.User) bool { return u.IP == ip }, "ip")
}

func (s *InMemoryStore) FindByUUID(_ context.Context, uuid string) (*user.User, error) {
	return s.find(func(u user.User) bool { return u.UUID == uuid }, "uuid")
}

func (s *InMemoryStore) Insert(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.UUID == u.UUID {
			return fmt.Errorf("insert user %s: %w", u.UUID, sentinel.ErrConflict)
		}
	}
	s.users = append(s.users, *u)
	return nil
}

func (s *InMemoryStore) UpdateByConsoleID(_ context.Context, consoleID, ticket, uuid, ip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.UUID == uuid && existing.ConsoleID != consoleID {
			return fmt.Errorf("update user for console %s: %w", consoleID, sentinel.ErrConflict)
		}
	}
	updated := 0
	for i := range s.users {
		if s.users[i].ConsoleID == consoleID {
			s.users[i].ConsoleTicket = ticket
			s.users[i].UUID = uuid
			s.users[i].IP = ip
			updated++
		}
	}
	if updated == 0 {
		return fmt.Errorf("console %s: %w", consoleID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *InMemoryStore) UpdateInventory(_ context.Context, uuid, inventory string) error {
	return s.update(uuid, func(u *user.User) { u.Inventory = inventory })
}

func (s *InMemoryStore) UpdateData(_ context.Context, uuid, data string) error {
	return s.update(uuid, func(u *user.User) { u.Data = data })
}

func (s *InMemoryStore) update(uuid string, apply func(*user.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].UUID == uuid {
			apply(&s.users[i])
			return nil
		}
	}
	return fmt.Errorf("user %s: %w", uuid, sentinel.ErrNotFound)
}

func (s *InMemoryStore) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func (s *InMemoryStore) Close() error {
	return nil
}
