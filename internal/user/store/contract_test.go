package store

import (
	"context"

	"github.com/stretchr/testify/suite"

	"gangland/internal/user"
	"gangland/pkg/platform/sentinel"
)

type userStore interface {
	FindByConsoleID(ctx context.Context, consoleID string) (*user.User, error)
	FindByTicket(ctx context.Context, ticket string) (*user.User, error)
	FindByIP(ctx context.Context, ip string) (*user.User, error)
	FindByUUID(ctx context.Context, uuid string) (*user.User, error)
	Insert(ctx context.Context, u *user.User) error
	UpdateByConsoleID(ctx context.Context, consoleID, ticket, uuid, ip string) error
	UpdateInventory(ctx context.Context, uuid, inventory string) error
	UpdateData(ctx context.Context, uuid, data string) error
	Count(ctx context.Context) (int, error)
	Close() error
}

var (
	_ userStore = (*SQLStore)(nil)
	_ userStore = (*InMemoryStore)(nil)
)

// contractSuite runs the same behavior checks against every implementation.
type contractSuite struct {
	suite.Suite
	newStore func() userStore
	store    userStore
}

func (s *contractSuite) SetupTest() {
	s.store = s.newStore()
}

func (s *contractSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func sampleUser() *user.User {
	return &user.User{
		UUID:          "7a1c7c4e-3c0b-5d5e-9a55-0b1b8f1c2d3e",
		Inventory:     `{"inventory":{}}`,
		Data:          `{"data":{"AccountXPLevel":1}}`,
		ConsoleID:     "76561198000000000",
		ConsoleTicket: "ticket",
		IP:            "203.0.113.7",
	}
}

func (s *contractSuite) TestInsertAndLookups() {
	ctx := context.Background()
	u := sampleUser()
	s.Require().NoError(s.store.Insert(ctx, u))

	byConsole, err := s.store.FindByConsoleID(ctx, u.ConsoleID)
	s.Require().NoError(err)
	s.Equal(u, byConsole)

	byTicket, err := s.store.FindByTicket(ctx, u.ConsoleTicket)
	s.Require().NoError(err)
	s.Equal(u.UUID, byTicket.UUID)

	byIP, err := s.store.FindByIP(ctx, u.IP)
	s.Require().NoError(err)
	s.Equal(u.UUID, byIP.UUID)

	byUUID, err := s.store.FindByUUID(ctx, u.UUID)
	s.Require().NoError(err)
	s.Equal(u.ConsoleID, byUUID.ConsoleID)

	n, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *contractSuite) TestNotFound() {
	ctx := context.Background()
	_, err := s.store.FindByConsoleID(ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindByTicket(ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindByIP(ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindByUUID(ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.UpdateByConsoleID(ctx, "missing", "t", "u", "ip"), sentinel.ErrNotFound)
	s.ErrorIs(s.store.UpdateInventory(ctx, "missing", "{}"), sentinel.ErrNotFound)
	s.ErrorIs(s.store.UpdateData(ctx, "missing", "{}"), sentinel.ErrNotFound)
}

func (s *contractSuite) TestDuplicateUUIDConflicts() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, sampleUser()))

	dup := sampleUser()
	dup.ConsoleID = "another-console"
	s.ErrorIs(s.store.Insert(ctx, dup), sentinel.ErrConflict)
}

func (s *contractSuite) TestUpdateByConsoleID() {
	ctx := context.Background()
	u := sampleUser()
	s.Require().NoError(s.store.Insert(ctx, u))

	s.Require().NoError(s.store.UpdateByConsoleID(ctx, u.ConsoleID, "new-ticket", "11111111-2222-5333-8444-555555555555", "198.51.100.1"))

	got, err := s.store.FindByConsoleID(ctx, u.ConsoleID)
	s.Require().NoError(err)
	s.Equal("new-ticket", got.ConsoleTicket)
	s.Equal("11111111-2222-5333-8444-555555555555", got.UUID)
	s.Equal("198.51.100.1", got.IP)
	s.Equal(u.Inventory, got.Inventory, "inventory is untouched")

	n, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *contractSuite) TestUpdateDocuments() {
	ctx := context.Background()
	u := sampleUser()
	u.Inventory = ""
	u.Data = ""
	s.Require().NoError(s.store.Insert(ctx, u))

	got, err := s.store.FindByUUID(ctx, u.UUID)
	s.Require().NoError(err)
	s.Empty(got.Inventory)
	s.Empty(got.Data)

	s.Require().NoError(s.store.UpdateInventory(ctx, u.UUID, `{"inventory":{"a":1}}`))
	s.Require().NoError(s.store.UpdateData(ctx, u.UUID, `{"data":{"AccountXPLevel":30}}`))

	got, err = s.store.FindByUUID(ctx, u.UUID)
	s.Require().NoError(err)
	s.JSONEq(`{"inventory":{"a":1}}`, got.Inventory)
	s.JSONEq(`{"data":{"AccountXPLevel":30}}`, got.Data)
}
