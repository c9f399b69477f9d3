package account

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,TicketCache,AuditPublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"gangland/internal/account/mocks"
	"gangland/internal/audit"
	"gangland/internal/identity"
	"gangland/internal/soap"
	"gangland/internal/user"
	"gangland/pkg/platform/sentinel"
)

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	store   *mocks.MockStore
	cache   *mocks.MockTicketCache
	auditor *mocks.MockAuditPublisher
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

var testDefaults = Defaults{
	Inventory: []byte(`{"inventory":{}}`),
	Save:      []byte(`{"data":{"AccountXPLevel":1}}`),
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.cache = mocks.NewMockTicketCache(s.ctrl)
	s.auditor = mocks.NewMockAuditPublisher(s.ctrl)
	s.service = New(s.store, testDefaults,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithTicketCache(s.cache, time.Hour),
		WithAuditPublisher(s.auditor),
	)
}

func lookupArgs(title, ticket string) soap.Args {
	args := soap.Args{}
	args.Set("title", title)
	args.Set("uniqueId", "unique-1")
	args.Set("consoleTicket", ticket)
	args.Set("consoleId", "76561198000000000")
	args.Set("ip", "203.0.113.7")
	return args
}

func (s *ServiceSuite) TestLookupWbidCreatesUser() {
	ctx := context.Background()
	wantUUID := identity.DeriveString("abcdef")

	s.store.EXPECT().FindByConsoleID(ctx, "76561198000000000").Return(nil, sentinel.ErrNotFound)
	s.store.EXPECT().Insert(ctx, &user.User{
		UUID:          wantUUID,
		Inventory:     `{"inventory":{}}`,
		Data:          `{"data":{"AccountXPLevel":1}}`,
		ConsoleID:     "76561198000000000",
		ConsoleTicket: "abcdef",
		IP:            "203.0.113.7",
	}).Return(nil)
	s.cache.EXPECT().Put(ctx, "abcdef", wantUUID, time.Hour).Return(nil)
	s.auditor.EXPECT().Emit(ctx, gomock.Any()).Do(func(_ context.Context, e audit.Event) {
		s.Equal(audit.ActionUserLinked, e.Action)
		s.Equal("created", e.Detail["change"])
	})

	result, err := s.service.LookupWbid(ctx, lookupArgs(LinkTitle, "ab/c+def"))
	s.Require().NoError(err)
	s.Empty(result)
}

func (s *ServiceSuite) TestLookupWbidUpdatesExistingUser() {
	ctx := context.Background()
	wantUUID := identity.DeriveString("newticket")

	s.store.EXPECT().FindByConsoleID(ctx, "76561198000000000").Return(&user.User{UUID: "old"}, nil)
	s.store.EXPECT().UpdateByConsoleID(ctx, "76561198000000000", "newticket", wantUUID, "203.0.113.7").Return(nil)
	s.cache.EXPECT().Put(ctx, "newticket", wantUUID, time.Hour).Return(errors.New("redis down"))
	s.auditor.EXPECT().Emit(ctx, gomock.Any())

	result, err := s.service.LookupWbid(ctx, lookupArgs(LinkTitle, "new+ticket"))
	s.Require().NoError(err, "cache failures do not fail the link")
	s.Empty(result)
}

func (s *ServiceSuite) TestLookupWbidIgnoresOtherTitles() {
	result, err := s.service.LookupWbid(context.Background(), lookupArgs("OTHER", "t"))
	s.Require().NoError(err)
	s.Empty(result)
}

func (s *ServiceSuite) TestLookupWbidRequiresAllIdentityArgs() {
	for _, missing := range []string{"uniqueId", "consoleTicket", "consoleId"} {
		args := lookupArgs(LinkTitle, "t")
		args[missing] = nil
		result, err := s.service.LookupWbid(context.Background(), args)
		s.Require().NoError(err)
		s.Empty(result, missing)
	}
}

func (s *ServiceSuite) TestLookupWbidSurfacesStoreErrors() {
	ctx := context.Background()
	s.store.EXPECT().FindByConsoleID(ctx, gomock.Any()).Return(nil, errors.New("database is locked"))

	_, err := s.service.LookupWbid(ctx, lookupArgs(LinkTitle, "t"))
	s.Require().Error(err)
	s.Contains(err.Error(), "database is locked")
}

func (s *ServiceSuite) TestLookupWbidSurfacesInsertConflict() {
	ctx := context.Background()
	s.store.EXPECT().FindByConsoleID(ctx, gomock.Any()).Return(nil, sentinel.ErrNotFound)
	s.store.EXPECT().Insert(ctx, gomock.Any()).Return(sentinel.ErrConflict)

	_, err := s.service.LookupWbid(ctx, lookupArgs(LinkTitle, "t"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *ServiceSuite) TestGetSubscriptionInformation() {
	args := soap.Args{}
	args.Set("consoleId", "76561198000000000")

	first, err := s.service.GetSubscriptionInformation(context.Background(), args)
	s.Require().NoError(err)
	second, err := s.service.GetSubscriptionInformation(context.Background(), args)
	s.Require().NoError(err)
	s.Equal(first, second)

	v, ok := first.Get("GetSubscriptionInformationResult")
	s.Require().True(ok)
	result := v.(soap.Map)
	wbid, _ := result.Get("WbidAccountId")
	s.Equal(soap.Text(identity.DeriveString("76561198000000000:accountid_sub")), wbid)
	entitlements, _ := result.Get("Entitlements")
	s.Equal(soap.List{}, entitlements)
}

func (s *ServiceSuite) TestGetSubscriptionInformationWithoutConsole() {
	result, err := s.service.GetSubscriptionInformation(context.Background(), soap.Args{})
	s.Require().NoError(err)
	s.Equal(soap.Map{{Name: "Error", Value: soap.Text("Missing consoleId")}}, result)
}

func (s *ServiceSuite) TestMethodsPolicyTable() {
	methods := s.service.Methods()
	s.Len(methods, 10)
	for _, m := range methods {
		s.Equal(m.Name == "GetSubscriptionInformation", m.EmptyResultIsFault, m.Name)
	}
	registry, err := soap.NewRegistry(methods...)
	s.Require().NoError(err)
	_, ok := registry.Lookup("StartWBPasswordResetFromConsole")
	s.True(ok)
}

func (s *ServiceSuite) TestNormalizeTicket() {
	s.Equal("abc", NormalizeTicket("a/b+c"))
	s.Equal("a_b|c-d", NormalizeTicket("a_b|c-d"), "token endpoint characters are kept here")
}
