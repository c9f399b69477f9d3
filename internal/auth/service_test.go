package auth

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks UserLookup,TicketCache,TokenIssuer,AuditPublisher,Metrics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"gangland/internal/audit"
	"gangland/internal/auth/mocks"
	"gangland/internal/identity"
	"gangland/internal/user"
	"gangland/pkg/platform/sentinel"
)

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	users   *mocks.MockUserLookup
	cache   *mocks.MockTicketCache
	issuer  *mocks.MockTokenIssuer
	auditor *mocks.MockAuditPublisher
	metrics *mocks.MockMetrics
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.users = mocks.NewMockUserLookup(s.ctrl)
	s.cache = mocks.NewMockTicketCache(s.ctrl)
	s.issuer = mocks.NewMockTokenIssuer(s.ctrl)
	s.auditor = mocks.NewMockAuditPublisher(s.ctrl)
	s.metrics = mocks.NewMockMetrics(s.ctrl)
	s.service = NewService(s.users, s.issuer,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithTicketCache(s.cache),
		WithAuditPublisher(s.auditor),
		WithMetrics(s.metrics),
	)
}

func (s *ServiceSuite) expectIssued(uuid, resolvedBy string) {
	s.issuer.EXPECT().Issue(gomock.Any(), uuid).Return(uuid, 1000000*time.Second, nil)
	s.metrics.EXPECT().IncrementTokensIssued(resolvedBy)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Do(func(_ context.Context, e audit.Event) {
		s.Equal(audit.ActionTokenIssued, e.Action)
		s.Equal(uuid, e.UserUUID)
		s.Equal(resolvedBy, e.Detail["resolved_by"])
	})
}

func (s *ServiceSuite) TestCacheHit() {
	s.cache.EXPECT().Get(gomock.Any(), "abcdef").Return("cached-uuid", nil)
	s.expectIssued("cached-uuid", ResolvedByCache)

	res, err := s.service.IssueToken(context.Background(), "ab_c|d-ef", "203.0.113.7")
	s.Require().NoError(err)
	s.Equal(&TokenResponse{
		TokenType:    "bearer",
		AccessToken:  "cached-uuid",
		ExpiresIn:    1000000,
		RefreshToken: "",
	}, res)
}

func (s *ServiceSuite) TestResolvedByTicket() {
	s.cache.EXPECT().Get(gomock.Any(), "abc").Return("", sentinel.ErrNotFound)
	s.users.EXPECT().FindByTicket(gomock.Any(), "abc").Return(&user.User{UUID: "ticket-uuid"}, nil)
	s.expectIssued("ticket-uuid", ResolvedByTicket)

	res, err := s.service.IssueToken(context.Background(), "abc", "203.0.113.7")
	s.Require().NoError(err)
	s.Equal("ticket-uuid", res.AccessToken)
}

func (s *ServiceSuite) TestCacheFailureFallsBackToStore() {
	s.cache.EXPECT().Get(gomock.Any(), "abc").Return("", sentinel.ErrUnavailable)
	s.users.EXPECT().FindByTicket(gomock.Any(), "abc").Return(&user.User{UUID: "ticket-uuid"}, nil)
	s.expectIssued("ticket-uuid", ResolvedByTicket)

	_, err := s.service.IssueToken(context.Background(), "abc", "203.0.113.7")
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestResolvedByIP() {
	s.cache.EXPECT().Get(gomock.Any(), "abc").Return("", sentinel.ErrNotFound)
	s.users.EXPECT().FindByTicket(gomock.Any(), "abc").Return(nil, sentinel.ErrNotFound)
	s.users.EXPECT().FindByIP(gomock.Any(), "203.0.113.7").Return(&user.User{UUID: "ip-uuid"}, nil)
	s.expectIssued("ip-uuid", ResolvedByIP)

	res, err := s.service.IssueToken(context.Background(), "abc", "203.0.113.7")
	s.Require().NoError(err)
	s.Equal("ip-uuid", res.AccessToken)
}

func (s *ServiceSuite) TestDerivedFromTicket() {
	derived := identity.DeriveString("abc")
	s.cache.EXPECT().Get(gomock.Any(), "abc").Return("", sentinel.ErrNotFound)
	s.users.EXPECT().FindByTicket(gomock.Any(), "abc").Return(nil, sentinel.ErrNotFound)
	s.users.EXPECT().FindByIP(gomock.Any(), "203.0.113.7").Return(nil, sentinel.ErrNotFound)
	s.expectIssued(derived, ResolvedByDerived)

	res, err := s.service.IssueToken(context.Background(), "a-b_c", "203.0.113.7")
	s.Require().NoError(err)
	s.Equal(derived, res.AccessToken)
}

func (s *ServiceSuite) TestNoIPSkipsIPLookup() {
	s.cache.EXPECT().Get(gomock.Any(), "abc").Return("", sentinel.ErrNotFound)
	s.users.EXPECT().FindByTicket(gomock.Any(), "abc").Return(nil, sentinel.ErrNotFound)
	s.expectIssued(identity.DeriveString("abc"), ResolvedByDerived)

	_, err := s.service.IssueToken(context.Background(), "abc", "")
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestStoreErrorsAreReturned() {
	s.cache.EXPECT().Get(gomock.Any(), "abc").Return("", sentinel.ErrNotFound)
	s.users.EXPECT().FindByTicket(gomock.Any(), "abc").Return(nil, errors.New("disk I/O error"))

	_, err := s.service.IssueToken(context.Background(), "abc", "203.0.113.7")
	s.Require().Error(err)
	s.Contains(err.Error(), "disk I/O error")
}

func (s *ServiceSuite) TestIssuerErrorsAreReturned() {
	s.cache.EXPECT().Get(gomock.Any(), "abc").Return("u", nil)
	s.issuer.EXPECT().Issue(gomock.Any(), "u").Return("", time.Duration(0), errors.New("sign failed"))

	_, err := s.service.IssueToken(context.Background(), "abc", "203.0.113.7")
	s.Require().ErrorContains(err, "sign failed")
}

func TestNormalizeTicket(t *testing.T) {
	for in, want := range map[string]string{
		"abc":         "abc",
		"a_b|c-d":     "abcd",
		"--__||":      "",
		"keeps/and+x": "keeps/and+x",
	} {
		if got := NormalizeTicket(in); got != want {
			t.Errorf("NormalizeTicket(%q) = %q, want %q", in, got, want)
		}
	}
}
