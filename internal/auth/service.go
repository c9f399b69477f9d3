// Package auth issues access tokens for console tickets.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gangland/internal/audit"
	"gangland/internal/identity"
	"gangland/internal/user"
	"gangland/pkg/platform/sentinel"
	"gangland/pkg/requestcontext"
)

type UserLookup interface {
	FindByTicket(ctx context.Context, ticket string) (*user.User, error)
	FindByIP(ctx context.Context, ip string) (*user.User, error)
}

type TicketCache interface {
	Get(ctx context.Context, ticket string) (string, error)
}

// TokenIssuer turns a user uuid into an access token and its lifetime.
type TokenIssuer interface {
	Issue(ctx context.Context, userUUID string) (string, time.Duration, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

type Metrics interface {
	IncrementTokensIssued(resolvedBy string)
}

type Service struct {
	users   UserLookup
	issuer  TokenIssuer
	logger  *slog.Logger
	cache   TicketCache
	auditor AuditPublisher
	metrics Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTicketCache(cache TicketCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(users UserLookup, issuer TokenIssuer, opts ...Option) *Service {
	s := &Service{users: users, issuer: issuer, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeTicket strips the separators the client adds to tickets sent to
// /auth/token.
func NormalizeTicket(ticket string) string {
	return strings.NewReplacer("_", "", "|", "", "-", "").Replace(ticket)
}

// IssueToken resolves the user for ticket and issues a token for it.
func (s *Service) IssueToken(ctx context.Context, ticket, ip string) (*TokenResponse, error) {
	ticket = NormalizeTicket(ticket)

	uuid, resolvedBy, err := s.resolve(ctx, ticket, ip)
	if err != nil {
		return nil, err
	}

	accessToken, ttl, err := s.issuer.Issue(ctx, uuid)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "token issued",
		"uuid", uuid,
		"resolved_by", resolvedBy,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementTokensIssued(resolvedBy)
	}
	if s.auditor != nil {
		s.auditor.Emit(ctx, audit.Event{
			Action:   audit.ActionTokenIssued,
			UserUUID: uuid,
			ClientIP: ip,
			Detail:   map[string]string{"resolved_by": resolvedBy},
		})
	}

	return &TokenResponse{
		TokenType:    "bearer",
		AccessToken:  accessToken,
		ExpiresIn:    int64(ttl / time.Second),
		RefreshToken: "",
	}, nil
}

// resolve tries the ticket cache, then the store by ticket, then the store by
// ip, and finally derives the uuid from the ticket.
func (s *Service) resolve(ctx context.Context, ticket, ip string) (string, string, error) {
	if s.cache != nil {
		uuid, err := s.cache.Get(ctx, ticket)
		switch {
		case err == nil:
			return uuid, ResolvedByCache, nil
		case !errors.Is(err, sentinel.ErrNotFound):
			s.logger.WarnContext(ctx, "ticket cache lookup failed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}

	u, err := s.users.FindByTicket(ctx, ticket)
	if err == nil {
		return u.UUID, ResolvedByTicket, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return "", "", fmt.Errorf("find user by ticket: %w", err)
	}

	if ip != "" {
		u, err = s.users.FindByIP(ctx, ip)
		if err == nil {
			return u.UUID, ResolvedByIP, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return "", "", fmt.Errorf("find user by ip: %w", err)
		}
	}

	return identity.DeriveString(ticket), ResolvedByDerived, nil
}
