// Package account implements the WbAccountManagement and
// WbSubscriptionManagement SOAP methods the game calls to link a console
// identity to a user.
package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gangland/internal/audit"
	"gangland/internal/identity"
	"gangland/internal/soap"
	"gangland/internal/user"
	"gangland/pkg/platform/sentinel"
	"gangland/pkg/requestcontext"
)

// LinkTitle is the only title LookupWbid links accounts for.
const LinkTitle = "OZZY"

// Suffixes appended to the console id before deriving subscription ids.
const (
	suffixWbidAccount   = ":accountid_sub"
	suffixSubscription  = ":subscriptionid_sub"
	suffixAccountDetail = ":accountid_sub_detail"
)

// Store is the slice of the user store the account methods need.
type Store interface {
	FindByConsoleID(ctx context.Context, consoleID string) (*user.User, error)
	Insert(ctx context.Context, u *user.User) error
	UpdateByConsoleID(ctx context.Context, consoleID, ticket, uuid, ip string) error
}

// TicketCache remembers which uuid a console ticket was linked to.
type TicketCache interface {
	Put(ctx context.Context, ticket, uuid string, ttl time.Duration) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

type Metrics interface {
	IncrementUsersCreated()
}

// Defaults are the documents a new user starts with.
type Defaults struct {
	Inventory json.RawMessage
	Save      json.RawMessage
}

// Service holds the handlers. It keeps no per-request state.
type Service struct {
	store    Store
	defaults Defaults
	logger   *slog.Logger
	cache    TicketCache
	cacheTTL time.Duration
	auditor  AuditPublisher
	metrics  Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTicketCache records every link in cache for ttl.
func WithTicketCache(cache TicketCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
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

func New(store Store, defaults Defaults, opts ...Option) *Service {
	s := &Service{store: store, defaults: defaults, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// noopMethods answer with an empty body. The game calls them but never needs
// a result.
var noopMethods = []string{
	"AssociateWbid",
	"DisassociateWbid",
	"CreateAccount",
	"CreateAccountAndAssociate",
	"ResetPassword",
	"StartWBPasswordReset",
	"StartWBPasswordResetFromConsole",
	"FinishWBPasswordReset",
}

// Methods is the registry table. Only GetSubscriptionInformation treats an
// empty result as a fault.
func (s *Service) Methods() []soap.Method {
	methods := []soap.Method{
		{Name: "LookupWbid", Handler: s.LookupWbid},
		{Name: "GetSubscriptionInformation", Handler: s.GetSubscriptionInformation, EmptyResultIsFault: true},
	}
	for _, name := range noopMethods {
		methods = append(methods, soap.Method{Name: name, Handler: s.noop(name)})
	}
	return methods
}

// NormalizeTicket strips the characters the client inserts inconsistently
// into SOAP console tickets.
func NormalizeTicket(ticket string) string {
	return strings.NewReplacer("/", "", "+", "").Replace(ticket)
}

// LookupWbid links a console to the user derived from its ticket. Calls for
// other titles, or missing any identity argument, change nothing.
func (s *Service) LookupWbid(ctx context.Context, args soap.Args) (soap.Map, error) {
	s.logCall(ctx, "LookupWbid", args)

	if args.Value("title") != LinkTitle || !args.Has("uniqueId") || !args.Has("consoleTicket") || !args.Has("consoleId") {
		return soap.Map{}, nil
	}

	consoleID := args.Value("consoleId")
	ticket := NormalizeTicket(args.Value("consoleTicket"))
	uuid := identity.DeriveString(ticket)
	ip := args.Value("ip")

	_, err := s.store.FindByConsoleID(ctx, consoleID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		u := &user.User{
			UUID:          uuid,
			Inventory:     string(s.defaults.Inventory),
			Data:          string(s.defaults.Save),
			ConsoleID:     consoleID,
			ConsoleTicket: ticket,
			IP:            ip,
		}
		if err := s.store.Insert(ctx, u); err != nil {
			return nil, fmt.Errorf("create user for console %s: %w", consoleID, err)
		}
		s.logger.InfoContext(ctx, "soap: new user created",
			"console_id", consoleID,
			"uuid", uuid,
			"request_id", requestcontext.RequestID(ctx),
		)
		if s.metrics != nil {
			s.metrics.IncrementUsersCreated()
		}
		s.emit(ctx, uuid, consoleID, ip, "created")
	case err != nil:
		return nil, fmt.Errorf("look up console %s: %w", consoleID, err)
	default:
		if err := s.store.UpdateByConsoleID(ctx, consoleID, ticket, uuid, ip); err != nil {
			return nil, fmt.Errorf("update user for console %s: %w", consoleID, err)
		}
		s.logger.InfoContext(ctx, "soap: user updated",
			"console_id", consoleID,
			"uuid", uuid,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.emit(ctx, uuid, consoleID, ip, "updated")
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, ticket, uuid, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "ticket cache write failed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	return soap.Map{}, nil
}

// GetSubscriptionInformation reports a subscription whose ids are derived from
// the console id, so repeated calls agree.
func (s *Service) GetSubscriptionInformation(ctx context.Context, args soap.Args) (soap.Map, error) {
	s.logCall(ctx, "GetSubscriptionInformation", args)

	consoleID := args.Value("consoleId")
	if consoleID == "" {
		return soap.Map{{Name: "Error", Value: soap.Text("Missing consoleId")}}, nil
	}
	return soap.Map{
		{Name: "GetSubscriptionInformationResult", Value: soap.Map{
			{Name: "WbidAccountId", Value: soap.Text(identity.DeriveString(consoleID + suffixWbidAccount))},
			{Name: "SubscriptionId", Value: soap.Text(identity.DeriveString(consoleID + suffixSubscription))},
			{Name: "AccountId", Value: soap.Text(identity.DeriveString(consoleID + suffixAccountDetail))},
			{Name: "Entitlements", Value: soap.List{}},
		}},
	}, nil
}

func (s *Service) noop(name string) soap.HandlerFunc {
	return func(ctx context.Context, args soap.Args) (soap.Map, error) {
		s.logCall(ctx, name, args)
		return soap.Map{}, nil
	}
}

func (s *Service) logCall(ctx context.Context, method string, args soap.Args) {
	s.logger.InfoContext(ctx, "soap call",
		"function_name", method,
		"args", args.Flatten(),
		"request_id", requestcontext.RequestID(ctx),
	)
}

func (s *Service) emit(ctx context.Context, uuid, consoleID, ip, change string) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:    audit.ActionUserLinked,
		UserUUID:  uuid,
		ConsoleID: consoleID,
		ClientIP:  ip,
		Detail:    map[string]string{"change": change},
	})
}
