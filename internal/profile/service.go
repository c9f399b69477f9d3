// Package profile serves the per-user documents behind /users: the item
// inventory and the private save profile.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"gangland/internal/audit"
	"gangland/internal/user"
	"gangland/pkg/platform/sentinel"
	"gangland/pkg/requestcontext"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidProfile = errors.New("invalid profile")
)

// xpFields are the save fields raised to the configured XP floor.
var xpFields = []string{"AccountXPLevel", "baneXPLevel", "jokerXPLevel"}

type Store interface {
	FindByUUID(ctx context.Context, uuid string) (*user.User, error)
	UpdateInventory(ctx context.Context, uuid, inventory string) error
	UpdateData(ctx context.Context, uuid, data string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Defaults are served, and persisted, for users whose document is empty.
type Defaults struct {
	Inventory json.RawMessage
	Save      json.RawMessage
}

type Service struct {
	store      Store
	defaults   Defaults
	minXPLevel int
	logger     *slog.Logger
	auditor    AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMinXPLevel raises saved XP levels below level. Zero disables it.
func WithMinXPLevel(level int) Option {
	return func(s *Service) {
		s.minXPLevel = level
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func NewService(store Store, defaults Defaults, opts ...Option) *Service {
	s := &Service{store: store, defaults: defaults, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Exists reports ErrUserNotFound for unknown users.
func (s *Service) Exists(ctx context.Context, uuid string) error {
	_, err := s.find(ctx, uuid)
	return err
}

// Inventory returns the user's inventory document.
func (s *Service) Inventory(ctx context.Context, uuid string) (json.RawMessage, error) {
	u, err := s.find(ctx, uuid)
	if err != nil {
		return nil, err
	}
	return s.document(ctx, uuid, "inventory", u.Inventory, s.defaults.Inventory, s.store.UpdateInventory)
}

// PrivateProfile returns the user's save document.
func (s *Service) PrivateProfile(ctx context.Context, uuid string) (json.RawMessage, error) {
	u, err := s.find(ctx, uuid)
	if err != nil {
		return nil, err
	}
	return s.document(ctx, uuid, "profile", u.Data, s.defaults.Save, s.store.UpdateData)
}

// SaveProfile stores doc as the user's save. doc must carry
// data.AccountXPLevel.
func (s *Service) SaveProfile(ctx context.Context, uuid string, doc map[string]any) error {
	data, ok := doc["data"].(map[string]any)
	if !ok {
		return fmt.Errorf("missing data object: %w", ErrInvalidProfile)
	}
	if _, ok := data["AccountXPLevel"]; !ok {
		return fmt.Errorf("missing data.AccountXPLevel: %w", ErrInvalidProfile)
	}
	if s.minXPLevel > 0 {
		s.applyXPFloor(ctx, uuid, data)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.store.UpdateData(ctx, uuid, string(raw)); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return fmt.Errorf("save profile for %s: %w", uuid, ErrUserNotFound)
		}
		return fmt.Errorf("save profile for %s: %w", uuid, err)
	}

	if s.auditor != nil {
		s.auditor.Emit(ctx, audit.Event{
			Action:   audit.ActionProfileSaved,
			UserUUID: uuid,
			Detail:   map[string]string{"bytes": strconv.Itoa(len(raw))},
		})
	}
	return nil
}

func (s *Service) applyXPFloor(ctx context.Context, uuid string, data map[string]any) {
	for _, field := range xpFields {
		level, ok := numeric(data[field])
		if !ok || level >= float64(s.minXPLevel) {
			continue
		}
		data[field] = s.minXPLevel
		s.logger.InfoContext(ctx, "xp level raised to floor",
			"uuid", uuid,
			"field", field,
			"level", s.minXPLevel,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func (s *Service) find(ctx context.Context, uuid string) (*user.User, error) {
	u, err := s.store.FindByUUID(ctx, uuid)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("user %s: %w", uuid, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", uuid, err)
	}
	return u, nil
}

// document returns stored, or fallback when stored is empty (persisting it)
// or not valid JSON.
func (s *Service) document(
	ctx context.Context,
	uuid, kind, stored string,
	fallback json.RawMessage,
	persist func(ctx context.Context, uuid, doc string) error,
) (json.RawMessage, error) {
	if stored == "" {
		if err := persist(ctx, uuid, string(fallback)); err != nil {
			return nil, fmt.Errorf("store default %s for %s: %w", kind, uuid, err)
		}
		return fallback, nil
	}
	if !json.Valid([]byte(stored)) {
		s.logger.WarnContext(ctx, "stored document is not valid JSON, serving default",
			"kind", kind,
			"uuid", uuid,
			"request_id", requestcontext.RequestID(ctx),
		)
		return fallback, nil
	}
	return json.RawMessage(stored), nil
}
