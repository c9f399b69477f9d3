// Package shop implements the store transaction routes: voucher and purchase
// bookkeeping and the item grants they unlock.
package shop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"

	"gangland/internal/audit"
	"gangland/internal/user"
	"gangland/pkg/platform/sentinel"
	"gangland/pkg/requestcontext"
)

// ConsumablesBundle is the transaction that grants random consumables.
const ConsumablesBundle = "2f93daeb-d68f-4b28-80f4-ace882587a13"

const consumablesPerBundle = 5

var ErrUserNotFound = errors.New("user not found")

type Store interface {
	FindByUUID(ctx context.Context, uuid string) (*user.User, error)
	UpdateInventory(ctx context.Context, uuid, inventory string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

type Metrics interface {
	AddItemsGranted(n int)
}

// Unlocks is the body returned after a transaction: item id → count granted.
type Unlocks struct {
	Items map[string]int `json:"items"`
}

type Service struct {
	store         Store
	consumables   []string
	baseInventory json.RawMessage
	intN          func(n int) int
	logger        *slog.Logger
	auditor       AuditPublisher
	metrics       Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRand replaces the source used to pick granted consumables.
func WithRand(intN func(n int) int) Option {
	return func(s *Service) {
		s.intN = intN
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

// NewService grants from consumables and starts users without a stored
// inventory from baseInventory.
func NewService(store Store, consumables []string, baseInventory json.RawMessage, opts ...Option) *Service {
	s := &Service{
		store:         store,
		consumables:   consumables,
		baseInventory: baseInventory,
		intN:          rand.IntN,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessTransaction grants the items transactionID unlocks to the user and
// merges them into the stored inventory. Unknown transactions grant nothing
// but still succeed.
func (s *Service) ProcessTransaction(ctx context.Context, uuid, transactionID string) (*Unlocks, error) {
	u, err := s.store.FindByUUID(ctx, uuid)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("transaction %s for %s: %w", transactionID, uuid, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", uuid, err)
	}

	s.logger.InfoContext(ctx, "processing transaction",
		"transaction_id", transactionID,
		"uuid", uuid,
		"request_id", requestcontext.RequestID(ctx),
	)

	unlocks := &Unlocks{Items: map[string]int{}}
	switch transactionID {
	case ConsumablesBundle:
		if len(s.consumables) > 0 {
			for range consumablesPerBundle {
				unlocks.Items[s.consumables[s.intN(len(s.consumables))]]++
			}
		}
	default:
		s.logger.DebugContext(ctx, "transaction has no unlock rule",
			"transaction_id", transactionID,
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	inventory, err := s.mergeInventory(ctx, uuid, s.currentInventory(ctx, u), unlocks.Items)
	if err != nil {
		return nil, fmt.Errorf("merge inventory for %s: %w", uuid, err)
	}
	if err := s.store.UpdateInventory(ctx, uuid, inventory); err != nil {
		return nil, fmt.Errorf("update inventory for %s: %w", uuid, err)
	}

	granted := 0
	for _, n := range unlocks.Items {
		granted += n
	}
	if s.metrics != nil {
		s.metrics.AddItemsGranted(granted)
	}
	if s.auditor != nil {
		s.auditor.Emit(ctx, audit.Event{
			Action:   audit.ActionItemsGranted,
			UserUUID: uuid,
			Detail: map[string]string{
				"transaction_id": transactionID,
				"items":          strconv.Itoa(granted),
			},
		})
	}
	return unlocks, nil
}

// currentInventory returns the stored document, falling back to the base
// inventory when it is empty or not a JSON object.
func (s *Service) currentInventory(ctx context.Context, u *user.User) map[string]json.RawMessage {
	if u.Inventory != "" {
		var doc map[string]json.RawMessage
		if err := json.Unmarshal([]byte(u.Inventory), &doc); err == nil && doc != nil {
			return doc
		}
		s.logger.WarnContext(ctx, "stored inventory is not valid JSON, using base inventory",
			"uuid", u.UUID,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(s.baseInventory, &doc); err != nil || doc == nil {
		return map[string]json.RawMessage{}
	}
	return doc
}

// mergeInventory adds items to doc["inventory"], creating it when missing.
// Counts that are not numbers restart from zero. An inventory value that is
// not an object is replaced by the granted items.
func (s *Service) mergeInventory(ctx context.Context, uuid string, doc map[string]json.RawMessage, items map[string]int) (string, error) {
	var counts map[string]any
	if raw, ok := doc["inventory"]; ok {
		if err := json.Unmarshal(raw, &counts); err != nil {
			s.logger.WarnContext(ctx, "stored inventory items are not an object, replacing them",
				"uuid", uuid,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			counts = nil
		}
	}
	if counts == nil {
		counts = map[string]any{}
	}
	for id, n := range items {
		current, _ := counts[id].(float64)
		counts[id] = current + float64(n)
	}

	raw, err := json.Marshal(counts)
	if err != nil {
		return "", err
	}
	doc["inventory"] = raw

	out, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
