package token

import (
	"context"
	"time"
)

// LegacyService hands out the user uuid itself as the access token, which
// is what shipped game clients expect.
type LegacyService struct {
	ttl time.Duration
}

func NewLegacyService(ttl time.Duration) *LegacyService {
	return &LegacyService{ttl: ttl}
}

func (s *LegacyService) Issue(_ context.Context, userUUID string) (string, time.Duration, error) {
	return userUUID, s.ttl, nil
}

// ValidateToken accepts any non-empty token as the uuid.
func (s *LegacyService) ValidateToken(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}
