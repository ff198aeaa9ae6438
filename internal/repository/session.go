package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/incident_assistant/internal/service"
)

const revokedTokenPrefix = "revoked_token:"

// SessionStore хранит отозванные refresh токены в Redis до истечения их срока
type SessionStore struct {
	redisClient *redis.Client
}

func NewSessionStore(redisClient *redis.Client) service.SessionStore {
	return &SessionStore{redisClient: redisClient}
}

func revokedKey(tokenID string) string {
	return revokedTokenPrefix + tokenID
}

// Revoke помечает токен отозванным на ttl. Возвращает false, если токен уже был отозван:
// SETNX гарантирует, что один refresh токен обменивается на новую пару только один раз.
func (s *SessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	ok, err := s.redisClient.SetNX(ctx, revokedKey(tokenID), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to revoke token: %w", err)
	}
	return ok, nil
}
