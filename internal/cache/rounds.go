package cache

import (
	"context"
	"time"

	"shark-tank-api/internal/models"
)

// Round is a pitch together with the decisions every investor made on it.
type Round struct {
	Pitch     models.Pitch      `json:"pitch"`
	Decisions []models.Decision `json:"decisions"`
}

// RoundKey is the cache key of a pitch's decision round.
func RoundKey(pitchID string) string {
	return "round:" + pitchID
}

// GetRound loads a cached decision round.
func GetRound(ctx context.Context, c Cache, pitchID string) (Round, error) {
	var r Round
	err := GetJSON(ctx, c, RoundKey(pitchID), &r)
	return r, err
}

// SetRound caches a decision round for ttl.
func SetRound(ctx context.Context, c Cache, r Round, ttl time.Duration) error {
	return SetJSON(ctx, c, RoundKey(r.Pitch.ID), r, ttl)
}
