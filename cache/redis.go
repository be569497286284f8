package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/football-investment/practice-booking-system-sub021/models"
)

// ErrCacheMiss is returned when the requested key is absent. Callers fall
// back to the database; the cache is never the source of truth.
var ErrCacheMiss = errors.New("cache: key not found")

// RankingCache stores final ranking snapshots. Only terminal-phase rankings
// are cached; lifecycle guards always read the database.
type RankingCache interface {
	GetRanking(ctx context.Context, tournamentID int) ([]models.RankingEntry, error)
	SetRanking(ctx context.Context, tournamentID int, entries []models.RankingEntry) error
	InvalidateRanking(ctx context.Context, tournamentID int) error
}

type redisRankingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRankingCache(client *redis.Client, ttl time.Duration) RankingCache {
	return &redisRankingCache{client: client, ttl: ttl}
}

// NewRedisClient builds a client from an address or a redis:// URL and
// verifies connectivity before returning it.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	var client *redis.Client
	if opt, err := redis.ParseURL(addr); err == nil {
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func rankingKey(tournamentID int) string {
	return fmt.Sprintf("tournament:%d:ranking", tournamentID)
}

func (c *redisRankingCache) GetRanking(ctx context.Context, tournamentID int) ([]models.RankingEntry, error) {
	data, err := c.client.Get(ctx, rankingKey(tournamentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get ranking: %w", err)
	}

	var entries []models.RankingEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("cache: decode ranking: %w", err)
	}
	return entries, nil
}

func (c *redisRankingCache) SetRanking(ctx context.Context, tournamentID int, entries []models.RankingEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("cache: encode ranking: %w", err)
	}
	if err := c.client.Set(ctx, rankingKey(tournamentID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set ranking: %w", err)
	}
	return nil
}

func (c *redisRankingCache) InvalidateRanking(ctx context.Context, tournamentID int) error {
	if err := c.client.Del(ctx, rankingKey(tournamentID)).Err(); err != nil {
		return fmt.Errorf("cache: invalidate ranking: %w", err)
	}
	return nil
}

// NoopRankingCache is used when Redis is not configured. Every read misses.
type NoopRankingCache struct{}

func (NoopRankingCache) GetRanking(context.Context, int) ([]models.RankingEntry, error) {
	return nil, ErrCacheMiss
}

func (NoopRankingCache) SetRanking(context.Context, int, []models.RankingEntry) error {
	return nil
}

func (NoopRankingCache) InvalidateRanking(context.Context, int) error {
	return nil
}
