package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dosada05/competition-engine/models"
)

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string, logger *slog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 10
	opts.MinIdleConns = 2

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	logger.Info("redis connection established", slog.String("addr", opts.Addr), slog.Int("db", opts.DB))
	return client, nil
}

type redisStandingsCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStandingsCache stores msgpack-encoded tables with the given TTL.
// Tables live under a generation-tagged key; Invalidate increments the
// generation counter, so a table written for an older generation lands on a
// key nobody reads and expires with its TTL.
func NewRedisStandingsCache(client redis.Cmdable, ttl time.Duration) StandingsCache {
	return &redisStandingsCache{client: client, ttl: ttl}
}

func (c *redisStandingsCache) Get(ctx context.Context, competitionID int) ([]models.StandingsRow, bool, error) {
	generation, err := c.Generation(ctx, competitionID)
	if err != nil {
		return nil, false, err
	}
	data, err := c.client.Get(ctx, standingsKey(competitionID, generation)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get standings %d: %w", competitionID, err)
	}
	rows, err := decodeStandings(data)
	if err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

func (c *redisStandingsCache) Generation(ctx context.Context, competitionID int) (uint64, error) {
	generation, err := c.client.Get(ctx, generationKey(competitionID)).Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get standings generation %d: %w", competitionID, err)
	}
	return generation, nil
}

func (c *redisStandingsCache) Set(ctx context.Context, competitionID int, generation uint64, rows []models.StandingsRow) error {
	data, err := encodeStandings(rows)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, standingsKey(competitionID, generation), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set standings %d: %w", competitionID, err)
	}
	return nil
}

func (c *redisStandingsCache) Invalidate(ctx context.Context, competitionID int) error {
	generation, err := c.client.Incr(ctx, generationKey(competitionID)).Uint64()
	if err != nil {
		return fmt.Errorf("redis bump standings generation %d: %w", competitionID, err)
	}
	if err := c.client.Del(ctx, standingsKey(competitionID, generation-1)).Err(); err != nil {
		return fmt.Errorf("redis delete standings %d: %w", competitionID, err)
	}
	return nil
}
