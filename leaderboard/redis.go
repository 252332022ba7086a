package leaderboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/vitoroliveiraifsp/Mangues-sub000/domain"
)

const (
	playerMember = "player:"
	guestMember  = "name:"
)

// store is the part of redis.Cmdable the board needs.
type store interface {
	ZIncrBy(ctx context.Context, key string, increment float64, member string) *redis.FloatCmd
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) *redis.ZSliceCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HMGet(ctx context.Context, key string, fields ...string) *redis.SliceCmd
}

// RedisBoard keeps all-time scores in one sorted set. Identified players are
// members by id, with their latest display name in a side hash; anonymous
// players can only be told apart by name.
type RedisBoard struct {
	client    store
	keyPrefix string
}

func NewRedisBoard(client store, keyPrefix string) *RedisBoard {
	if client == nil {
		panic("redis client cannot be nil for RedisBoard")
	}
	if keyPrefix == "" {
		keyPrefix = "mangues:"
	}
	return &RedisBoard{client: client, keyPrefix: keyPrefix}
}

// Connect parses url (redis://...) and checks the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

func (b *RedisBoard) key() string {
	return b.keyPrefix + "leaderboard"
}

func (b *RedisBoard) namesKey() string {
	return b.keyPrefix + "leaderboard:names"
}

// RecordMatch implements game.ResultSink. Players who scored nothing are
// skipped. Players without a user id share one entry per display name, so two
// anonymous "Ana"s add up together.
func (b *RedisBoard) RecordMatch(ctx context.Context, result domain.MatchResult) error {
	for _, p := range result.Players {
		name := strings.TrimSpace(p.Name)
		if p.Score <= 0 || name == "" {
			continue
		}

		member := guestMember + name
		if p.UserId != "" {
			member = playerMember + p.UserId
			if err := b.client.HSet(ctx, b.namesKey(), member, name).Err(); err != nil {
				return fmt.Errorf("redis: name %q: %w", p.UserId, err)
			}
		}
		if err := b.client.ZIncrBy(ctx, b.key(), float64(p.Score), member).Err(); err != nil {
			return fmt.Errorf("redis: add score for %q: %w", name, err)
		}
	}
	return nil
}

// Top returns the best limit entries, highest score first.
func (b *RedisBoard) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		return []domain.LeaderboardEntry{}, nil
	}
	members, err := b.client.ZRevRangeWithScores(ctx, b.key(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: read leaderboard: %w", err)
	}

	var players []string
	for _, z := range members {
		if m, ok := z.Member.(string); ok && strings.HasPrefix(m, playerMember) {
			players = append(players, m)
		}
	}
	names := map[string]string{}
	if len(players) > 0 {
		vals, err := b.client.HMGet(ctx, b.namesKey(), players...).Result()
		if err != nil {
			return nil, fmt.Errorf("redis: read leaderboard names: %w", err)
		}
		for i, v := range vals {
			if name, ok := v.(string); ok {
				names[players[i]] = name
			}
		}
	}

	entries := make([]domain.LeaderboardEntry, 0, len(members))
	for _, z := range members {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		name := strings.TrimPrefix(member, guestMember)
		if strings.HasPrefix(member, playerMember) {
			name = names[member]
		}
		if name == "" {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{Name: name, Score: int(z.Score)})
	}
	return entries, nil
}
