package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/kiliankoe/wordturn/internal/game"
	"github.com/redis/go-redis/v9"
)

// LeaderboardEntry is one row of the all-time leaderboard. Players are keyed
// by display name since ids do not survive a reconnect.
type LeaderboardEntry struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Wins   int    `json:"wins"`
	Games  int    `json:"games"`
	Rank   int    `json:"rank"`
}

// Leaderboard accumulates finished games in Redis sorted sets.
type Leaderboard struct {
	client *redis.Client
	prefix string
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client, prefix: "wordturn:lb"}
}

func (c *Leaderboard) key(kind string) string {
	return fmt.Sprintf("%s:%s", c.prefix, kind)
}

func member(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RecordGame adds every player's points and games played, plus a win for the
// outright winner.
func (c *Leaderboard) RecordGame(ctx context.Context, res game.GameResult) error {
	if len(res.FinalScores) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, s := range res.FinalScores {
			m := member(s.Name)
			pipe.ZIncrBy(ctx, c.key("points"), float64(s.Score), m)
			pipe.ZIncrBy(ctx, c.key("games"), 1, m)
			pipe.HSet(ctx, c.key("names"), m, s.Name)
		}
		if w := res.Winner(); w != nil {
			pipe.ZIncrBy(ctx, c.key("wins"), 1, member(w.Name))
		}
		pipe.Incr(ctx, c.key("total"))
		return nil
	})
	return err
}

// Top returns the limit best players by accumulated points.
func (c *Leaderboard) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	results, err := c.client.ZRevRangeWithScores(ctx, c.key("points"), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []LeaderboardEntry{}, nil
	}

	members := make([]string, len(results))
	for i, z := range results {
		members[i] = z.Member.(string)
	}
	wins, err := c.client.ZMScore(ctx, c.key("wins"), members...).Result()
	if err != nil {
		return nil, err
	}
	games, err := c.client.ZMScore(ctx, c.key("games"), members...).Result()
	if err != nil {
		return nil, err
	}
	names, err := c.client.HMGet(ctx, c.key("names"), members...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		name := members[i]
		if s, ok := names[i].(string); ok && s != "" {
			name = s
		}
		entries[i] = LeaderboardEntry{
			Name:   name,
			Points: int(z.Score),
			Wins:   int(wins[i]),
			Games:  int(games[i]),
			Rank:   i + 1,
		}
	}
	return entries, nil
}

// GamesPlayed is the number of games recorded so far.
func (c *Leaderboard) GamesPlayed(ctx context.Context) (int64, error) {
	n, err := c.client.Get(ctx, c.key("total")).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}
