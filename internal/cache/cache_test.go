package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kiliankoe/wordturn/internal/game"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deadClient points at a port nothing listens on.
func deadClient(t *testing.T) *redis.Client {
	c := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { c.Close() })
	return c
}

func TestKeys(t *testing.T) {
	lb := NewLeaderboard(nil)
	assert.Equal(t, "wordturn:lb:points", lb.key("points"))
	assert.Equal(t, "alice", member("  Alice "))

	wc := NewWordCache(nil)
	assert.Equal(t, "wordturn:dict:CRANE", wc.key("crane"))
}

func TestUnreachableRedisSurfacesErrors(t *testing.T) {
	ctx := context.Background()
	c := deadClient(t)

	_, found, err := NewWordCache(c).GetValid(ctx, "crane")
	require.Error(t, err)
	assert.False(t, found)
	assert.Error(t, NewWordCache(c).SetValid(ctx, "crane", true))

	id := "p1"
	err = NewLeaderboard(c).RecordGame(ctx, game.GameResult{
		FinalScores: []game.ScoreEntry{{ID: "p1", Name: "Alice", Score: 7}},
		WinnerID:    &id,
	})
	assert.Error(t, err)
	_, err = NewLeaderboard(c).Top(ctx, 5)
	assert.Error(t, err)
}

func TestRecordEmptyGameIsNoop(t *testing.T) {
	assert.NoError(t, NewLeaderboard(deadClient(t)).RecordGame(context.Background(), game.GameResult{}))
}

func liveClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { c.Close() })
	return mr, c
}

func TestLeaderboardAccumulatesGames(t *testing.T) {
	ctx := context.Background()
	_, c := liveClient(t)
	lb := NewLeaderboard(c)

	bob := "b"
	require.NoError(t, lb.RecordGame(ctx, game.GameResult{
		WinnerID:    &bob,
		FinalScores: []game.ScoreEntry{{ID: "b", Name: "Bob", Score: 9}, {ID: "a", Name: "Alice", Score: 4}},
	}))
	// a draw credits points and games but no win
	require.NoError(t, lb.RecordGame(ctx, game.GameResult{
		Draw:        true,
		FinalScores: []game.ScoreEntry{{ID: "x", Name: "ALICE", Score: 5}, {ID: "y", Name: "Bob", Score: 5}},
	}))

	top, err := lb.Top(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []LeaderboardEntry{
		{Name: "Bob", Points: 14, Wins: 1, Games: 2, Rank: 1},
		{Name: "ALICE", Points: 9, Wins: 0, Games: 2, Rank: 2},
	}, top)

	top, err = lb.Top(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Bob", top[0].Name)

	games, err := lb.GamesPlayed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), games)
}

func TestLeaderboardEmpty(t *testing.T) {
	ctx := context.Background()
	_, c := liveClient(t)
	lb := NewLeaderboard(c)

	top, err := lb.Top(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, top)
	games, err := lb.GamesPlayed(ctx)
	require.NoError(t, err)
	assert.Zero(t, games)
}

func TestWordCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, c := liveClient(t)
	wc := NewWordCache(c)

	_, found, err := wc.GetValid(ctx, "crane")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, wc.SetValid(ctx, "crane", true))
	require.NoError(t, wc.SetValid(ctx, "qxzvb", false))

	valid, found, err := wc.GetValid(ctx, "CRANE")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, valid)

	valid, found, err = wc.GetValid(ctx, "qxzvb")
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, valid)

	assert.Equal(t, 7*24*time.Hour, mr.TTL("wordturn:dict:CRANE"))
	mr.FastForward(8 * 24 * time.Hour)
	_, found, err = wc.GetValid(ctx, "crane")
	require.NoError(t, err)
	assert.False(t, found, "verdicts expire")
}
