package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// WordCache remembers dictionary verdicts so repeated guesses skip the
// remote lookup.
type WordCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewWordCache(client *redis.Client) *WordCache {
	return &WordCache{
		client: client,
		ttl:    7 * 24 * time.Hour,
	}
}

func (c *WordCache) key(word string) string {
	return fmt.Sprintf("wordturn:dict:%s", strings.ToUpper(word))
}

func (c *WordCache) GetValid(ctx context.Context, word string) (valid, found bool, err error) {
	v, err := c.client.Get(ctx, c.key(word)).Result()
	if err == redis.Nil {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return v == "1", true, nil
}

func (c *WordCache) SetValid(ctx context.Context, word string, valid bool) error {
	v := "0"
	if valid {
		v = "1"
	}
	return c.client.Set(ctx, c.key(word), v, c.ttl).Err()
}
