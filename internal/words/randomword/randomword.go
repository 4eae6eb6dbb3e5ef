package randomword

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to a random-word-api compatible service:
// GET {BaseURL}/api?words=1&length=N -> ["word"].
type Client struct {
	BaseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://random-word-api.vercel.app"
	}
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{Timeout: timeout}}
}

func (c *Client) Random(ctx context.Context, length int) (string, error) {
	q := url.Values{}
	q.Set("words", "1")
	q.Set("length", strconv.Itoa(length))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("random word status %d", resp.StatusCode)
	}
	var out []string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out) == 0 || out[0] == "" {
		return "", errors.New("no words")
	}
	return strings.ToUpper(strings.TrimSpace(out[0])), nil
}
