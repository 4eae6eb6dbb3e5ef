package dictionary

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client checks words against a dictionaryapi.dev compatible service. A 200
// means the word exists, a 404 means it does not; anything else is an error.
type Client struct {
	Host string
	http *http.Client
}

func New(host string, timeout time.Duration) *Client {
	if host == "" {
		host = "https://api.dictionaryapi.dev"
	}
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &Client{Host: strings.TrimRight(host, "/"), http: &http.Client{Timeout: timeout}}
}

func (c *Client) Lookup(ctx context.Context, word string) (bool, error) {
	endpoint := c.Host + "/api/v2/entries/en/" + url.PathEscape(strings.ToLower(word))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode/100 == 2:
		return true, nil
	default:
		return false, fmt.Errorf("dictionary status %d", resp.StatusCode)
	}
}
