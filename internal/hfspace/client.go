package hfspace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultEndpoint = "https://huggingface.co"

// Runtime is the runtime state of a Space.
type Runtime struct {
	Stage    string   `json:"stage"`
	Hardware Hardware `json:"hardware"`
}

// Hardware holds the current and requested hardware tiers. Either may be nil
// while a Space is building or paused.
type Hardware struct {
	Current   *string `json:"current"`
	Requested *string `json:"requested"`
}

type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

func NewClient(endpoint, token string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// RepoID joins a username and Space name into a Hub repository id.
func RepoID(username, space string) string {
	return username + "/" + space
}

// Runtime fetches the runtime of the Space identified by repoID.
func (c *Client) Runtime(ctx context.Context, repoID string) (*Runtime, error) {
	url := fmt.Sprintf("%s/api/spaces/%s/runtime", c.endpoint, repoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get space runtime: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d fetching runtime for %s: %s", resp.StatusCode, repoID, strings.TrimSpace(string(body)))
	}

	var rt Runtime
	if err := json.NewDecoder(resp.Body).Decode(&rt); err != nil {
		return nil, fmt.Errorf("decoding runtime: %w", err)
	}
	return &rt, nil
}
