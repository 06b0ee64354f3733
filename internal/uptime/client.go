// Package uptime pushes run outcomes to an Uptime-Kuma-style push monitor.
package uptime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/les-ev/membersync/internal/logger"
)

// StatusUp and StatusDown are the push endpoint's status values.
const (
	StatusUp   = "up"
	StatusDown = "down"
)

type pushResponse struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg"`
}

// Client pushes heartbeats to a single push URL. A nil Client is a
// disabled reporter and all pushes are no-ops.
type Client struct {
	pushURL string
	http    *http.Client
	log     *logger.Logger
}

// New returns a push client, or nil when no push URL is configured.
func New(pushURL string, timeout time.Duration, log *logger.Logger) *Client {
	if pushURL == "" {
		return nil
	}
	return &Client{
		pushURL: pushURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Up signals a successful run.
func (c *Client) Up(ctx context.Context, msg string) error {
	return c.push(ctx, StatusUp, msg)
}

// Down signals a failed or aborted run.
func (c *Client) Down(ctx context.Context, msg string) error {
	return c.push(ctx, StatusDown, msg)
}

func (c *Client) push(ctx context.Context, status, msg string) error {
	if c == nil {
		return nil
	}

	query := url.Values{}
	query.Set("status", status)
	query.Set("msg", msg)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pushURL+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body pushResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("monitor returned status %d with an unreadable body: %w", resp.StatusCode, err)
	}

	// The push protocol signals problems both through the HTTP status and
	// the ok flag, and the two can disagree.
	switch resp.StatusCode {
	case http.StatusOK:
		if !body.OK {
			return fmt.Errorf("monitor returned 200 but the response reports an error: %s", body.Msg)
		}
		c.log.WithFields(map[string]any{"status": status}).Debug("heartbeat pushed")
		return nil
	case http.StatusNotFound:
		if body.OK {
			return fmt.Errorf("monitor returned 404 but the response reports success")
		}
		return fmt.Errorf("monitor returned 404: %s", body.Msg)
	default:
		return fmt.Errorf("monitor returned unexpected status %d", resp.StatusCode)
	}
}
