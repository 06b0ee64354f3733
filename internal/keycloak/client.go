// Package keycloak is the identity-service admin client. It loads the
// target user snapshot and implements the mutation surface the applier
// needs.
package keycloak

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/les-ev/membersync/internal/config"
	"github.com/les-ev/membersync/internal/logger"
	syncerrors "github.com/les-ev/membersync/pkg/errors"
)

// Sentinel errors for remote failure modes the caller distinguishes.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

const tokenExpirySkew = 30 * time.Second

// Client talks to the identity service's admin REST API using client
// credentials. Safe for sequential use within one run; the token is
// refreshed transparently when it expires.
type Client struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	http         *http.Client
	log          *logger.Logger

	mu       sync.Mutex
	token    string
	tokenExp time.Time
	groupIDs map[string]string
}

// New creates a client from configuration. Every request is bounded by
// the given timeout.
func New(cfg config.KeycloakConfig, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.URL, "/"),
		realm:        cfg.Realm,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		http:         &http.Client{Timeout: timeout},
		log:          log,
		groupIDs:     make(map[string]string),
	}
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExp) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	endpoint := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", c.baseURL, c.realm)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &syncerrors.APIError{Service: "keycloak token endpoint", StatusCode: resp.StatusCode, Message: string(body)}
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", err
	}

	c.token = token.AccessToken
	c.tokenExp = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenExpirySkew)
	return c.token, nil
}

// do performs an authenticated admin API request and returns the response
// with its status already mapped onto the error taxonomy. The caller owns
// the returned body.
func (c *Client) do(ctx context.Context, method, apiPath string, query url.Values, payload any) (*http.Response, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	u := c.baseURL + path.Join("/admin/realms/", c.realm, apiPath)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		apiErr := &syncerrors.APIError{Service: "keycloak", StatusCode: resp.StatusCode, Message: string(msg)}
		switch resp.StatusCode {
		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s %s", ErrNotFound, method, apiPath)
		case http.StatusForbidden:
			return nil, fmt.Errorf("%w: %s %s", ErrForbidden, method, apiPath)
		default:
			return nil, apiErr
		}
	}

	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, apiPath string, query url.Values, target any) error {
	resp, err := c.do(ctx, http.MethodGet, apiPath, query, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

func (c *Client) fetchUser(ctx context.Context, id string) (userRepresentation, error) {
	var user userRepresentation
	err := c.getJSON(ctx, "/users/"+id, nil, &user)
	return user, err
}

func (c *Client) putUser(ctx context.Context, user userRepresentation) error {
	resp, err := c.do(ctx, http.MethodPut, "/users/"+user.ID, nil, user)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// groupID resolves a group name to its identifier, caching the result for
// the run.
func (c *Client) groupID(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	cached, ok := c.groupIDs[name]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	query := url.Values{}
	query.Set("search", name)

	var groups []groupRepresentation
	if err := c.getJSON(ctx, "/groups", query, &groups); err != nil {
		return "", err
	}

	var match *groupRepresentation
	for i := range groups {
		if groups[i].Name == name {
			if match != nil {
				return "", fmt.Errorf("group name %q is ambiguous", name)
			}
			match = &groups[i]
		}
	}
	if match == nil {
		return "", fmt.Errorf("%w: group %q", ErrNotFound, name)
	}

	c.mu.Lock()
	c.groupIDs[name] = match.ID
	c.mu.Unlock()
	return match.ID, nil
}

func (c *Client) usernameTaken(ctx context.Context, username string) (bool, error) {
	query := url.Values{}
	query.Set("username", username)
	query.Set("exact", "true")

	var users []userRepresentation
	if err := c.getJSON(ctx, "/users", query, &users); err != nil {
		return false, err
	}
	return len(users) > 0, nil
}

// uniqueUsername probes the sanitized base name and appends an increasing
// numeric suffix until a free username is found.
func (c *Client) uniqueUsername(ctx context.Context, email string) (string, error) {
	base := SanitizeUsername(email)
	if base == "" {
		return "", fmt.Errorf("cannot derive username from %q", email)
	}

	for i := 0; ; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s%d", base, i)
		}

		taken, err := c.usernameTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}
