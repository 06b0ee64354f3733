// Package campai is the membership-service client: a thin REST wrapper
// plus the member snapshot loader that normalizes contacts into Member
// records.
package campai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/les-ev/membersync/internal/config"
	"github.com/les-ev/membersync/internal/logger"
	syncerrors "github.com/les-ev/membersync/pkg/errors"
)

// DefaultPageLimit is the contact page size used when paging.
const DefaultPageLimit = 50

// Client talks to the membership service API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logger.Logger
}

// New creates a client from configuration. Every request is bounded by
// the given timeout.
func New(cfg config.CampaiConfig, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, target any) error {
	u := c.baseURL + "/" + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return &syncerrors.APIError{Service: "campai", StatusCode: resp.StatusCode, Message: string(body)}
	}

	return json.Unmarshal(body, target)
}

// Organisations lists organisations matching the given name filter.
func (c *Client) Organisations(ctx context.Context, name string) ([]Organisation, error) {
	params := url.Values{}
	if name != "" {
		params.Set("name", name)
	}

	var orgs []Organisation
	if err := c.get(ctx, "organisations", params, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// FindOrganisation resolves an organisation name to exactly one match.
func (c *Client) FindOrganisation(ctx context.Context, name string) (Organisation, error) {
	orgs, err := c.Organisations(ctx, name)
	if err != nil {
		return Organisation{}, err
	}
	if len(orgs) != 1 {
		return Organisation{}, fmt.Errorf("expected exactly one organisation named %q, found %d", name, len(orgs))
	}
	return orgs[0], nil
}

// Contacts fetches one page of contacts for an organisation.
func (c *Client) Contacts(ctx context.Context, orgID string, limit, skip int) ([]Contact, error) {
	params := url.Values{}
	params.Set("organisation", orgID)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("skip", strconv.Itoa(skip))

	var contacts []Contact
	if err := c.get(ctx, "contacts", params, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}
