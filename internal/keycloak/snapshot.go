package keycloak

import (
	"context"
	"net/url"
	"strconv"

	"github.com/les-ev/membersync/internal/model"
)

const userPageSize = 100

// Users loads the full user snapshot of the realm, including each user's
// group memberships, keyed by lowercased email. Users without an email
// cannot be correlated and are skipped with a warning; when two accounts
// share an email the first one returned wins.
func (c *Client) Users(ctx context.Context) (map[string]model.TargetUser, error) {
	users := make(map[string]model.TargetUser)

	for first := 0; ; first += userPageSize {
		query := url.Values{}
		query.Set("first", strconv.Itoa(first))
		query.Set("max", strconv.Itoa(userPageSize))
		query.Set("briefRepresentation", "false")

		var page []userRepresentation
		if err := c.getJSON(ctx, "/users", query, &page); err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for _, rep := range page {
			user, err := c.toTargetUser(ctx, rep)
			if err != nil {
				return nil, err
			}

			key := user.Key()
			if key == "" {
				c.log.WithFields(map[string]any{
					"username": rep.Username,
					"id":       rep.ID,
				}).Warn("user has no email address, cannot be correlated, skipping")
				continue
			}
			if _, exists := users[key]; exists {
				c.log.WithFields(map[string]any{"email": key}).Warn("duplicate email among users, keeping first")
				continue
			}
			users[key] = user
		}
	}

	c.log.WithFields(map[string]any{"users": len(users)}).Info("user snapshot loaded")
	return users, nil
}

func (c *Client) toTargetUser(ctx context.Context, rep userRepresentation) (model.TargetUser, error) {
	var groups []groupRepresentation
	if err := c.getJSON(ctx, "/users/"+rep.ID+"/groups", nil, &groups); err != nil {
		return model.TargetUser{}, err
	}

	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}

	user := model.TargetUser{
		ID:        rep.ID,
		Username:  rep.Username,
		Email:     rep.Email,
		FirstName: rep.FirstName,
		LastName:  rep.LastName,
		Groups:    names,
	}
	if rep.Enabled != nil {
		user.Enabled = *rep.Enabled
	}
	if rep.EmailVerified != nil {
		user.EmailVerified = *rep.EmailVerified
	}
	if ids := rep.Attributes[AttributeCampaiID]; len(ids) > 0 {
		user.CampaiID = ids[0]
	}

	return user, nil
}
