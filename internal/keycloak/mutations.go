package keycloak

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/les-ev/membersync/internal/model"
)

// UpdateUser merges the changed fields into the user's current
// representation and writes it back. The admin API replaces the whole
// representation on update, so the current one is fetched first and only
// the given fields are touched.
func (c *Client) UpdateUser(ctx context.Context, id string, fields map[string]string) error {
	user, err := c.fetchUser(ctx, id)
	if err != nil {
		return err
	}

	for field, value := range fields {
		switch field {
		case "firstName":
			user.FirstName = value
		case "lastName":
			user.LastName = value
		case "email":
			user.Email = value
		case "emailVerified":
			user.EmailVerified = boolPtr(value == "true")
		case "campaiId":
			if user.Attributes == nil {
				user.Attributes = make(map[string][]string)
			}
			user.Attributes[AttributeCampaiID] = []string{value}
		default:
			return fmt.Errorf("unknown attribute %q", field)
		}
	}

	return c.putUser(ctx, user)
}

// SetUserEnabled flips the account's enabled flag.
func (c *Client) SetUserEnabled(ctx context.Context, id string, enabled bool) error {
	user, err := c.fetchUser(ctx, id)
	if err != nil {
		return err
	}
	user.Enabled = boolPtr(enabled)
	return c.putUser(ctx, user)
}

// AddUserToGroup joins the user to the named group.
func (c *Client) AddUserToGroup(ctx context.Context, id, group string) error {
	groupID, err := c.groupID(ctx, group)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodPut, "/users/"+id+"/groups/"+groupID, nil, nil)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// RemoveUserFromGroup removes the user from the named group.
func (c *Client) RemoveUserFromGroup(ctx context.Context, id, group string) error {
	groupID, err := c.groupID(ctx, group)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodDelete, "/users/"+id+"/groups/"+groupID, nil, nil)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// CreateUser provisions an enabled, email-verified account for the member
// with a generated unique username and default group membership, all in a
// single create call. The new user's identifier comes from the Location
// header.
func (c *Client) CreateUser(ctx context.Context, member model.Member, group string) (string, error) {
	username, err := c.uniqueUsername(ctx, member.Key())
	if err != nil {
		return "", err
	}

	rep := userRepresentation{
		Username:      username,
		Email:         member.Key(),
		FirstName:     strings.TrimSpace(member.FirstName),
		LastName:      strings.TrimSpace(member.LastName),
		Enabled:       boolPtr(true),
		EmailVerified: boolPtr(true),
	}
	if member.CampaiID != "" {
		rep.Attributes = map[string][]string{AttributeCampaiID: {member.CampaiID}}
	}
	if group != "" {
		rep.Groups = []string{"/" + group}
	}

	resp, err := c.do(ctx, http.MethodPost, "/users", nil, rep)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("create response carries no Location header")
	}
	parts := strings.Split(strings.TrimRight(location, "/"), "/")
	id := parts[len(parts)-1]

	c.log.WithFields(map[string]any{
		"username": username,
		"email":    member.Key(),
		"id":       id,
	}).Info("user created")

	return id, nil
}
