package campai

import (
	"context"
	"fmt"

	"github.com/les-ev/membersync/internal/model"
)

// AllMembers pages through every contact of the organisation and returns
// the normalized member snapshot in fetch order. Contacts that are not
// people are skipped. When two contacts share an email address the one
// with the lower membership number wins (they joined earlier); records
// missing a number cannot be compared, so the existing one is kept.
func (c *Client) AllMembers(ctx context.Context, orgID string) ([]model.Member, error) {
	var members []model.Member
	indexByKey := make(map[string]int)

	skip := 0
	for {
		contacts, err := c.Contacts(ctx, orgID, DefaultPageLimit, skip)
		if err != nil {
			return nil, err
		}
		if len(contacts) == 0 {
			break
		}

		for _, contact := range contacts {
			if !contact.Personal.IsPerson || contact.Personal.IsOrganisation {
				continue
			}

			member := normalize(contact)
			key := member.Key()

			if key == "" {
				// Kept so the engine can record the classification error.
				members = append(members, member)
				continue
			}

			existingIdx, ok := indexByKey[key]
			if !ok {
				indexByKey[key] = len(members)
				members = append(members, member)
				continue
			}

			existing := members[existingIdx]
			if member.Number == nil || existing.Number == nil {
				c.log.WithFields(map[string]any{
					"email":    key,
					"contact":  member.CampaiID,
					"existing": existing.CampaiID,
				}).Warn("duplicate email but missing membership number, keeping existing contact")
				continue
			}
			if *member.Number < *existing.Number {
				members[existingIdx] = member
			}
		}

		skip += DefaultPageLimit
	}

	c.log.WithFields(map[string]any{"members": len(members)}).Info("member snapshot loaded")
	return members, nil
}

// Members resolves the organisation by name and loads its member snapshot.
func (c *Client) Members(ctx context.Context, organisationName string) ([]model.Member, error) {
	org, err := c.FindOrganisation(ctx, organisationName)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(map[string]any{
		"organisation": org.Name,
		"id":           org.ID,
	}).Info("organisation resolved")

	members, err := c.AllMembers(ctx, org.ID)
	if err != nil {
		return nil, fmt.Errorf("loading members of %q: %w", org.Name, err)
	}
	return members, nil
}

func normalize(contact Contact) model.Member {
	return model.Member{
		CampaiID:  contact.ID,
		Email:     contact.Communication.Email,
		FirstName: contact.Personal.FirstName,
		LastName:  contact.Personal.LastName,
		Status:    contact.Membership.Status,
		Number:    contact.Membership.NumberSort,
	}
}
