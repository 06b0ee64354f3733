package keycloak

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/les-ev/membersync/internal/config"
	"github.com/les-ev/membersync/internal/model"
)

// realmServer fakes the token endpoint and dispatches admin API calls to
// the given handler.
func realmServer(t *testing.T, admin http.HandlerFunc) (*Client, *int) {
	t.Helper()

	tokenCalls := new(int)
	mux := http.NewServeMux()
	mux.HandleFunc("/realms/les/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		*tokenCalls++
		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.FormValue("grant_type"))
		require.Equal(t, "sync-client", r.FormValue("client_id"))
		require.Equal(t, "sync-secret", r.FormValue("client_secret"))
		require.NoError(t, json.NewEncoder(w).Encode(tokenResponse{AccessToken: "tok-1", ExpiresIn: 300}))
	})
	mux.HandleFunc("/admin/realms/les/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		admin(w, r)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return New(config.KeycloakConfig{
		URL:          server.URL,
		Realm:        "les",
		ClientID:     "sync-client",
		ClientSecret: "sync-secret",
	}, 5*time.Second, nil), tokenCalls
}

func TestAccessTokenCachedAcrossCalls(t *testing.T) {
	t.Parallel()

	adminCalls := 0
	client, tokenCalls := realmServer(t, func(w http.ResponseWriter, r *http.Request) {
		adminCalls++
		require.NoError(t, json.NewEncoder(w).Encode([]userRepresentation{}))
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := client.Users(ctx)
		require.NoError(t, err)
	}
	require.Equal(t, 3, adminCalls)
	require.Equal(t, 1, *tokenCalls, "token fetched once and reused")
}

func TestUsersSnapshotPaginatesAndKeysByEmail(t *testing.T) {
	t.Parallel()

	page1 := make([]userRepresentation, userPageSize)
	for i := range page1 {
		page1[i] = userRepresentation{
			ID:       "u" + string(rune('a'+i%26)) + string(rune('a'+i/26)),
			Username: "user",
			Email:    "",
		}
	}
	page1[0] = userRepresentation{
		ID:            "u-1",
		Username:      "alice",
		Email:         "Alice@Example.ORG",
		FirstName:     "Alice",
		LastName:      "Smith",
		Enabled:       boolPtr(true),
		EmailVerified: boolPtr(true),
		Attributes:    map[string][]string{AttributeCampaiID: {"c-1"}},
	}
	page2 := []userRepresentation{
		{ID: "u-2", Username: "bob", Email: "bob@example.org", Enabled: boolPtr(false)},
		{ID: "u-3", Username: "bob2", Email: "BOB@example.org"},
	}

	client, _ := realmServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/admin/realms/les/users":
			require.Equal(t, "false", r.URL.Query().Get("briefRepresentation"))
			switch r.URL.Query().Get("first") {
			case "0":
				require.NoError(t, json.NewEncoder(w).Encode(page1))
			case "100":
				require.NoError(t, json.NewEncoder(w).Encode(page2))
			default:
				require.NoError(t, json.NewEncoder(w).Encode([]userRepresentation{}))
			}
		case r.URL.Path == "/admin/realms/les/users/u-1/groups":
			require.NoError(t, json.NewEncoder(w).Encode([]groupRepresentation{{ID: "g-1", Name: "members"}}))
		default:
			require.NoError(t, json.NewEncoder(w).Encode([]groupRepresentation{}))
		}
	})

	users, err := client.Users(context.Background())
	require.NoError(t, err)

	// 2 distinct emails survive: users without email are skipped, the
	// duplicate bob keeps the first account.
	require.Len(t, users, 2)

	alice := users["alice@example.org"]
	require.Equal(t, "u-1", alice.ID)
	require.Equal(t, "c-1", alice.CampaiID)
	require.True(t, alice.Enabled)
	require.True(t, alice.EmailVerified)
	require.Equal(t, []string{"members"}, alice.Groups)

	require.Equal(t, "u-2", users["bob@example.org"].ID)
}

func TestUpdateUserMergesFields(t *testing.T) {
	t.Parallel()

	var updated userRepresentation
	client, _ := realmServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/realms/les/users/u-1", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			require.NoError(t, json.NewEncoder(w).Encode(userRepresentation{
				ID:         "u-1",
				Username:   "alice",
				Email:      "old@example.org",
				FirstName:  "Alice",
				LastName:   "Smith",
				Enabled:    boolPtr(true),
				Attributes: map[string][]string{"locale": {"de"}},
			}))
		case http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&updated))
			w.WriteHeader(http.StatusNoContent)
		}
	})

	err := client.UpdateUser(context.Background(), "u-1", map[string]string{
		"email":         "new@example.org",
		"lastName":      "Miller",
		"campaiId":      "c-9",
		"emailVerified": "true",
	})
	require.NoError(t, err)

	require.Equal(t, "new@example.org", updated.Email)
	require.Equal(t, "Miller", updated.LastName)
	require.Equal(t, "Alice", updated.FirstName, "untouched field survives the merge")
	require.Equal(t, "alice", updated.Username)
	require.Equal(t, []string{"c-9"}, updated.Attributes[AttributeCampaiID])
	require.Equal(t, []string{"de"}, updated.Attributes["locale"], "unrelated attributes survive")
	require.NotNil(t, updated.EmailVerified)
	require.True(t, *updated.EmailVerified)
}

func TestUpdateUserRejectsUnknownField(t *testing.T) {
	t.Parallel()

	client, _ := realmServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(userRepresentation{ID: "u-1"}))
	})

	err := client.UpdateUser(context.Background(), "u-1", map[string]string{"nickname": "al"})
	require.ErrorContains(t, err, "unknown attribute")
}

func TestSetUserEnabled(t *testing.T) {
	t.Parallel()

	var updated userRepresentation
	client, _ := realmServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			require.NoError(t, json.NewEncoder(w).Encode(userRepresentation{ID: "u-1", Enabled: boolPtr(true)}))
		case http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&updated))
			w.WriteHeader(http.StatusNoContent)
		}
	})

	require.NoError(t, client.SetUserEnabled(context.Background(), "u-1", false))
	require.NotNil(t, updated.Enabled)
	require.False(t, *updated.Enabled)
}

func TestGroupMembershipCalls(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath string
	groupSearches := 0
	client, _ := realmServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/admin/realms/les/groups" {
			groupSearches++
			require.Equal(t, "members", r.URL.Query().Get("search"))
			require.NoError(t, json.NewEncoder(w).Encode([]groupRepresentation{
				{ID: "g-sub", Name: "members-archive"},
				{ID: "g-1", Name: "members"},
			}))
			return
		}
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()
	require.NoError(t, client.AddUserToGroup(ctx, "u-1", "members"))
	require.Equal(t, http.MethodPut, gotMethod)
	require.Equal(t, "/admin/realms/les/users/u-1/groups/g-1", gotPath)

	require.NoError(t, client.RemoveUserFromGroup(ctx, "u-2", "members"))
	require.Equal(t, http.MethodDelete, gotMethod)
	require.Equal(t, "/admin/realms/les/users/u-2/groups/g-1", gotPath)

	require.Equal(t, 1, groupSearches, "group id cached after first resolution")
}

func TestCreateUserProvisionsEnabledMemberWithGroup(t *testing.T) {
	t.Parallel()

	var created userRepresentation
	client, _ := realmServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/admin/realms/les/users" && r.Method == http.MethodGet:
			// Username probe finds no collision.
			require.Equal(t, "true", r.URL.Query().Get("exact"))
			require.NoError(t, json.NewEncoder(w).Encode([]userRepresentation{}))
		case r.URL.Path == "/admin/realms/les/users" && r.Method == http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.Header().Set("Location", "http://ignored/admin/realms/les/users/u-new")
			w.WriteHeader(http.StatusCreated)
		default:
			t.Fatalf("unexpected call %s %s", r.Method, r.URL.Path)
		}
	})

	member := model.Member{
		CampaiID:  "c-7",
		Email:     "Nora.Nagy@example.org",
		FirstName: "Nora",
		LastName:  "Nagy",
	}
	id, err := client.CreateUser(context.Background(), member, "members")
	require.NoError(t, err)
	require.Equal(t, "u-new", id)

	require.Equal(t, "nora.nagy", created.Username)
	require.Equal(t, "nora.nagy@example.org", created.Email)
	require.NotNil(t, created.Enabled)
	require.True(t, *created.Enabled)
	require.NotNil(t, created.EmailVerified)
	require.True(t, *created.EmailVerified)
	require.Equal(t, []string{"c-7"}, created.Attributes[AttributeCampaiID])
	require.Equal(t, []string{"/members"}, created.Groups)
}

func TestCreateUserProbesUsernameCollisions(t *testing.T) {
	t.Parallel()

	taken := map[string]bool{"nora.nagy": true, "nora.nagy1": true}
	var created userRepresentation
	client, _ := realmServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if taken[r.URL.Query().Get("username")] {
				require.NoError(t, json.NewEncoder(w).Encode([]userRepresentation{{ID: "existing"}}))
				return
			}
			require.NoError(t, json.NewEncoder(w).Encode([]userRepresentation{}))
		case http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.Header().Set("Location", "/admin/realms/les/users/u-new")
			w.WriteHeader(http.StatusCreated)
		}
	})

	_, err := client.CreateUser(context.Background(), model.Member{Email: "nora.nagy@example.org"}, "")
	require.NoError(t, err)
	require.Equal(t, "nora.nagy2", created.Username)
	require.Empty(t, created.Groups)
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()

	status := http.StatusNotFound
	client, _ := realmServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"denied"}`, status)
	})

	_, err := client.fetchUser(context.Background(), "u-404")
	require.ErrorIs(t, err, ErrNotFound)

	status = http.StatusForbidden
	_, err = client.fetchUser(context.Background(), "u-403")
	require.ErrorIs(t, err, ErrForbidden)

	status = http.StatusInternalServerError
	_, err = client.fetchUser(context.Background(), "u-500")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestGroupIDUnknownGroup(t *testing.T) {
	t.Parallel()

	client, _ := realmServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode([]groupRepresentation{{ID: "g-x", Name: "other"}}))
	})

	err := client.AddUserToGroup(context.Background(), "u-1", "members")
	require.ErrorContains(t, err, "members")
}
