package keycloak

// AttributeCampaiID is the user attribute storing the membership-service
// identifier, used as the preferred correlation signal.
const AttributeCampaiID = "campai-id"

// userRepresentation is the subset of the admin API's user resource the
// sync reads and writes. Updates send the full fetched representation
// with changed fields merged in, so unknown remote fields never round
// trip through the sync.
type userRepresentation struct {
	ID            string              `json:"id,omitempty"`
	Username      string              `json:"username,omitempty"`
	Email         string              `json:"email,omitempty"`
	FirstName     string              `json:"firstName,omitempty"`
	LastName      string              `json:"lastName,omitempty"`
	Enabled       *bool               `json:"enabled,omitempty"`
	EmailVerified *bool               `json:"emailVerified,omitempty"`
	Attributes    map[string][]string `json:"attributes,omitempty"`
	Groups        []string            `json:"groups,omitempty"`
}

// groupRepresentation is the subset of the admin API's group resource.
type groupRepresentation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func boolPtr(v bool) *bool { return &v }
