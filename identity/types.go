package identity

// Identity holds information about the authenticated principal as reported by the
// identity provider, or extracted from the SAML assertion's RoleSessionName attribute.
type Identity struct {
	IdentityType string
	Provider     string
	Username     string
}

// Roles is the list of role ARNs the identity is allowed to assume.
type Roles []string

// Provider is the interface which conforming identity providers will adhere to.
type Provider interface {
	// Identity will return the Identity information for a user.
	Identity() (*Identity, error)
	// Roles returns the list of Roles the provided user is allowed to use.
	Roles(user ...string) (*Roles, error)
}
