package client

import (
	"fmt"

	"github.com/oktatools/okta-creds/credentials"
	"github.com/oktatools/okta-creds/credentials/helpers"
	"github.com/oktatools/okta-creds/shared"
)

// RoleSource describes how a role binding was chosen.
type RoleSource string

const (
	// RoleSourceOnlyOption means the assertion contained exactly one role.
	RoleSourceOnlyOption RoleSource = "only-option"
	// RoleSourceConfigured means a previously saved or flag-supplied role matched the assertion.
	RoleSourceConfigured RoleSource = "configured"
	// RoleSourcePrompt means the user chose the role interactively.
	RoleSourcePrompt RoleSource = "prompt"
)

// ResolvedRole is a role and SAML principal ARN pair selected from the assertion, along with
// the way it was selected.  Callers use Source to decide whether the choice is worth writing
// back to the profile configuration.
type ResolvedRole struct {
	RoleArn      string
	PrincipalArn string
	Source       RoleSource
}

type roleResolver struct {
	selector helpers.SelectionInputProvider
	logger   shared.Logger
}

func newRoleResolver(selector helpers.SelectionInputProvider, logger shared.Logger) *roleResolver {
	if logger == nil {
		logger = new(shared.DefaultLogger)
	}
	return &roleResolver{selector: selector, logger: logger}
}

// Resolve picks the role to assume from the assertion's role details.  An empty assertion is an
// error, and a single role is used without prompting regardless of configuration.  A configured
// role which is still present in the assertion is reused unless forcePrompt is set.  Everything
// else prompts, presenting the roles in lexical order so the numbering is stable between runs.
// The accountNames map is optional and only decorates the prompt, role ARNs whose account ID has
// an entry are shown with the account name appended.
func (r *roleResolver) Resolve(details *credentials.RoleDetails, accountNames map[string]string, configured string, forcePrompt bool) (*ResolvedRole, error) {
	roles := details.Roles()
	if len(roles) < 1 {
		return nil, credentials.ErrNoRoles
	}

	if len(roles) == 1 {
		return &ResolvedRole{RoleArn: roles[0], PrincipalArn: details.RolePrincipal(roles[0]), Source: RoleSourceOnlyOption}, nil
	}

	if len(configured) > 0 && !forcePrompt {
		for _, role := range roles {
			if role == configured {
				r.logger.Debugf("reusing configured role %s", configured)
				return &ResolvedRole{RoleArn: configured, PrincipalArn: details.RolePrincipal(configured), Source: RoleSourceConfigured}, nil
			}
		}
		r.logger.Debugf("configured role %s not found in assertion", configured)
	}

	choices := make([]string, len(roles))
	for i, role := range roles {
		choices[i] = role
		if name := accountNames[roleAccountId(role)]; len(name) > 0 {
			choices[i] = fmt.Sprintf("%s (%s)", role, name)
		}
	}

	idx, err := r.selector.ReadInput("Please choose the role you would like to assume", choices)
	if err != nil {
		return nil, err
	}

	role := roles[idx]
	return &ResolvedRole{RoleArn: role, PrincipalArn: details.RolePrincipal(role), Source: RoleSourcePrompt}, nil
}
