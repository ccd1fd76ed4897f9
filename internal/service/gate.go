package service

import (
	"net/http"

	"github.com/pdfdesk/backend/internal/model"
)

// Gate authorizes a request against a role set fixed at wiring time. An
// empty set admits any authenticated, active user.
type Gate struct {
	auth  *AuthService
	roles map[model.Role]struct{}
}

func NewGate(auth *AuthService, roles ...model.Role) *Gate {
	set := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return &Gate{auth: auth, roles: set}
}

// Check never mutates persisted state.
func (g *Gate) Check(r *http.Request) (*model.Identity, error) {
	raw := ExtractToken(r.Header.Get("Authorization"))
	if raw == "" {
		return nil, ErrMissingToken
	}

	identity, err := g.auth.authenticate(r.Context(), raw)
	if err != nil {
		return nil, err
	}

	if len(g.roles) > 0 {
		if _, ok := g.roles[identity.Role]; !ok {
			return nil, ErrRoleNotAllowed
		}
	}
	return identity, nil
}
