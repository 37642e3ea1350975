// Package auth resolves bearer credentials into principals.
package auth

import "github.com/anonto42/inkwell/backend/internal/models"

// Principal is a verified identity attached to a request.
type Principal struct {
	UserID   uint        `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// Caller is either Authenticated(principal) or Anonymous. The zero value is Anonymous.
type Caller struct {
	principal     Principal
	authenticated bool
}

func Anonymous() Caller {
	return Caller{}
}

func Authenticated(p Principal) Caller {
	return Caller{principal: p, authenticated: true}
}

// Principal returns the verified principal and true, or false for an anonymous caller.
func (c Caller) Principal() (Principal, bool) {
	return c.principal, c.authenticated
}

func (c Caller) IsAuthenticated() bool {
	return c.authenticated
}

func PrincipalOf(u *models.User) Principal {
	return Principal{UserID: u.ID, Username: u.Username, Role: u.Role}
}
