package auth

import "github.com/avolkovs/healthtrack/internal/server/models"

// Principal is the authentication-relevant view of a user: the subject
// identifier plus the account flags and granted authorities. It keeps the
// domain record from doubling as a framework contract.
type Principal struct {
	Subject     string
	Enabled     bool
	Locked      bool
	Authorities []string
}

// PrincipalFromUser derives a Principal from the stored user record. The
// subject is the user's email, which is also the login name.
func PrincipalFromUser(u *models.User) Principal {
	authorities := make([]string, len(u.Roles))
	copy(authorities, u.Roles)
	return Principal{
		Subject:     u.Email,
		Enabled:     u.Enabled,
		Locked:      u.Locked,
		Authorities: authorities,
	}
}

// CanAuthenticate reports whether the account may log in: it must be
// enabled and not locked.
func (p Principal) CanAuthenticate() bool {
	return p.Enabled && !p.Locked
}
