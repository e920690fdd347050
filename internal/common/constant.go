package common

const (
	// DefaultRoleName is assigned to every newly registered user.
	DefaultRoleName = "ROLE_USER"

	// AdminRoleName is reserved for administrative accounts; it is never
	// assigned automatically.
	AdminRoleName = "ROLE_ADMIN"

	// TokenTypeBearer is the token_type value returned with every issued
	// access token.
	TokenTypeBearer = "Bearer"

	// RefreshTokenByteLength is the number of random bytes backing an opaque
	// refresh token (hex-encoded to twice this length).
	RefreshTokenByteLength = 32
)
