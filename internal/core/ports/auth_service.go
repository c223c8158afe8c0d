package ports

import (
	"context"

	"github.com/landledger/property-transfer/internal/core/domain"
)

// SignupInput carries the self-service end-user registration fields.
type SignupInput struct {
	Username      string
	Password      string
	WalletAddress string
	NationalID    string
}

// Session is the outcome of a successful login or signup.
type Session struct {
	Principal domain.Principal
	// AccessToken is always set.
	AccessToken string
	// RefreshToken is set for end-user sessions only.
	RefreshToken string
}

// AuthService resolves credentials against the four principal classes and
// delegates token minting to the TokenService.
type AuthService interface {
	// Login tries the configured admin pair, then managers, employees and
	// end users in that fixed order, exiting on first match. All failure
	// modes surface as domain.ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (*Session, error)
	// Signup registers a new end user and logs them in immediately.
	// Collisions surface as *domain.DuplicateFieldError naming the field.
	Signup(ctx context.Context, in SignupInput) (*Session, error)
	// WalletRegistered reports whether the address belongs to a
	// registered end user.
	WalletRegistered(ctx context.Context, address string) (bool, error)
}
