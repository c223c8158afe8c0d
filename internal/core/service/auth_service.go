package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/landledger/property-transfer/internal/core/domain"
	"github.com/landledger/property-transfer/internal/core/ports"
)

// AdminCredentials is the configured super-admin pair. The admin principal
// is not stored; the pair is compared directly at login time.
type AdminCredentials struct {
	Username string
	Password string
}

// AuthService authenticates all four principal classes.
type AuthService struct {
	principals ports.PrincipalRepository
	tokens     ports.TokenService
	resolvers  []resolver
	log        zerolog.Logger
}

// resolver attempts one principal class. A nil principal with a nil error
// means "no match in this class" and the cascade moves on: a wrong
// password falls through exactly like an unknown username.
type resolver struct {
	class   string
	resolve func(ctx context.Context, username, password string) (*domain.Principal, error)
}

func NewAuthService(principals ports.PrincipalRepository, tokens ports.TokenService, admin AdminCredentials, log zerolog.Logger) *AuthService {
	s := &AuthService{principals: principals, tokens: tokens, log: log}
	// Resolution order is fixed: admin, managers, employees, end users.
	s.resolvers = []resolver{
		{class: domain.RoleAdmin, resolve: s.resolveAdmin(admin)},
		{class: domain.RoleManager, resolve: s.resolveStaff(domain.RoleManager, principals.FindManagerByUsername)},
		{class: domain.RoleEmployee, resolve: s.resolveStaff(domain.RoleEmployee, principals.FindEmployeeByUsername)},
		{class: domain.RoleEndUser, resolve: s.resolveEndUser},
	}
	return s
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		// Client-facing this is the same failure as a bad password, so
		// the response never reveals which part was wrong.
		s.log.Debug().Msg("login rejected: missing username or password")
		return nil, domain.ErrInvalidCredentials
	}

	for _, r := range s.resolvers {
		p, err := r.resolve(ctx, username, password)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}

		session := &ports.Session{Principal: *p}
		if session.AccessToken, err = s.tokens.IssueAccess(*p); err != nil {
			return nil, err
		}
		if p.Role == domain.RoleEndUser {
			if session.RefreshToken, err = s.tokens.IssueRefresh(*p); err != nil {
				return nil, err
			}
		}
		s.log.Info().Str("principal_id", p.ID).Str("role", p.Role).Msg("login succeeded")
		return session, nil
	}

	s.log.Info().Str("username", username).Msg("login failed: no matching principal")
	return nil, domain.ErrInvalidCredentials
}

func (s *AuthService) resolveAdmin(admin AdminCredentials) func(context.Context, string, string) (*domain.Principal, error) {
	return func(_ context.Context, username, password string) (*domain.Principal, error) {
		if admin.Username == "" {
			return nil, nil
		}
		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(admin.Username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(admin.Password)) == 1
		if !userOK || !passOK {
			return nil, nil
		}
		return &domain.Principal{ID: "admin", Username: admin.Username, Role: domain.RoleAdmin}, nil
	}
}

func (s *AuthService) resolveStaff(role string, find func(context.Context, string) (*domain.Staff, error)) func(context.Context, string, string) (*domain.Principal, error) {
	return func(ctx context.Context, username, password string) (*domain.Principal, error) {
		staff, err := find(ctx, username)
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		if bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password)) != nil {
			return nil, nil
		}
		p := staff.Principal(role)
		return &p, nil
	}
}

func (s *AuthService) resolveEndUser(ctx context.Context, username, password string) (*domain.Principal, error) {
	user, err := s.principals.FindEndUserByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	p := user.Principal()
	return &p, nil
}

func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*ports.Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.WalletAddress = strings.TrimSpace(in.WalletAddress)
	in.NationalID = strings.TrimSpace(in.NationalID)
	if in.Username == "" || in.Password == "" || in.WalletAddress == "" || in.NationalID == "" {
		return nil, domain.ErrMissingFields
	}

	// Friendly pre-check across all three unique fields. The storage
	// unique indexes still catch the insertion race.
	field, err := s.principals.FindEndUserConflict(ctx, in.Username, in.NationalID, in.WalletAddress)
	if err != nil {
		return nil, err
	}
	if field != "" {
		return nil, &domain.DuplicateFieldError{Field: field}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user, err := s.principals.CreateEndUser(ctx, &domain.EndUser{
		Username:      in.Username,
		PasswordHash:  string(hash),
		WalletAddress: in.WalletAddress,
		NationalID:    in.NationalID,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	p := user.Principal()
	session := &ports.Session{Principal: p}
	if session.AccessToken, err = s.tokens.IssueAccess(p); err != nil {
		return nil, err
	}
	if session.RefreshToken, err = s.tokens.IssueRefresh(p); err != nil {
		return nil, err
	}

	s.log.Info().Str("principal_id", p.ID).Str("wallet", p.WalletAddress).Msg("end user registered")
	return session, nil
}

func (s *AuthService) WalletRegistered(ctx context.Context, address string) (bool, error) {
	_, err := s.principals.FindEndUserByWallet(ctx, strings.TrimSpace(address))
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrPrincipalNotFound)
}
