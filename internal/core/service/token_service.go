package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/landledger/property-transfer/internal/core/domain"
)

// TokenClaims is the JWT payload shared by access and refresh tokens.
type TokenClaims struct {
	Username      string `json:"username,omitempty"`
	Role          string `json:"role"`
	WalletAddress string `json:"wallet_address,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the bearer artifacts with HS256. Access
// and refresh tokens use separate secrets so an access secret leak does not
// compromise week-long sessions.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *TokenService) IssueAccess(p domain.Principal) (string, error) {
	return s.sign(p, s.accessSecret, s.accessTTL)
}

func (s *TokenService) IssueRefresh(p domain.Principal) (string, error) {
	return s.sign(p, s.refreshSecret, s.refreshTTL)
}

func (s *TokenService) sign(p domain.Principal, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := TokenClaims{
		Username:      p.Username,
		Role:          p.Role,
		WalletAddress: p.WalletAddress,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccess validates an access token. Expiry is reported distinctly
// from every other defect so the middleware can attempt a silent refresh.
func (s *TokenService) VerifyAccess(token string) (*domain.Principal, error) {
	p, err := parse(token, s.accessSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	return p, nil
}

// Refresh validates the refresh token and mints a fresh access token bound
// to the same claims. A single hop only: the refresh token is never
// renewed, so a session hard-expires with it.
func (s *TokenService) Refresh(refreshToken string) (string, *domain.Principal, error) {
	p, err := parse(refreshToken, s.refreshSecret)
	if err != nil {
		return "", nil, domain.ErrSessionExpired
	}
	access, err := s.IssueAccess(*p)
	if err != nil {
		return "", nil, err
	}
	return access, p, nil
}

func parse(token string, secret []byte) (*domain.Principal, error) {
	claims := &TokenClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return &domain.Principal{
		ID:            claims.Subject,
		Username:      claims.Username,
		Role:          claims.Role,
		WalletAddress: claims.WalletAddress,
	}, nil
}
