package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "riffraff/internal/pkg/errors"
	"riffraff/internal/platform/config"
	"riffraff/internal/platform/metrics"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	issuer = "riffraff"
)

type Claims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// TokenService mints and validates access/refresh token pairs. Tokens are
// stateless: there is no revocation, a token stays valid until it expires.
type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*TokenService)

// WithClock replaces the time source used for issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(cfg config.JWTConfig, opts ...Option) (*TokenService, error) {
	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, errors.New("unsupported signing algorithm: " + cfg.Algorithm)
	}
	if cfg.Secret == "" {
		return nil, errors.New("signing secret is empty")
	}

	s := &TokenService{
		secret:     []byte(cfg.Secret),
		method:     method,
		accessTTL:  cfg.AccessTokenTTL(),
		refreshTTL: cfg.RefreshTokenTTL(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue generates an access and a refresh token for subject. The two share
// the subject but have independent expiries.
func (s *TokenService) Issue(subject string) (TokenPair, error) {
	access, err := s.sign(subject, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(subject, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	metrics.TokensIssued.WithLabelValues(TokenTypeAccess).Inc()
	metrics.TokensIssued.WithLabelValues(TokenTypeRefresh).Inc()
	return TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// Refresh exchanges a refresh token for a fresh access token. The refresh
// token itself is returned unchanged and stays usable until its own expiry.
func (s *TokenService) Refresh(refreshToken string) (TokenPair, error) {
	claims, err := s.Decode(refreshToken, TokenTypeRefresh)
	if err != nil {
		return TokenPair{}, err
	}

	access, err := s.sign(claims.Subject, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	metrics.TokensIssued.WithLabelValues(TokenTypeAccess).Inc()
	return TokenPair{AccessToken: access, RefreshToken: refreshToken, TokenType: "bearer"}, nil
}

// Decode validates signature, algorithm and expiry (against the service
// clock) and returns the claims. A non-empty want also enforces the token
// type. Failures are ErrExpiredToken or ErrInvalidToken.
func (s *TokenService) Decode(tokenString, want string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			metrics.TokenRejections.WithLabelValues("expired").Inc()
			return nil, apperrors.ErrExpiredToken
		}
		metrics.TokenRejections.WithLabelValues("invalid").Inc()
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		metrics.TokenRejections.WithLabelValues("invalid").Inc()
		return nil, apperrors.ErrInvalidToken
	}
	if want != "" && claims.Type != want {
		metrics.TokenRejections.WithLabelValues("wrong_type").Inc()
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}

func (s *TokenService) sign(subject, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(s.method, claims)
	return token.SignedString(s.secret)
}
