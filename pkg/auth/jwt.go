package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrMissingToken  = errors.New("missing authentication token")
	ErrInvalidClaims = errors.New("invalid token claims")
)

// CallerKind distinguishes the two actor classes the HTTP/Lambda front door
// authenticates: an interactive user and an ai-mcp collaborator. It maps
// 1:1 onto application/adapter.OriginUser / OriginAIMCP, which is why a
// request's claims, not its route, decide which rate limiter and which
// transaction origin a handler uses.
type CallerKind string

const (
	CallerUser  CallerKind = "user"
	CallerAIMCP CallerKind = "ai-mcp"
)

// Claims is the document core's JWT payload: who is calling, as what kind
// of actor, and which document they're scoped to.
type Claims struct {
	Subject    string     `json:"sub"`
	Kind       CallerKind `json:"kind"`
	DocumentID string     `json:"documentId,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuthenticator validates HS256 bearer tokens issued for the front door.
// Unlike the teacher's JWTValidator, which also supports RS256 for its
// multi-tenant IdP integration, this module only accepts tokens minted with
// its own shared secret (IssueToken), so a single shared secret is enough.
type JWTAuthenticator struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
}

// NewJWTAuthenticator creates an authenticator for tokens signed with
// secret and expected to carry issuer, with new tokens minted for ttl.
func NewJWTAuthenticator(secret, issuer string, ttl time.Duration) *JWTAuthenticator {
	return &JWTAuthenticator{secretKey: []byte(secret), issuer: issuer, ttl: ttl}
}

// IssueToken mints a token for subject acting as kind, optionally scoped to
// documentID (empty means the holder may open any document the rest of the
// authorization stack permits).
func (a *JWTAuthenticator) IssueToken(subject string, kind CallerKind, documentID string) (string, error) {
	now := time.Now()
	claims := Claims{
		Subject:    subject,
		Kind:       kind,
		DocumentID: documentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secretKey)
}

// ValidateToken parses and validates a bearer token, stripping a leading
// "Bearer " prefix if present.
func (a *JWTAuthenticator) ValidateToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if a.issuer != "" && claims.Issuer != a.issuer {
		return nil, fmt.Errorf("%w: unexpected issuer", ErrInvalidClaims)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidClaims)
	}
	if claims.Kind != CallerUser && claims.Kind != CallerAIMCP {
		return nil, fmt.Errorf("%w: unknown caller kind %q", ErrInvalidClaims, claims.Kind)
	}

	return claims, nil
}

// contextKey namespaces context.Context values this package installs, so a
// plain string key from an unrelated package can never collide.
type contextKey string

const claimsContextKey contextKey = "authClaims"

// ContextWithClaims attaches claims to ctx, for middleware to pass
// authenticated identity down to a handler.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext retrieves the claims ContextWithClaims attached, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}
