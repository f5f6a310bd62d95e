// Package auth verifies the HS256 bearer tokens issued by the session
// service and turns them into core users.
package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/JonMunkholm/scidesk/internal/core"
	"github.com/dgrijalva/jwt-go"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	UserID     int64  `json:"uid"`
	Identifier string `json:"identifier,omitempty"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role"`
}

// Verifier checks tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a Verifier. An empty issuer accepts any issuer.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses and validates token and returns the user it names.
// Every failure wraps core.ErrUnauthorized.
func (v *Verifier) Verify(token string) (core.User, error) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return core.User{}, fmt.Errorf("%w: %v", core.ErrUnauthorized, err)
	}
	if !parsed.Valid {
		return core.User{}, core.ErrUnauthorized
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return core.User{}, fmt.Errorf("%w: unexpected issuer %q", core.ErrUnauthorized, claims.Issuer)
	}

	role := core.Role(claims.Role)
	switch role {
	case core.RoleUser, core.RoleCoordinator, core.RoleAdmin:
	default:
		return core.User{}, fmt.Errorf("%w: unknown role %q", core.ErrUnauthorized, claims.Role)
	}

	id := claims.UserID
	if id == 0 && claims.Subject != "" {
		if id, err = strconv.ParseInt(claims.Subject, 10, 64); err != nil {
			return core.User{}, fmt.Errorf("%w: invalid subject", core.ErrUnauthorized)
		}
	}
	if id == 0 {
		return core.User{}, fmt.Errorf("%w: token names no user", core.ErrUnauthorized)
	}
	// Form records are owned by identifier; only admins may go without one.
	if role != core.RoleAdmin && claims.Identifier == "" {
		return core.User{}, fmt.Errorf("%w: %s token without identifier", core.ErrUnauthorized, role)
	}

	return core.User{
		ID:         id,
		Identifier: claims.Identifier,
		Email:      claims.Email,
		Role:       role,
	}, nil
}

// Issue signs a token for u valid for ttl. Used by the admin CLI and tests.
func Issue(secret, issuer string, u core.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
		UserID:     u.ID,
		Identifier: u.Identifier,
		Email:      u.Email,
		Role:       string(u.Role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
