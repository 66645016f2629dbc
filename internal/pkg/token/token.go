// Package token issues and verifies signed, time-bound identity tokens.
// Tokens are HS256 JWTs with a single process-wide secret; there is no key
// rotation and no revocation, a token dies by expiry or signature mismatch.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the token lifetime applied when the caller does not pass an
// explicit one.
const DefaultTTL = 30 * time.Minute

// subjectAliases is the ordered list of claim names accepted for the subject
// identifier. Tokens minted by the companion Better Auth issuer carry
// "userId"; our own tokens carry "sub".
var subjectAliases = []string{"userId", "sub"}

var (
	// ErrExpired means the token was well-formed and correctly signed but
	// its expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrInvalid covers every other verification failure: bad signature,
	// malformed token, missing expiry, missing subject.
	ErrInvalid = errors.New("token invalid")
)

// Claims is the verified claim set handed to callers.
type Claims struct {
	Subject string
	Email   string
	Name    string
}

// Codec signs and verifies tokens with a shared symmetric secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec builds a Codec. The secret must be non-empty; callers are expected
// to have validated that at startup. A non-positive ttl falls back to
// DefaultTTL.
func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given subject. Email and name are embedded for
// display convenience. A non-positive ttl uses the codec default, so every
// issued token carries an expiry.
func (c *Codec) Issue(subjectID, email, name string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	claims := jwt.MapClaims{
		"sub":   subjectID,
		"email": email,
		"name":  name,
		"exp":   time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks signature and expiry and resolves the subject through the
// accepted claim-name aliases. It never panics across the package boundary:
// every failure is ErrExpired or ErrInvalid.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tkn.Valid {
		return nil, ErrInvalid
	}

	var subject string
	for _, alias := range subjectAliases {
		if v, ok := claims[alias].(string); ok && v != "" {
			subject = v
			break
		}
	}
	if subject == "" {
		return nil, ErrInvalid
	}

	out := &Claims{Subject: subject}
	if v, ok := claims["email"].(string); ok {
		out.Email = v
	}
	if v, ok := claims["name"].(string); ok {
		out.Name = v
	}
	return out, nil
}
