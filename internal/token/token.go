// Package token issues and verifies the signed, expiring JWTs used for
// access, refresh and password-reset flows.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ErrorKind int

const (
	Malformed ErrorKind = iota + 1
	Expired
	BadSignature
)

func (k ErrorKind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case Expired:
		return "expired"
	case BadSignature:
		return "bad signature"
	default:
		return "unknown"
	}
}

// Error is the only error type Verify returns.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "token " + e.Kind.String() + ": " + e.Err.Error()
	}
	return "token " + e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// IsExpired reports whether err is an expired-token failure.
func IsExpired(err error) bool {
	var tokErr *Error
	return errors.As(err, &tokErr) && tokErr.Kind == Expired
}

// Claims is the minimal claim set carried by every token kind.
type Claims struct {
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type jwtClaims struct {
	Email string `json:"userEmail"`
	Role  string `json:"userRole"`
	jwt.RegisteredClaims
}

type Codec struct {
	now func() time.Time
}

type Option func(*Codec)

// WithClock replaces time.Now for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCodec(opts ...Option) *Codec {
	c := &Codec{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue signs claims with HS256. IssuedAt and ExpiresAt on the input are
// ignored and derived from the codec clock and ttl.
func (c *Codec) Issue(claims Claims, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("token: empty signing secret")
	}
	now := c.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		Email: claims.Email,
		Role:  claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return tok.SignedString(secret)
}

func (c *Codec) Verify(tokenStr string, secret []byte) (*Claims, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, &Error{Kind: Malformed}
	}

	claims := &jwtClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	_, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	if claims.Email == "" || claims.IssuedAt == nil {
		return nil, &Error{Kind: Malformed, Err: errors.New("missing required claims")}
	}

	return &Claims{
		Email:     claims.Email,
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func classify(err error) *Error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &Error{Kind: Expired, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return &Error{Kind: BadSignature, Err: err}
	default:
		return &Error{Kind: Malformed, Err: err}
	}
}
