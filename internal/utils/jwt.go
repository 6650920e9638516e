package utils // package utils provides token signing and password hashing helpers

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iliyamo/airline-reservation/internal/model"
)

var (
	// ErrTokenMalformed covers bad signatures, foreign algorithms, garbage
	// input and tokens missing the email or user id.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenExpired is returned once the current time is past exp.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the payload carried by an access token. Email travels as the
// standard subject; the profile fields are optional enrichment set at login.
type Claims struct {
	UserID  uint64 `json:"userId"`
	Role    string `json:"rol"`
	Name    string `json:"name,omitempty"`
	Surname string `json:"surname,omitempty"`
	DPI     string `json:"dpi,omitempty"`
	Phone   string `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

// Email returns the subject claim.
func (c Claims) Email() string { return c.Subject }

// Identity converts decoded claims to the caller identity used by the policy.
func (c Claims) Identity() model.Identity {
	return model.Identity{UserID: c.UserID, Email: c.Subject, Role: model.RoleName(c.Role)}
}

// AccessToken is a signed JWT along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // UTC expiration time
}

// Codec issues and decodes HS256 access tokens with a single shared secret.
type Codec struct {
	secret     []byte
	defaultTTL time.Duration
	now        func() time.Time
}

func NewCodec(secret string, defaultTTL time.Duration) *Codec {
	return &Codec{secret: []byte(secret), defaultTTL: defaultTTL, now: time.Now}
}

// WithClock replaces the time source used for iat, exp and validation.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

// Issue signs claims valid for ttl; a non-positive ttl uses the codec default.
func (c *Codec) Issue(claims Claims, ttl time.Duration) (AccessToken, error) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := c.now().UTC().Truncate(time.Second)
	exp := now.Add(ttl)
	claims.Subject = strings.ToLower(strings.TrimSpace(claims.Subject))
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(exp)
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// Decode verifies the signature and expiry of raw and returns its claims.
func (c *Codec) Decode(raw string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	var claims Claims
	_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	case err != nil:
		return Claims{}, ErrTokenMalformed
	}
	if claims.Subject == "" || claims.UserID == 0 {
		return Claims{}, ErrTokenMalformed
	}
	return claims, nil
}
