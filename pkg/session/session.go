// Package session encodes the admin session into an encrypted, signed cookie.
//
// The cookie value is an HS256 JWT carrying the session user, sealed with
// AES-GCM and base64url encoded. Both keys are derived from one secret.
package session

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jwalitptl/dental-admin/pkg/security"
)

const (
	DefaultCookieName = "session"
	DefaultTTL        = 8 * time.Hour
)

var ErrInvalid = errors.New("invalid session")

// User is the identity stored in the session cookie
type User struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Session is the decoded cookie payload
type Session struct {
	User User `json:"user"`
	// Token is the backend access token used when proxying calls.
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

type claims struct {
	User  User   `json:"user"`
	Token string `json:"token,omitempty"`
	jwt.RegisteredClaims
}

// Options controls how cookies are written
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
	Domain     string
}

type Codec struct {
	enc     security.Encryptor
	signKey []byte
	opts    Options
	now     func() time.Time
}

func NewCodec(secret string, opts Options) (*Codec, error) {
	encKey, err := security.DeriveKey([]byte(secret), "dental-admin/session/encryption")
	if err != nil {
		return nil, fmt.Errorf("derive encryption key: %w", err)
	}
	signKey, err := security.DeriveKey([]byte(secret), "dental-admin/session/signature")
	if err != nil {
		return nil, fmt.Errorf("derive signing key: %w", err)
	}
	enc, err := security.NewAESEncryptor(encKey)
	if err != nil {
		return nil, err
	}

	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	return &Codec{enc: enc, signKey: signKey, opts: opts, now: time.Now}, nil
}

// WithClock returns a copy of the codec that reads time from now
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Codec) CookieName() string {
	return c.opts.CookieName
}

func (c *Codec) TTL() time.Duration {
	return c.opts.TTL
}

// Encode signs and encrypts the session; expiry is now+TTL
func (c *Codec) Encode(user User, backendToken string) (string, error) {
	issued := c.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		User:  user,
		Token: backendToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UUID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(c.opts.TTL)),
		},
	})

	signed, err := tok.SignedString(c.signKey)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}

	sealed, err := c.enc.Encrypt([]byte(signed))
	if err != nil {
		return "", fmt.Errorf("encrypt session: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Verify decodes value, returning ErrInvalid for anything that is not a
// current session minted by this codec.
func (c *Codec) Verify(value string) (*Session, error) {
	if value == "" {
		return nil, ErrInvalid
	}

	sealed, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	signed, err := c.enc.Decrypt(sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var cl claims
	_, err = jwt.ParseWithClaims(string(signed), &cl, func(*jwt.Token) (interface{}, error) {
		return c.signKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if cl.User.UUID == "" {
		return nil, fmt.Errorf("%w: missing user", ErrInvalid)
	}

	return &Session{
		User:      cl.User,
		Token:     cl.Token,
		ExpiresAt: cl.ExpiresAt.Time,
	}, nil
}

// Decode is Verify without the error: invalid or expired values yield nil
func (c *Codec) Decode(value string) *Session {
	s, err := c.Verify(value)
	if err != nil {
		return nil
	}
	return s
}

// Cookie builds the Set-Cookie value for an encoded session
func (c *Codec) Cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     c.opts.CookieName,
		Value:    value,
		Path:     "/",
		Domain:   c.opts.Domain,
		MaxAge:   int(c.opts.TTL.Seconds()),
		Expires:  c.now().Add(c.opts.TTL),
		HttpOnly: true,
		Secure:   c.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie clears the session cookie
func (c *Codec) ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.opts.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   c.opts.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
