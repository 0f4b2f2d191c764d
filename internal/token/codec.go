package token // package token signs and verifies the bearer tokens issued by this service

import (
	"crypto/rand"   // secure randomness for jti claims
	"encoding/hex"  // hex encoding for jti claims
	"errors"        // sentinel error kinds and errors.Is
	"fmt"           // error wrapping
	"time"          // expiry arithmetic

	"github.com/golang-jwt/jwt/v5" // JWT library used for both signing domains
)

// Kind names the class of token carried in the `typ` claim. Decoding
// returns the kind so callers can reject, say, an access token presented
// on the refresh endpoint.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
	KindReset   Kind = "reset"
)

// Decode failure kinds. These are deliberately distinguishable: an expired
// token, a structurally broken token and a token signed with the wrong key
// are different conditions even when the caller maps them to one response.
var (
	ErrExpired      = errors.New("token expired")
	ErrMalformed    = errors.New("token malformed")
	ErrBadSignature = errors.New("token signature invalid")
)

// Domain is one signing domain: a secret plus the issuer stamped into
// every token it signs. The service runs two domains — session tokens
// (access/refresh) and action tokens (password reset) — built from
// separate configuration so a leaked action secret cannot forge a
// session token or vice versa.
type Domain struct {
	Secret []byte
	Issuer string
}

// NewDomain builds a signing domain from a secret string.
func NewDomain(secret, issuer string) Domain {
	return Domain{Secret: []byte(secret), Issuer: issuer}
}

// Encode signs an HS256 token over the given subject with the given kind
// and TTL. The claims are sub, typ, iss, iat, exp plus a random jti so
// two tokens minted within the same second still differ.
func (d Domain) Encode(subject string, kind Kind, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	jti, err := randomHex(16)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate jti: %w", err)
	}
	claims := jwt.MapClaims{
		"sub": subject,
		"typ": string(kind),
		"iss": d.Issuer,
		"iat": now.Unix(),
		"exp": exp.Unix(),
		"jti": jti,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(d.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Decode verifies signature and expiry and returns the subject and kind.
// Failures map to exactly one of ErrExpired, ErrBadSignature or
// ErrMalformed.
func (d Domain) Decode(raw string) (string, Kind, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return d.Secret, nil
	}, jwt.WithIssuer(d.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", "", ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", "", ErrBadSignature
		default:
			return "", "", ErrMalformed
		}
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrMalformed
	}
	sub, _ := claims["sub"].(string)
	typ, _ := claims["typ"].(string)
	if sub == "" || typ == "" {
		return "", "", ErrMalformed
	}
	return sub, Kind(typ), nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
