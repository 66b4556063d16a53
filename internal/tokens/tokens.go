package tokens

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Verification failures all collapse to 401 at the API boundary but stay
// distinguishable for diagnostics.
var (
	ErrExpired      = errors.New("token expired")
	ErrBadSignature = errors.New("token signature invalid")
	ErrMalformed    = errors.New("token malformed")
	ErrWrongType    = errors.New("wrong token type")
)

// Claims is the payload carried by both token kinds. Fresh is only
// meaningful on access tokens: true means the token was minted directly
// from a password check.
type Claims struct {
	Fresh bool   `json:"fresh"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into a user id.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject %q", ErrMalformed, c.Subject)
	}
	return uint(id), nil
}

// Issuer mints and verifies HS256-signed access and refresh tokens with
// a single shared secret. Token kinds are told apart by the type claim.
type Issuer struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (i *Issuer) MintAccess(userID uint, fresh bool) (string, error) {
	return i.mint(userID, TypeAccess, fresh, i.AccessTTL)
}

func (i *Issuer) MintRefresh(userID uint) (string, error) {
	return i.mint(userID, TypeRefresh, false, i.RefreshTTL)
}

func (i *Issuer) mint(userID uint, typ string, fresh bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Fresh: fresh,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
}

// Verify checks signature, expiry and token type. The returned claims are
// only trusted after the revocation ledger has been consulted for the jti.
func (i *Issuer) Verify(tokenStr, expectedType string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected sign method %q", t.Method.Alg())
		}
		return i.Secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	case !tkn.Valid:
		return nil, ErrMalformed
	}
	if claims.Type != expectedType {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongType, claims.Type, expectedType)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrMalformed)
	}
	return &claims, nil
}
