package tokens

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Gigatchad/e-learning/internal/domain"
)

// AccessClaims is the payload of the short-lived API token.
type AccessClaims struct {
	jwt.RegisteredClaims
}

// ParseAccess verifies signature and expiry, translating library errors
// into the domain taxonomy. Expiry is reported separately so clients know
// a refresh attempt is worthwhile.
func (i *Issuer) ParseAccess(tokenStr string) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return i.AccessSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}
	if !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}
	return &claims, nil
}
