package tokens

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Gigatchad/e-learning/internal/domain"
)

// RefreshClaims is the payload of the long-lived rotation token. A
// distinct type keeps the two parse paths from ever being mixed up.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

func (i *Issuer) ParseRefresh(tokenStr string) (*RefreshClaims, error) {
	var claims RefreshClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return i.RefreshSecret, nil
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
