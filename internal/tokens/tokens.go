package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Pair is one freshly minted access+refresh set. The Exp fields are unix
// seconds, used to align cookie lifetimes with claim expiry.
type Pair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    int64
	RefreshExp   int64
}

// Issuer mints and verifies both token kinds. Access and refresh tokens
// are signed with distinct secrets, so a refresh token presented on an
// API route fails signature verification outright.
type Issuer struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// NewPair mints both tokens for one subject with a shared issue instant.
// Claims carry only subject and timestamps: role and account status live
// in the store and are re-read on every request.
func (i *Issuer) NewPair(subject uuid.UUID) (*Pair, error) {
	now := time.Now()
	accessExp := now.Add(i.AccessTTL)
	refreshExp := now.Add(i.RefreshTTL)

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	})
	accessStr, err := access.SignedString(i.AccessSecret)
	if err != nil {
		return nil, err
	}

	// the jti makes successive refresh tokens distinct even within one
	// second; without it a same-second rotation would store an identical
	// string and the replaced token would keep working
	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
			ID:        uuid.NewString(),
		},
	})
	refreshStr, err := refresh.SignedString(i.RefreshSecret)
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:  accessStr,
		RefreshToken: refreshStr,
		AccessExp:    accessExp.Unix(),
		RefreshExp:   refreshExp.Unix(),
	}, nil
}
