package config

import (
	"bytes"
	"log"
)

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

// MustValidateSecrets aborts startup unless both signing secrets are set
// and distinct. With a shared secret a refresh token would verify as an
// access token, collapsing the two token classes into one.
func (c *Config) MustValidateSecrets() {
	MustNonEmptyBytes(c.JWTAccessSecret, "JWT_SECRET")
	MustNonEmptyBytes(c.JWTRefreshSecret, "REFRESH_SECRET")
	if bytes.Equal(c.JWTAccessSecret, c.JWTRefreshSecret) {
		log.Fatalf("JWT_SECRET and REFRESH_SECRET must be different values")
	}
}
