package hash

import "golang.org/x/crypto/bcrypt"

// bcryptCost 12 keeps a single verification around a quarter second on
// current hardware. Raising it later invalidates nothing: stored hashes
// embed their own cost and keep verifying.
const bcryptCost = 12

func HashPassword(password string) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}

	return string(hashbytes), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
