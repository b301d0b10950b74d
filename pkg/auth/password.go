package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost is fixed for the whole deployment; raising it invalidates no
// existing hashes because the cost is embedded in each digest.
const bcryptCost = bcrypt.DefaultCost

// HashPassword derives a salted bcrypt digest from the plaintext password.
// Two calls on the same input produce different digests.
func HashPassword(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether plain matches the stored bcrypt digest.
// Malformed digests fail closed.
func CheckPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
