package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt hash of password for storage. The cost is
// bcrypt's default; hashes stay verifiable if the cost changes later.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored bcrypt hash.
func CheckPassword(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
