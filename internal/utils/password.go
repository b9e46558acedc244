package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives the bcrypt digest stored on the users row.  Cost
// comes from configuration so deployments can trade hashing latency
// against brute-force resistance.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored digest.  Any
// error from the comparison, a malformed hash included, counts as a
// mismatch.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
