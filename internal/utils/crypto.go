package utils // hashing and random-credential helpers shared by the token, OTP and recovery flows

import (
    "crypto/rand"    // secure random number generation
    "crypto/sha256"  // SHA-256 digests for tokens and OTP codes
    "crypto/subtle"  // constant-time comparison
    "encoding/base64" // url-safe encoding for recovery tokens
    "encoding/hex"   // hex encoding for stored digests
    "fmt"            // zero-padded OTP formatting
    "math/big"       // bound for uniform random ints
)

// HashToken returns the SHA-256 hex digest of a raw credential (refresh
// token, OTP code or recovery token).  Only digests are persisted, so a
// leaked database row cannot be replayed as the credential itself.
func HashToken(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

// ConstantTimeEqual compares two hex-encoded digests in constant time.
// A length mismatch returns false immediately, which is safe because the
// length of a digest is public.  The byte comparison itself never short
// circuits, so a mismatching digest cannot be recovered byte by byte
// through timing.
func ConstantTimeEqual(aHex, bHex string) bool {
    a, err := hex.DecodeString(aHex)
    if err != nil {
        return false
    }
    b, err := hex.DecodeString(bHex)
    if err != nil {
        return false
    }
    if len(a) != len(b) {
        return false
    }
    return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateOTPCode returns a 6-digit numeric code drawn uniformly from
// [000000, 999999].  crypto/rand.Int avoids the modulo bias a naive
// remainder would introduce.
func GenerateOTPCode() (string, error) {
    n, err := rand.Int(rand.Reader, big.NewInt(1000000))
    if err != nil {
        return "", err
    }
    return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateToken returns a url-safe random credential built from n bytes of
// cryptographically secure random data.  Used for link-style recovery
// tokens, which travel in URLs.
func GenerateToken(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return base64.RawURLEncoding.EncodeToString(buf), nil
}
