package utils

import (
	"crypto/subtle"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"

	"github.com/joy095/bookmarathon/logger"
)

// GetJWTSecret returns the secret used to verify session tokens presented
// by the front end.
func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.WarnLogger.Warn("JWT_SECRET environment variable not set")
		return []byte("default-insecure-secret-only-for-development")
	}
	return []byte(secret)
}

// HashAccessCode derives an argon2id digest of an admin access code. The
// deployed ADMIN_ACCESS_HASH value is produced with the same parameters.
func HashAccessCode(code string) string {
	salt := []byte("book-marathon-access")
	hashed := argon2.IDKey([]byte(code), salt, 1, 64*1024, 4, 32)
	return fmt.Sprintf("%x", hashed)
}

// VerifyAccessCode compares a presented access code against the configured
// digest in constant time.
func VerifyAccessCode(code, expectedHash string) bool {
	if expectedHash == "" {
		return false
	}
	digest := HashAccessCode(code)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(expectedHash)) == 1
}
