package verification

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// HashToken keys a reset token for cache storage so the raw credential is
// never persisted server-side.
func HashToken(secret, token string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(token))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

func VerifyTokenHash(secret, token, storedHash string) bool {
	computed := HashToken(secret, token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
