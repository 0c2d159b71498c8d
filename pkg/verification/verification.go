package verification

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// GenerateVerificationCode returns a six-digit numeric OTP.
func GenerateVerificationCode() string {
	var n uint32
	_ = binary.Read(rand.Reader, binary.LittleEndian, &n)
	code := int(n % 1000000)
	return fmt.Sprintf("%06d", code)
}

// NewResetToken returns an opaque password-reset credential. The same
// value is embedded in the reset link and returned by a successful
// reset_password OTP verification.
func NewResetToken() string {
	return uuid.NewString()
}
