package platform

import (
	"crypto/rand"
	"strings"

	"github.com/google/uuid"
)

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const callbackTokenLength = 48

func NewID() string {
	return uuid.New().String()
}

// IdempotencyToken derives a certificate-request idempotency token from a
// tenant UUID. The certificate authority restricts tokens to 32 characters,
// so the dashes are stripped.
func IdempotencyToken(tenantUUID string) string {
	return strings.ReplaceAll(tenantUUID, "-", "")
}

// NewCallbackToken returns an opaque token for a suspended workflow step.
func NewCallbackToken() string {
	b := make([]byte, callbackTokenLength)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	for i := range b {
		b[i] = tokenAlphabet[b[i]%byte(len(tokenAlphabet))]
	}
	return string(b)
}
