package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// ComputeHash returns the base64 HMAC-SHA256 digest of the payload, the
// format Connect sends in its X-DocuSign-Signature-N headers.
func ComputeHash(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidSignature reports whether the header signature matches the payload
// under the shared secret, in constant time.
func ValidSignature(secret, payload []byte, signature string) bool {
	return hmac.Equal([]byte(signature), []byte(ComputeHash(secret, payload)))
}
