package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Sign returns base64(HMAC-SHA256(secret, subject)), the value the service
// expects in the user HMAC header.
func Sign(secret, subject string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(subject))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
