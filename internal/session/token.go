// Package session issues and validates HMAC-signed session tokens and caches
// the signed-in profile so independent handlers can read it without
// re-fetching.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Signer generates and validates session tokens of the form
// subject.expiry.signature.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer.
func NewSigner(secret []byte) *Signer {
	return &Signer{secret: secret}
}

// Issue returns a token for the subject valid for ttl.
func (s *Signer) Issue(subject string, ttl time.Duration) string {
	expires := time.Now().Add(ttl).Unix()
	sub := base64.RawURLEncoding.EncodeToString([]byte(subject))
	return fmt.Sprintf("%s.%d.%s", sub, expires, s.sign(sub, expires))
}

// Validate checks the signature and expiry and returns the subject.
func (s *Signer) Validate(token string) (string, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", false
	}
	expires, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || time.Now().Unix() >= expires {
		return "", false
	}
	expected := s.sign(parts[0], expires)
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return "", false
	}
	subject, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", false
	}
	return string(subject), true
}

func (s *Signer) sign(sub string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%d", sub, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
