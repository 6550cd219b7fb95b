package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	signer := NewSigner([]byte("test-secret"))
	token := signer.Issue("admin@example.com", time.Hour)

	subject, ok := signer.Validate(token)
	require.True(t, ok)
	assert.Equal(t, "admin@example.com", subject)
}

func TestValidateRejectsExpired(t *testing.T) {
	signer := NewSigner([]byte("test-secret"))
	token := signer.Issue("admin@example.com", -time.Minute)

	_, ok := signer.Validate(token)
	assert.False(t, ok)
}

func TestValidateRejectsTamperedSignature(t *testing.T) {
	signer := NewSigner([]byte("test-secret"))
	token := signer.Issue("admin@example.com", time.Hour)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	parts[2] = strings.Repeat("0", len(parts[2]))

	_, ok := signer.Validate(strings.Join(parts, "."))
	assert.False(t, ok)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	token := NewSigner([]byte("secret-a")).Issue("admin@example.com", time.Hour)
	_, ok := NewSigner([]byte("secret-b")).Validate(token)
	assert.False(t, ok)
}

func TestValidateRejectsMalformed(t *testing.T) {
	signer := NewSigner([]byte("test-secret"))
	for _, token := range []string{"", "a.b", "a.b.c.d", "sub.notanumber.sig"} {
		_, ok := signer.Validate(token)
		assert.False(t, ok, "token %q", token)
	}
}
