package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileUpdateNormalizesAvatarShapes(t *testing.T) {
	env := newTestEnv(t)

	// A bare URL string.
	body := `{"name":"Dispatch Lead","avatar":"https://cdn.test/avatars/a.png"}`
	rec := env.do(t, httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(body)), true)
	requireStatus(t, rec, http.StatusOK)

	p, ok := env.profiles.Get("p1")
	require.True(t, ok)
	assert.Equal(t, "Dispatch Lead", p.Name)
	assert.Equal(t, "https://cdn.test/avatars/a.png", p.AvatarURL)

	// A descriptor object with the alternate field spellings.
	body = `{"avatar":{"fileUrl":"https://cdn.test/avatars/b.png","documentType":"image/png"}}`
	rec = env.do(t, httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(body)), true)
	requireStatus(t, rec, http.StatusOK)

	p, _ = env.profiles.Get("p1")
	assert.Equal(t, "https://cdn.test/avatars/b.png", p.AvatarURL)
	// The name was omitted this time and survives untouched.
	assert.Equal(t, "Dispatch Lead", p.Name)
}

func TestProfileUpdateNullAvatarKeepsExisting(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(`{"avatar":"https://cdn.test/x.png"}`)), true)
	requireStatus(t, rec, http.StatusOK)

	rec = env.do(t, httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(`{"name":"Renamed","avatar":null}`)), true)
	requireStatus(t, rec, http.StatusOK)

	p, _ := env.profiles.Get("p1")
	assert.Equal(t, "https://cdn.test/x.png", p.AvatarURL)
	assert.Equal(t, "Renamed", p.Name)
}

func TestProfileSaveIsTwoSeparateSteps(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(`{"name":"Step One"}`)), true)
	requireStatus(t, rec, http.StatusOK)
	var first struct {
		Step string `json:"step"`
	}
	require.NoError(t, decodeBody(rec, &first))
	assert.Equal(t, "profile", first.Step)

	rec = env.do(t, httptest.NewRequest(http.MethodPut, "/profile/verification", strings.NewReader(`{"verified":true}`)), true)
	requireStatus(t, rec, http.StatusOK)
	var second struct {
		Step string `json:"step"`
	}
	require.NoError(t, decodeBody(rec, &second))
	assert.Equal(t, "verification", second.Step)

	p, _ := env.profiles.Get("p1")
	assert.Equal(t, "Step One", p.Name)
	assert.True(t, p.Verified)
}
