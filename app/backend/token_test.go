package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func TestParseToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	info, ok := ParseToken(signedToken(t, jwt.MapClaims{"sub": "dash", "exp": exp.Unix()}))
	require.True(t, ok)
	assert.Equal(t, "dash", info.Subject)
	assert.True(t, exp.Equal(info.Expires))

	info, ok = ParseToken(signedToken(t, jwt.MapClaims{"sub": "dash"}))
	require.True(t, ok)
	assert.True(t, info.Expires.IsZero())

	_, ok = ParseToken("opaque-api-key")
	assert.False(t, ok)
	_, ok = ParseToken("  ")
	assert.False(t, ok)
}

func TestClient_SendsBearerToken(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Token: token})
	require.NoError(t, err)
	assert.False(t, c.TokenExpires().IsZero())

	_, err = c.GetCalls(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+token, got)
}

func TestClient_ExpiredTokenIsNotSent(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()})
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Token: token})
	require.NoError(t, err)

	_, err = c.GetCalls(context.Background())
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.False(t, called)
}
