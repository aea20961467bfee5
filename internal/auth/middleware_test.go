package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, v *Verifier, header string) (*httptest.ResponseRecorder, *uuid.UUID) {
	t.Helper()
	e := echo.New()
	var seen *uuid.UUID
	e.GET("/", func(c echo.Context) error {
		seen = UserIDFromContext(c)
		return c.NoContent(http.StatusOK)
	}, v.Optional)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestOptional(t *testing.T) {
	v := NewVerifier("test-secret")
	user := uuid.New()
	token, err := v.Issue(user, time.Hour)
	require.NoError(t, err)

	expired, err := v.Issue(user, -time.Minute)
	require.NoError(t, err)

	foreign, err := NewVerifier("other-secret").Issue(user, time.Hour)
	require.NoError(t, err)

	t.Run("guest", func(t *testing.T) {
		rec, seen := serve(t, v, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, seen)
	})

	t.Run("valid token", func(t *testing.T) {
		rec, seen := serve(t, v, "Bearer "+token)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, user, *seen)
	})

	for name, header := range map[string]string{
		"expired":       "Bearer " + expired,
		"wrong secret":  "Bearer " + foreign,
		"bad format":    "Token " + token,
		"garbage token": "Bearer abc.def.ghi",
	} {
		t.Run(name, func(t *testing.T) {
			rec, seen := serve(t, v, header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, seen)
		})
	}
}

func TestOptional_NoSecretMeansGuest(t *testing.T) {
	v := NewVerifier("  ")
	assert.Nil(t, v)

	rec, seen := serve(t, v, "Bearer whatever")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, seen)
}

func TestParseUserID_RejectsNonUUIDSubject(t *testing.T) {
	v := NewVerifier("test-secret")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = v.ParseUserID(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
