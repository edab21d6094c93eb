package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucavt/carpool/internal/auth"
	"github.com/lucavt/carpool/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAuthenticate_MissingToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/bookings/my-bookings", nil)

	Authenticate(tokens)(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/bookings/my-bookings", nil)
	c.Request.Header.Set("Authorization", "Bearer not-a-jwt")

	Authenticate(tokens)(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestAuthenticate_ValidToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	token, err := tokens.Generate(&domain.User{ID: 42, IsDriver: true, Role: "user"})
	assert.NoError(t, err)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/bookings/my-bookings", nil)
	c.Request.Header.Set("Authorization", "Bearer "+token)

	Authenticate(tokens)(c)

	assert.False(t, c.IsAborted())
	claims := currentClaims(c)
	assert.NotNil(t, claims)
	assert.Equal(t, int64(42), claims.UserID)
	assert.True(t, claims.IsDriver)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	issuer := auth.NewTokenManager("other-secret", time.Hour)
	token, err := issuer.Generate(&domain.User{ID: 42})
	assert.NoError(t, err)

	tokens := auth.NewTokenManager("test-secret", time.Hour)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/bookings/my-bookings", nil)
	c.Request.Header.Set("Authorization", "Bearer "+token)

	Authenticate(tokens)(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}
