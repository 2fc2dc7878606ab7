package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus_service/internal/middleware"
)

func TestAuthController_Login(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	auth := middleware.NewAuth(true, "test-secret")
	r := gin.New()
	r.POST("/auth/login", NewAuthController(auth, "admin", hash).Login)

	login := func(body any) *httptest.ResponseRecorder {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := login(gin.H{"username": "admin", "password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, AdminRole, resp.Role)

	token, err := auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.True(t, token.Valid)

	assert.Equal(t, http.StatusUnauthorized, login(gin.H{"username": "admin", "password": "wrong"}).Code)
	assert.Equal(t, http.StatusUnauthorized, login(gin.H{"username": "root", "password": "s3cret"}).Code)
	assert.Equal(t, http.StatusBadRequest, login(gin.H{"username": "admin"}).Code)
}
