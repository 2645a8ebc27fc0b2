package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kendall-kelly/bistro-orders-api/config"
	"github.com/kendall-kelly/bistro-orders-api/models"
	"github.com/kendall-kelly/bistro-orders-api/services"
)

// AccessToken signs an access token for user with the secrets in cfg, bypassing login
func AccessToken(t *testing.T, cfg *config.Config, user *models.User, ttl time.Duration) string {
	t.Helper()

	token, err := services.NewAuthService(nil, cfg).CreateAccessToken(user, time.Now().Add(ttl))
	require.NoError(t, err)
	return token
}

// Authorize sets the bearer token on req
func Authorize(req *http.Request, token string) *http.Request {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}
