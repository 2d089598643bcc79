//go:build e2e

package helper

import (
	"testing"
	"time"

	"roomdesk/internal/pkg/config"
	"roomdesk/internal/pkg/jwt"

	"github.com/stretchr/testify/require"
)

type JWTTestHelper struct {
	cfg config.JWTConfig
}

func NewJWTTestHelper(cfg config.JWTConfig) *JWTTestHelper {
	return &JWTTestHelper{cfg: cfg}
}

func (h *JWTTestHelper) GenerateToken(t *testing.T, userID int64, email string) string {
	t.Helper()
	duration, _ := time.ParseDuration(h.cfg.Duration)
	service := jwt.NewService(h.cfg.Secret, duration)
	token, err := service.GenerateToken(userID, email)
	require.NoError(t, err)
	return token
}

func (h *JWTTestHelper) CreateExpiredToken(t *testing.T, userID int64, email string) string {
	t.Helper()
	service := jwt.NewService(h.cfg.Secret, 1*time.Millisecond)
	token, err := service.GenerateToken(userID, email)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	return token
}
