// Package testutil wires fiber apps, users and tokens for handler tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"procurement-backend/internal/auth"
	"procurement-backend/internal/config"
	"procurement-backend/internal/httpx"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const JWTSecret = "test-secret-0123456789-abcdefghijklmnop"

func Config() *config.Config {
	return &config.Config{
		DBDriver:           "postgres",
		JWTSecret:          JWTSecret,
		TokenTTL:           time.Hour,
		DefaultPhoneRegion: "US",
		ServiceName:        "procurement-backend-test",
	}
}

// Logger discards everything.
func Logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func SetupApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: httpx.ErrorHandler(Logger()),
	})
}

// AuthGroup mounts a group behind the JWT middleware.
func AuthGroup(app *fiber.App, cfg *config.Config, path string) fiber.Router {
	return app.Group(path, auth.JWTMiddleware(cfg))
}

func SeedTestUser(t *testing.T, store repository.Store, name string, role models.UserRole) *models.User {
	t.Helper()
	u := &models.User{
		FullName:     name,
		Email:        fmt.Sprintf("%s-%d@test.local", role, time.Now().UnixNano()),
		PasswordHash: "x",
		Role:         role,
	}
	if err := store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("Failed to seed test user: %v", err)
	}
	return u
}

func TokenFor(t *testing.T, cfg *config.Config, u *models.User) string {
	t.Helper()
	token, err := auth.GenerateToken(cfg.JWTSecret, cfg.TokenTTL, u)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

// DoRequest runs one request through the app.
func DoRequest(t *testing.T, app *fiber.App, method, path string, body any, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	return resp
}

// ParseResponse decodes the JSON body into dst and closes it.
func ParseResponse(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

// ExpectStatus fails the test when the response code differs, printing the body.
func ExpectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want %d, body: %s", resp.StatusCode, want, b)
	}
}
