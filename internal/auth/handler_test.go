package auth_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"procurement-backend/internal/auth"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository/memory"
	"procurement-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
)

func setup(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	cfg := testutil.Config()
	store := memory.NewStore()
	h := auth.NewHandler(cfg, store, testutil.Logger())

	app := testutil.SetupApp()
	app.Post("/api/auth/register", h.Register())
	app.Post("/api/auth/register-admin", h.RegisterAdmin())
	app.Post("/api/auth/login", h.Login())
	g := testutil.AuthGroup(app, cfg, "/api")
	g.Get("/auth/me", h.Me())
	g.Post("/admin/users", auth.RequireRole(models.RoleAdmin), h.CreateUser())
	return app, store
}

type loginResponse struct {
	Token string            `json:"token"`
	User  auth.UserResponse `json:"user"`
}

func register(t *testing.T, app *fiber.App, path, email string) {
	t.Helper()
	resp := testutil.DoRequest(t, app, http.MethodPost, path, map[string]any{
		"full_name": "Test User",
		"email":     email,
		"password":  "s3cret-pass",
	}, "")
	testutil.ExpectStatus(t, resp, http.StatusCreated)
}

func login(t *testing.T, app *fiber.App, email, password string) *http.Response {
	t.Helper()
	return testutil.DoRequest(t, app, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, "")
}

func TestRegisterCreatesBuyer(t *testing.T) {
	app, _ := setup(t)
	register(t, app, "/api/auth/register", "Buyer@Example.com")

	resp := login(t, app, "buyer@example.com", "s3cret-pass")
	testutil.ExpectStatus(t, resp, http.StatusOK)
	var got loginResponse
	testutil.ParseResponse(t, resp, &got)
	if got.Token == "" || got.User.Role != models.RoleBuyer || got.User.Email != "buyer@example.com" {
		t.Errorf("got %+v", got)
	}

	resp = testutil.DoRequest(t, app, http.MethodGet, "/api/auth/me", nil, got.Token)
	testutil.ExpectStatus(t, resp, http.StatusOK)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app, _ := setup(t)
	register(t, app, "/api/auth/register", "dup@example.com")

	resp := testutil.DoRequest(t, app, http.MethodPost, "/api/auth/register", map[string]any{
		"full_name": "Again",
		"email":     "dup@example.com",
		"password":  "s3cret-pass",
	}, "")
	testutil.ExpectStatus(t, resp, http.StatusConflict)
}

func TestRegisterValidation(t *testing.T) {
	app, _ := setup(t)
	resp := testutil.DoRequest(t, app, http.MethodPost, "/api/auth/register", map[string]any{
		"full_name": "x",
		"email":     "not-an-email",
		"password":  "short",
	}, "")
	testutil.ExpectStatus(t, resp, http.StatusBadRequest)

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	testutil.ParseResponse(t, resp, &body)
	if body.Fields["email"] != "email" || body.Fields["password"] != "min" {
		t.Errorf("fields = %v", body.Fields)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	app, _ := setup(t)
	register(t, app, "/api/auth/register", "u@example.com")

	testutil.ExpectStatus(t, login(t, app, "u@example.com", "wrong-pass"), http.StatusUnauthorized)
	testutil.ExpectStatus(t, login(t, app, "nobody@example.com", "s3cret-pass"), http.StatusUnauthorized)
}

func TestRegisterAdminOnlyOnce(t *testing.T) {
	app, _ := setup(t)
	register(t, app, "/api/auth/register-admin", "admin@example.com")

	resp := testutil.DoRequest(t, app, http.MethodPost, "/api/auth/register-admin", map[string]any{
		"full_name": "Other",
		"email":     "other@example.com",
		"password":  "s3cret-pass",
	}, "")
	testutil.ExpectStatus(t, resp, http.StatusForbidden)
}

func TestAdminCreatesInspector(t *testing.T) {
	app, store := setup(t)
	cfg := testutil.Config()
	admin := testutil.SeedTestUser(t, store, "Admin", models.RoleAdmin)
	buyer := testutil.SeedTestUser(t, store, "Buyer", models.RoleBuyer)
	body := map[string]any{
		"full_name": "Ivan Inspector",
		"email":     "ivan@example.com",
		"password":  "s3cret-pass",
		"role":      "inspector",
	}

	resp := testutil.DoRequest(t, app, http.MethodPost, "/api/admin/users", body, testutil.TokenFor(t, cfg, buyer))
	testutil.ExpectStatus(t, resp, http.StatusForbidden)

	resp = testutil.DoRequest(t, app, http.MethodPost, "/api/admin/users", body, testutil.TokenFor(t, cfg, admin))
	testutil.ExpectStatus(t, resp, http.StatusCreated)
	var got auth.UserResponse
	testutil.ParseResponse(t, resp, &got)
	if got.Role != models.RoleInspector {
		t.Errorf("role = %s", got.Role)
	}
}

func TestMeRejectsBadTokens(t *testing.T) {
	app, _ := setup(t)
	testutil.ExpectStatus(t, testutil.DoRequest(t, app, http.MethodGet, "/api/auth/me", nil, ""), http.StatusUnauthorized)
	testutil.ExpectStatus(t, testutil.DoRequest(t, app, http.MethodGet, "/api/auth/me", nil, "garbage"), http.StatusUnauthorized)
}

func TestRegisterAdminConcurrentCallersGetOneAdmin(t *testing.T) {
	app, store := setup(t)
	const callers = 5

	codes := make([]int, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"full_name":"Admin %d","email":"admin%d@example.com","password":"s3cret-pass"}`, i, i)
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register-admin", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			if err != nil {
				codes[i] = -1
				return
			}
			codes[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusForbidden:
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	if created != 1 {
		t.Errorf("created = %d, codes = %v", created, codes)
	}

	admins, err := store.Users().CountByRole(context.Background(), models.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}
	if admins != 1 {
		t.Errorf("admins = %d", admins)
	}
}
