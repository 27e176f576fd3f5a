package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/artem13815/accounts/pkg/auth"
	"github.com/artem13815/accounts/pkg/notify"
	"github.com/artem13815/accounts/pkg/security/jwt"
)

type mockAuthUseCase struct {
	mock.Mock
}

func (m *mockAuthUseCase) Register(ctx context.Context, in auth.RegisterInput) (auth.User, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(auth.User), args.Error(1)
}

func (m *mockAuthUseCase) Verify(ctx context.Context, token string) (auth.User, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(auth.User), args.Error(1)
}

func (m *mockAuthUseCase) Login(ctx context.Context, email, password string) (auth.AuthResult, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(auth.AuthResult), args.Error(1)
}

func (m *mockAuthUseCase) Profile(ctx context.Context, id uuid.UUID) (auth.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(auth.User), args.Error(1)
}

const successURL = "https://app.example.com/auth/verification-success"

func newTestApp(uc auth.AuthUseCase, authMW fiber.Handler) *fiber.App {
	h := NewAuthHandler(uc, successURL, zap.NewNop())
	if authMW == nil {
		authMW = passThrough("")
	}
	app := fiber.New()
	app.Post("/api/signup", h.Signup)
	app.Get("/api/verify", h.Verify)
	app.Post("/api/login", h.Login)
	app.Get("/api/me", authMW, h.Me)
	return app
}

func passThrough(id string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(jwt.UserIDKey, id)
		return c.Next()
	}
}

func do(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func TestSignup(t *testing.T) {
	in := auth.RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "secret1"}
	body := `{"name":"Ann","email":"ann@x.com","password":"secret1"}`

	t.Run("success", func(t *testing.T) {
		uc := new(mockAuthUseCase)
		id := uuid.New()
		uc.On("Register", mock.Anything, in).Return(auth.User{ID: id}, nil)

		resp, out := do(t, newTestApp(uc, nil), http.MethodPost, "/api/signup", body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, id.String(), out["userId"])
		assert.Equal(t, msgRegistered, out["message"])
	})

	t.Run("invalid json", func(t *testing.T) {
		uc := new(mockAuthUseCase)
		resp, out := do(t, newTestApp(uc, nil), http.MethodPost, "/api/signup", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, msgInvalidPayload, out["error"])
		uc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"missing fields", auth.ErrValidation("Missing required fields"), http.StatusBadRequest, "Missing required fields"},
		{"duplicate", auth.ErrUserAlreadyExists, http.StatusBadRequest, msgEmailTaken},
		{"delivery", &notify.DeliveryError{Kind: "verification", To: "ann@x.com", Err: errors.New("refused")}, http.StatusInternalServerError, msgSignupFailed},
		{"store", errors.New("db down"), http.StatusInternalServerError, msgSignupFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := new(mockAuthUseCase)
			uc.On("Register", mock.Anything, in).Return(auth.User{}, tc.err)

			resp, out := do(t, newTestApp(uc, nil), http.MethodPost, "/api/signup", body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.msg, out["error"])
			assert.NotContains(t, out["error"], "db down")
		})
	}
}

func TestVerify(t *testing.T) {
	t.Run("success redirects", func(t *testing.T) {
		uc := new(mockAuthUseCase)
		uc.On("Verify", mock.Anything, "tok").Return(auth.User{ID: uuid.New(), IsVerified: true}, nil)

		resp, _ := do(t, newTestApp(uc, nil), http.MethodGet, "/api/verify?token=tok", "")
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, successURL, resp.Header.Get("Location"))
	})

	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"missing token", auth.ErrValidation("Verification token is required"), http.StatusBadRequest, "Verification token is required"},
		{"invalid token", auth.ErrInvalidToken, http.StatusBadRequest, msgInvalidToken},
		{"delivery", &notify.DeliveryError{Kind: "welcome", To: "ann@x.com", Err: errors.New("refused")}, http.StatusInternalServerError, msgVerifyFailed},
		{"store", errors.New("db down"), http.StatusInternalServerError, msgVerifyFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := new(mockAuthUseCase)
			uc.On("Verify", mock.Anything, "tok").Return(auth.User{}, tc.err)

			resp, out := do(t, newTestApp(uc, nil), http.MethodGet, "/api/verify?token=tok", "")
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.msg, out["error"])
		})
	}
}

func TestLogin(t *testing.T) {
	body := `{"email":"ann@x.com","password":"secret1"}`

	t.Run("success", func(t *testing.T) {
		uc := new(mockAuthUseCase)
		user := auth.User{ID: uuid.New(), Email: "ann@x.com", Name: "Ann", IsVerified: true}
		uc.On("Login", mock.Anything, "ann@x.com", "secret1").Return(auth.AuthResult{User: user, Token: "jwt"}, nil)

		resp, out := do(t, newTestApp(uc, nil), http.MethodPost, "/api/login", body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "jwt", out["token"])
		assert.Equal(t, user.ID.String(), out["userId"])
	})

	t.Run("missing fields", func(t *testing.T) {
		uc := new(mockAuthUseCase)
		resp, _ := do(t, newTestApp(uc, nil), http.MethodPost, "/api/login", `{"email":"ann@x.com"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	for name, tc := range map[string]struct {
		err    error
		status int
	}{
		"bad credentials": {auth.ErrInvalidCredentials, http.StatusUnauthorized},
		"not verified":    {auth.ErrNotVerified, http.StatusForbidden},
		"store":           {errors.New("db down"), http.StatusInternalServerError},
	} {
		t.Run(name, func(t *testing.T) {
			uc := new(mockAuthUseCase)
			uc.On("Login", mock.Anything, "ann@x.com", "secret1").Return(auth.AuthResult{}, tc.err)

			resp, _ := do(t, newTestApp(uc, nil), http.MethodPost, "/api/login", body)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestMe(t *testing.T) {
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		uc := new(mockAuthUseCase)
		uc.On("Profile", mock.Anything, id).Return(auth.User{ID: id, Name: "Ann", Email: "ann@x.com", IsVerified: true}, nil)

		resp, out := do(t, newTestApp(uc, passThrough(id.String())), http.MethodGet, "/api/me", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ann@x.com", out["email"])
		assert.Equal(t, true, out["isVerified"])
	})

	t.Run("not found", func(t *testing.T) {
		uc := new(mockAuthUseCase)
		uc.On("Profile", mock.Anything, id).Return(auth.User{}, auth.ErrNotFound)

		resp, _ := do(t, newTestApp(uc, passThrough(id.String())), http.MethodGet, "/api/me", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad subject", func(t *testing.T) {
		uc := new(mockAuthUseCase)
		resp, _ := do(t, newTestApp(uc, passThrough("nope")), http.MethodGet, "/api/me", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
