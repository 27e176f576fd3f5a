package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artem13815/accounts/api/http/presenter"
	"github.com/artem13815/accounts/pkg/auth"
	"github.com/artem13815/accounts/pkg/notify"
	"github.com/artem13815/accounts/pkg/security/jwt"
)

const (
	msgRegistered      = "Registration successful. Please check your email to verify your account."
	msgEmailTaken      = "Email already registered"
	msgSignupFailed    = "Failed to create account"
	msgInvalidToken    = "Invalid or expired verification token"
	msgVerifyFailed    = "Failed to verify email"
	msgInvalidPayload  = "invalid JSON payload"
	msgMissingLogin    = "email and password are required"
	msgBadCredentials  = "invalid credentials"
	msgNotVerified     = "email not verified"
	msgLoginFailed     = "failed to login"
	msgProfileNotFound = "user not found"
)

type AuthHandler struct {
	useCase    auth.AuthUseCase
	successURL string
	log        *zap.Logger
}

// NewAuthHandler builds the account handlers. successURL is where a
// successful verification redirects to.
func NewAuthHandler(useCase auth.AuthUseCase, successURL string, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{useCase: useCase, successURL: successURL, log: log}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// Signup handles account registration.
// @Summary Register account
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body signupRequest true "signup payload"
// @Success 200 {object} signupResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, msgInvalidPayload)
	}

	user, err := h.useCase.Register(c.UserContext(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var verr auth.ErrValidation
		var derr *notify.DeliveryError
		switch {
		case errors.As(err, &verr):
			return presenter.Error(c, http.StatusBadRequest, string(verr))
		case errors.Is(err, auth.ErrUserAlreadyExists):
			return presenter.Error(c, http.StatusBadRequest, msgEmailTaken)
		case errors.As(err, &derr):
			h.log.Error("verification email delivery failed",
				zap.String("user_id", user.ID.String()), zap.String("to", derr.To), zap.Error(derr.Err))
		default:
			h.log.Error("registration failed", zap.Error(err))
		}
		return presenter.Error(c, http.StatusInternalServerError, msgSignupFailed)
	}

	return presenter.JSON(c, http.StatusOK, signupResponse{
		Message: msgRegistered,
		UserID:  user.ID.String(),
	})
}

// Verify redeems an emailed verification token.
// @Summary Verify email
// @Tags    auth
// @Produce json
// @Param   token query string true "verification token"
// @Success 302
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /verify [get]
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	user, err := h.useCase.Verify(c.UserContext(), c.Query("token"))
	if err != nil {
		var verr auth.ErrValidation
		var derr *notify.DeliveryError
		switch {
		case errors.As(err, &verr):
			return presenter.Error(c, http.StatusBadRequest, string(verr))
		case errors.Is(err, auth.ErrInvalidToken):
			return presenter.Error(c, http.StatusBadRequest, msgInvalidToken)
		case errors.As(err, &derr):
			h.log.Error("welcome email delivery failed",
				zap.String("user_id", user.ID.String()), zap.String("to", derr.To), zap.Error(derr.Err))
		default:
			h.log.Error("verification failed", zap.Error(err))
		}
		return presenter.Error(c, http.StatusInternalServerError, msgVerifyFailed)
	}

	h.log.Info("email verified", zap.String("user_id", user.ID.String()))
	return c.Redirect(h.successURL, http.StatusFound)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles user login.
// @Summary Login
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Router  /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, msgInvalidPayload)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return presenter.Error(c, http.StatusBadRequest, msgMissingLogin)
	}

	result, err := h.useCase.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return presenter.Error(c, http.StatusUnauthorized, msgBadCredentials)
		case errors.Is(err, auth.ErrNotVerified):
			return presenter.Error(c, http.StatusForbidden, msgNotVerified)
		}
		h.log.Error("login failed", zap.Error(err))
		return presenter.Error(c, http.StatusInternalServerError, msgLoginFailed)
	}

	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"userId": result.User.ID.String(),
		"email":  result.User.Email,
		"name":   result.User.Name,
		"token":  result.Token,
	})
}

type profileResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Me returns the authenticated account.
// @Summary Current account
// @Tags    auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} profileResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	idStr, _ := c.Locals(jwt.UserIDKey).(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	user, err := h.useCase.Profile(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return presenter.Error(c, http.StatusNotFound, msgProfileNotFound)
		}
		h.log.Error("load profile failed", zap.String("user_id", idStr), zap.Error(err))
		return presenter.Error(c, http.StatusInternalServerError, "failed to load profile")
	}

	return presenter.JSON(c, http.StatusOK, profileResponse{
		ID:         user.ID.String(),
		Name:       user.Name,
		Email:      user.Email,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
	})
}
