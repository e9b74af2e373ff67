package auth

import (
	"errors"
	"strings"

	"procurement-backend/internal/config"
	"procurement-backend/internal/httpx"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type CreateUserRequest struct {
	RegisterRequest
	Role models.UserRole `json:"role" validate:"required,oneof=admin buyer inspector"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID       uint            `json:"id"`
	FullName string          `json:"full_name"`
	Email    string          `json:"email"`
	Role     models.UserRole `json:"role"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: u.Role}
}

// Handler serves the auth routes.
type Handler struct {
	cfg    *config.Config
	store  repository.Store
	logger *logrus.Logger
}

func NewHandler(cfg *config.Config, store repository.Store, logger *logrus.Logger) *Handler {
	return &Handler{cfg: cfg, store: store, logger: logger}
}

func newUser(body RegisterRequest, role models.UserRole) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
	}
	return &models.User{
		FullName:     strings.TrimSpace(body.FullName),
		Email:        strings.TrimSpace(strings.ToLower(body.Email)),
		PasswordHash: string(hash),
		Role:         role,
	}, nil
}

func (h *Handler) insertUser(c *fiber.Ctx, store repository.Store, user *models.User) error {
	if err := store.Users().Create(c.UserContext(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fiber.NewError(fiber.StatusConflict, "Email is already registered")
		}
		return httpx.Fail(h.logger, "auth", "createUser", err, "Could not create user")
	}
	return nil
}

func (h *Handler) createUser(c *fiber.Ctx, body RegisterRequest, role models.UserRole) (*models.User, error) {
	user, err := newUser(body, role)
	if err != nil {
		return nil, err
	}
	if err := h.insertUser(c, h.store, user); err != nil {
		return nil, err
	}
	return user, nil
}

var errAdminExists = fiber.NewError(fiber.StatusForbidden, "An admin already exists")

// POST /api/auth/register-admin
// Only allowed while no admin exists. The check and the insert share one
// transaction with the profiles table locked, so concurrent callers cannot
// both pass.
func (h *Handler) RegisterAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		user, err := newUser(body, models.RoleAdmin)
		if err != nil {
			return err
		}

		ctx := c.UserContext()
		err = h.store.Transaction(ctx, func(tx repository.Store) error {
			if err := tx.Users().LockForRoleChange(ctx); err != nil {
				return httpx.Fail(h.logger, "auth", "RegisterAdmin", err, "Could not check existing admins")
			}
			count, err := tx.Users().CountByRole(ctx, models.RoleAdmin)
			if err != nil {
				return httpx.Fail(h.logger, "auth", "RegisterAdmin", err, "Could not check existing admins")
			}
			if count > 0 {
				return errAdminExists
			}
			return h.insertUser(c, tx, user)
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
	}
}

// POST /api/auth/register
func (h *Handler) Register() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		user, err := h.createUser(c, body, models.RoleBuyer)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
	}
}

// POST /api/admin/users
func (h *Handler) CreateUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		user, err := h.createUser(c, body.RegisterRequest, body.Role)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
	}
}

// POST /api/auth/login
func (h *Handler) Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		email := strings.TrimSpace(strings.ToLower(body.Email))
		user, err := h.store.Users().FindByEmail(c.UserContext(), email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
			}
			return httpx.Fail(h.logger, "auth", "Login", err, "Could not sign in")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}

		token, err := GenerateToken(h.cfg.JWTSecret, h.cfg.TokenTTL, user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  toUserResponse(user),
		})
	}
}

// GET /api/auth/me
func (h *Handler) Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := MustCurrentUser(c)
		if err != nil {
			return err
		}

		user, err := h.store.Users().FindByID(c.UserContext(), p.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// token outlived the account
				return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
			}
			return httpx.Fail(h.logger, "auth", "Me", err, "Could not load user")
		}
		return c.JSON(toUserResponse(user))
	}
}
