package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/candyhaus/sweetshop/internal/auth"
	"github.com/candyhaus/sweetshop/internal/config"
	"github.com/candyhaus/sweetshop/internal/domain/user"
	"github.com/candyhaus/sweetshop/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash, role string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type TokenIssuer interface {
	GenerateToken(userID int64, email, role string) (string, error)
}

type AuthHandler struct {
	users UserStore
	jwt   TokenIssuer
}

func NewAuthHandler(users UserStore, jwt TokenIssuer) *AuthHandler {
	return &AuthHandler{
		users: users,
		jwt:   jwt,
	}
}

var _ TokenIssuer = (*auth.Manager)(nil)

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	// registration never mints admins

	u, err := h.users.Create(cctx, req.Username, req.Email, hash, user.RoleUser)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateEmail):
			RespondBadRequest(ctx, "duplicate_email", "User with this email already exists.")
		case errors.Is(err, user.ErrDuplicateUsername):
			RespondBadRequest(ctx, "duplicate_username", "User with this username already exists.")
		default:
			RespondInternal(ctx, "Could not create user")
		}
		return
	}

	token, err := h.jwt.GenerateToken(u.ID, u.Email, u.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"user":  u,
		"token": token,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}
	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	// unknown email and wrong password answer identically so the response
	// never reveals which one was wrong

	foundUser, err := h.users.GetByEmail(cctx, req.Email)

	switch {
	case err == nil:
		if security.CheckPassword(foundUser.PasswordHash, req.Password) != nil {
			err = user.ErrInvalidCredentials
		}
	case errors.Is(err, user.ErrNotFound):
		err = user.ErrInvalidCredentials
	default:
		RespondInternal(ctx, "Could not log in")
		return
	}

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	token, err := h.jwt.GenerateToken(foundUser.ID, foundUser.Email, foundUser.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user":  foundUser,
		"token": token,
	})
}
