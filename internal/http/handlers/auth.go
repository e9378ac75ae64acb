package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/notecove/notecove/internal/auth"
	"github.com/notecove/notecove/internal/config"
	"github.com/notecove/notecove/internal/domain/user"
	"github.com/notecove/notecove/internal/observability"
	"github.com/notecove/notecove/internal/repo/postgres"
	"github.com/notecove/notecove/internal/security"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, u user.User) (user.User, error)
}

type SessionWriter interface {
	Put(ctx context.Context, sid, userID string, ttl time.Duration) error
	Delete(ctx context.Context, sid string) error
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	tokens     *auth.Manager
	sessions   SessionWriter
	cfg        config.Config
	prom       *observability.Prom
}

func NewAuthHandler(users UserReader, userWriter UserWriter, tokens *auth.Manager, sessions SessionWriter, cfg config.Config, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		tokens:     tokens,
		sessions:   sessions,
		cfg:        cfg,
		prom:       prom,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not register user")
		return
	}

	_, err = h.userWriter.Create(cctx, user.NewFromRegisterRequest(req, hash))

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrUsernameTaken):
			h.countAuth("register", "rejected")
			RespondConflict(ctx, "username_taken", "Username is already in use.")
		case errors.Is(err, postgres.ErrEmailTaken):
			h.countAuth("register", "rejected")
			RespondConflict(ctx, "email_taken", "Email is already in use.")
		default:
			h.countAuth("register", "error")
			RespondInternal(ctx, "Could not register user")
		}
		return
	}

	h.countAuth("register", "ok")

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User registered successfully",
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		h.countAuth("login", "rejected")
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		h.countAuth("login", "rejected")
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	raw, sid, expiresAt, err := h.tokens.GenerateSessionToken(foundUser.ID, foundUser.Username)

	if err != nil {
		h.countAuth("login", "error")
		RespondInternal(ctx, "Could not create session")
		return
	}

	err = h.sessions.Put(cctx, sid, foundUser.ID, time.Until(expiresAt))

	if err != nil {
		h.countAuth("login", "error")
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, raw, expiresAt)
	h.countAuth("login", "ok")

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User logged in successfully",
	})
}

// Logout is idempotent: a missing or invalid cookie still clears state and
// answers 200.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, err := ctx.Cookie(h.cfg.SessionCookie)

	if err == nil && raw != "" {
		if claims, verr := h.tokens.VerifySessionToken(raw); verr == nil {
			cctx, cancel := config.WithTimeout(2 * time.Second)
			defer cancel()

			_ = h.sessions.Delete(cctx, claims.SID)
		}
	}

	h.clearSessionCookie(ctx)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User logged out successfully",
	})
}

func (h *AuthHandler) countAuth(op, result string) {
	if h.prom != nil {
		h.prom.AuthResults.WithLabelValues(op, result).Inc()
	}
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	secure := h.cfg.Env == "prod"

	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		h.cfg.SessionCookie,
		raw,
		maxAge,
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		h.cfg.SessionCookie,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
