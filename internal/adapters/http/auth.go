package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dkeye/Rendezvous/internal/app"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

const sessionIdentityKey = "identity"

// TokenIssuer is the part of the token service login needs.
type TokenIssuer interface {
	Issue(id domain.Identity, ttl time.Duration) (string, error)
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=20"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=20"`
	Password string `json:"password" binding:"required,min=6"`
}

type AuthHandlers struct {
	Creds   *app.Credentials
	Tokens  TokenIssuer
	TTL     time.Duration
	Limiter *LoginRateLimiter
}

func (h *AuthHandlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	id, err := domain.NewIdentity(req.Username)
	if err != nil {
		c.String(http.StatusBadRequest, "Validation error: %v", err)
		return
	}
	if err := h.Creds.Register(id, req.Password); err != nil {
		if errors.Is(err, app.ErrUserExists) {
			c.String(http.StatusBadRequest, "User already exists")
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("register")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.String(http.StatusCreated, "User registered")
}

func (h *AuthHandlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if h.Limiter != nil && !h.Limiter.Allow(req.Username) {
		log.Warn().Str("module", "adapters.http").Str("user", req.Username).Msg("login rate limited")
		c.String(http.StatusTooManyRequests, "Too many login attempts")
		return
	}

	id := domain.Identity(req.Username)
	if !h.Creds.Check(id, req.Password) {
		c.String(http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if h.Limiter != nil {
		h.Limiter.Reset(req.Username)
	}

	token, err := h.Tokens.Issue(id, h.TTL)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("issue token")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionIdentityKey, string(id))
	if err := session.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
	}

	log.Info().Str("module", "adapters.http").Str("user", string(id)).Msg("user logged in")
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Me reports who the cookie session belongs to.
func (h *AuthHandlers) Me(c *gin.Context) {
	username, ok := sessions.Default(c).Get(sessionIdentityKey).(string)
	if !ok || username == "" {
		c.String(http.StatusUnauthorized, "Not logged in")
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": username})
}

func (h *AuthHandlers) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
	}
	c.Status(http.StatusNoContent)
}

func bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.String(http.StatusRequestEntityTooLarge, "Payload too large")
		return
	}
	c.String(http.StatusBadRequest, validationMessage(err))
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Validation error: " + err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return "Validation error: " + strings.Join(parts, ", ")
}
