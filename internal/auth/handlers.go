package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SessionController exchanges an API token for a cookie session.
type SessionController struct {
	users          UserStore
	sessionManager *SessionManager
	limiter        *LoginLimiter
	log            zerolog.Logger
}

func NewSessionController(users UserStore, sessionManager *SessionManager, limiter *LoginLimiter, log zerolog.Logger) *SessionController {
	return &SessionController{
		users:          users,
		sessionManager: sessionManager,
		limiter:        limiter,
		log:            log,
	}
}

func (sc *SessionController) RegisterRoutes(router gin.IRoutes) {
	router.POST("/login", sc.Login)
	router.POST("/logout", sc.Logout)
	router.GET("/api/me", sc.Me)
}

type loginRequest struct {
	Token string `json:"token" form:"token"`
}

// Login accepts a token as JSON or form field and starts a session.
func (sc *SessionController) Login(c *gin.Context) {
	if sc.limiter != nil && !sc.limiter.Allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
		return
	}

	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	user, err := sc.users.GetByToken(req.Token)
	if err != nil {
		sc.log.Info().Str("client", c.ClientIP()).Msg("Rejected login with unknown token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if err := sc.sessionManager.CreateSession(c.Request, user); err != nil {
		sc.log.Error().Err(err).Uint("user_id", user.ID).Msg("Failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	sc.log.Info().Uint("user_id", user.ID).Msg("User logged in")
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "username": user.Username})
}

func (sc *SessionController) Logout(c *gin.Context) {
	if err := sc.sessionManager.DestroySession(c.Request); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to end session"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Me describes the current caller. Session callers also receive the CSRF
// token they must send with state-changing requests.
func (sc *SessionController) Me(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	resp := gin.H{
		"id":        userID,
		"username":  GetUsername(c),
		"auth_type": GetAuthType(c),
	}
	if GetAuthType(c) == AuthTypeSession && sc.sessionManager != nil {
		resp["csrf_token"] = GetCSRFToken(c)
		resp["login_at"] = sc.sessionManager.LoginAt(c.Request)
	}
	c.JSON(http.StatusOK, resp)
}
