package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readtrack/internal/config"
	"github.com/mrlokans/readtrack/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyAuthType = "auth_type"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeDefault AuthType = "default"
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
)

// UserStore is the subset of the users repository the middleware needs.
type UserStore interface {
	GetByToken(token string) (*entities.User, error)
	GetByID(id uint) (*entities.User, error)
	EnsureDefaultUser() (*entities.User, error)
}

// Middleware handles authentication for HTTP requests.
type Middleware struct {
	users          UserStore
	sessionManager *SessionManager
	mode           config.AuthMode
	defaultUser    *entities.User
	publicPaths    map[string]bool
}

// NewMiddleware creates the authentication middleware. In "none" mode the
// default local account is provisioned here.
func NewMiddleware(users UserStore, sessionManager *SessionManager, cfg config.Auth) (*Middleware, error) {
	m := &Middleware{
		users:          users,
		sessionManager: sessionManager,
		mode:           cfg.Mode,
		publicPaths: map[string]bool{
			"/health":  true,
			"/ping":    true,
			"/metrics": true,
			"/login":   true,
			"/logout":  true,
		},
	}

	switch cfg.Mode {
	case config.AuthModeNone, "":
		m.mode = config.AuthModeNone
		user, err := users.EnsureDefaultUser()
		if err != nil {
			return nil, fmt.Errorf("failed to provision default user: %w", err)
		}
		m.defaultUser = user
	case config.AuthModeToken:
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}

	return m, nil
}

// Handler returns a Gin middleware handler that authenticates requests.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.mode == config.AuthModeNone {
		return m.defaultUserHandler()
	}
	return m.tokenHandler()
}

func (m *Middleware) defaultUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		setUserContext(c, m.defaultUser, AuthTypeDefault)
		c.Next()
	}
}

func (m *Middleware) tokenHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := m.tryBearerAuth(c); user != nil {
			setUserContext(c, user, AuthTypeBearer)
			c.Next()
			return
		}

		if user := m.trySessionAuth(c); user != nil {
			setUserContext(c, user, AuthTypeSession)
			c.Next()
			return
		}

		c.Set(ContextKeyAuthType, AuthTypeNone)
		if m.isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
		})
	}
}

func (m *Middleware) tryBearerAuth(c *gin.Context) *entities.User {
	token := BearerToken(c.Request)
	if token == "" {
		return nil
	}
	user, err := m.users.GetByToken(token)
	if err != nil {
		return nil
	}
	return user
}

func (m *Middleware) trySessionAuth(c *gin.Context) *entities.User {
	if m.sessionManager == nil {
		return nil
	}
	userID := m.sessionManager.GetUserID(c.Request)
	if userID == 0 {
		return nil
	}
	user, err := m.users.GetByID(userID)
	if err != nil {
		return nil
	}
	return user
}

func (m *Middleware) isPublicPath(path string) bool {
	return m.publicPaths[path]
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header, or returns "".
func BearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func setUserContext(c *gin.Context, user *entities.User, authType AuthType) {
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyUsername, user.Username)
	c.Set(ContextKeyAuthType, authType)
}

// RequireAuth aborts with 401 unless the request carries a user.
// Public paths pass the main handler unauthenticated; routes under them that
// still need a caller use this.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns 0 if nobody is authenticated.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

func GetUsername(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := name.(string); ok {
			return username
		}
	}
	return ""
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}
