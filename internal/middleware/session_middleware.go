package middleware

import (
	"net/http"
	"time"

	"github.com/freshkeep/freshkeep/internal/session"
	"github.com/freshkeep/freshkeep/internal/utils"
	"github.com/freshkeep/freshkeep/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// SessionCookieName is the cookie carrying the signed session id.
	SessionCookieName = "freshkeep_session"

	sessionContextKey   = "session"
	sessionDestroyedKey = "session_destroyed"
)

// SessionManager loads the visitor's server-side session on every request and
// writes it back after the handler runs. A request with no cookie, a bad
// signature or an expired store entry gets a fresh anonymous session.
type SessionManager struct {
	store         session.Store
	secret        string
	ttl           time.Duration
	secureCookies bool
}

func NewSessionManager(store session.Store, secret string, ttl time.Duration, secureCookies bool) *SessionManager {
	return &SessionManager{
		store:         store,
		secret:        secret,
		ttl:           ttl,
		secureCookies: secureCookies,
	}
}

// Middleware returns the gin middleware that attaches a session to the
// request context and persists it after the handler completes.
func (m *SessionManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := m.loadSession(c)
		if sess == nil {
			fresh, err := session.New()
			if err != nil {
				logger.Log.Error("Failed to create session", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				c.Abort()
				return
			}
			sess = fresh
			m.setCookie(c, sess.ID)
		}

		c.Set(sessionContextKey, sess)

		c.Next()

		// Persist mutations (login state, throttle counters, flashes)
		// unless the handler destroyed the session.
		if c.GetBool(sessionDestroyedKey) {
			return
		}
		if err := m.store.Save(c.Request.Context(), sess); err != nil {
			logger.Log.Error("Failed to save session",
				zap.String("session_id", sess.ID),
				zap.Error(err),
			)
		}
	}
}

// Destroy deletes the session record and expires the cookie. Used by logout.
func (m *SessionManager) Destroy(c *gin.Context, sess *session.Session) error {
	c.Set(sessionDestroyedKey, true)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", m.secureCookies, true)

	return m.store.Delete(c.Request.Context(), sess.ID)
}

// loadSession resolves the cookie to a stored session, or nil if anything in
// the chain fails.
func (m *SessionManager) loadSession(c *gin.Context) *session.Session {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}

	sessionID, err := utils.VerifySessionToken(cookie, m.secret)
	if err != nil {
		logger.Log.Debug("Rejected session cookie", zap.Error(err))
		return nil
	}

	sess, err := m.store.Get(c.Request.Context(), sessionID)
	if err != nil {
		logger.Log.Error("Failed to load session",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return nil
	}

	return sess
}

func (m *SessionManager) setCookie(c *gin.Context, sessionID string) {
	signed, err := utils.SignSessionID(sessionID, m.secret, m.ttl)
	if err != nil {
		logger.Log.Error("Failed to sign session id", zap.Error(err))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		SessionCookieName,
		signed,
		int(m.ttl.Seconds()),
		"/",
		"",
		m.secureCookies, // HTTPS-only in production
		true,            // httpOnly
	)
}

// GetSession returns the session attached by the middleware, or nil outside
// of it.
func GetSession(c *gin.Context) *session.Session {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return nil
	}
	sess, ok := value.(*session.Session)
	if !ok {
		return nil
	}
	return sess
}

// RequireAuth denies requests whose session has no bound user.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c)
		if sess == nil || !sess.IsAuthenticated() {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			c.Abort()
			return
		}

		c.Set("user_id", *sess.UserID)
		c.Set("username", sess.Username)

		c.Next()
	}
}
