package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/freshkeep/freshkeep/internal/middleware"
	"github.com/freshkeep/freshkeep/internal/service"
	"github.com/freshkeep/freshkeep/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService    *service.AuthService
	sessionManager *middleware.SessionManager
}

func NewAuthHandler(authService *service.AuthService, sessionManager *middleware.SessionManager) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		sessionManager: sessionManager,
	}
}

type SignupRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	CSRFToken       string `json:"csrf_token" binding:"required"`
}

type LoginRequest struct {
	Username  string `json:"username" binding:"required"` // username or email
	Password  string `json:"password" binding:"required"`
	CSRFToken string `json:"csrf_token" binding:"required"`
}

// Session bootstraps the client: CSRF token for forms, the logged-in
// username if any, and pending one-shot flashes.
func (h *AuthHandler) Session(c *gin.Context) {
	sess := middleware.GetSession(c)

	c.JSON(http.StatusOK, gin.H{
		"csrf_token":    sess.CSRFToken,
		"username":      sess.Username,
		"authenticated": sess.IsAuthenticated(),
		"flashes":       sess.ConsumeFlashes(),
	})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Signup request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	sess := middleware.GetSession(c)
	if subtle.ConstantTimeCompare([]byte(req.CSRFToken), []byte(sess.CSRFToken)) != 1 {
		logger.Log.Warn("Signup rejected: CSRF token mismatch",
			zap.String("ip", c.ClientIP()),
		)
		// Generic on purpose: do not reveal which check failed
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request",
		})
		return
	}

	logger.Log.Info("Signup attempt",
		zap.String("username", req.Username),
		zap.String("ip", c.ClientIP()),
	)

	user, err := h.authService.Signup(req.Username, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		statusCode := http.StatusInternalServerError
		message := "Something went wrong. Please try again."

		switch {
		case service.IsValidationError(err):
			statusCode = http.StatusBadRequest
			message = err.Error()
		case errors.Is(err, service.ErrConflict):
			statusCode = http.StatusConflict
			message = err.Error()
		default:
			logger.Log.Error("Signup failed",
				zap.String("username", req.Username),
				zap.Error(err),
			)
		}

		c.JSON(statusCode, gin.H{
			"error": message,
		})
		return
	}

	sess.AddSuccess("Account created successfully! You can now login.")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Login request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	sess := middleware.GetSession(c)

	logger.Log.Info("Login attempt",
		zap.String("identifier", req.Username),
		zap.String("ip", c.ClientIP()),
	)

	user, err := h.authService.Login(sess, req.Username, req.Password, req.CSRFToken)
	if err != nil {
		var rateLimited *service.RateLimitedError

		statusCode := http.StatusInternalServerError
		message := "Something went wrong. Please try again."
		body := gin.H{}

		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			statusCode = http.StatusBadRequest
			message = "Invalid request"
		case errors.As(err, &rateLimited):
			statusCode = http.StatusTooManyRequests
			message = rateLimited.Error()
			body["retry_after"] = int(rateLimited.RetryAfter.Seconds())
		case service.IsValidationError(err):
			statusCode = http.StatusBadRequest
			message = err.Error()
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrInvalidPassword):
			statusCode = http.StatusUnauthorized
			message = err.Error()
		default:
			logger.Log.Error("Login failed",
				zap.String("identifier", req.Username),
				zap.Error(err),
			)
		}

		body["error"] = message
		c.JSON(statusCode, body)
		return
	}

	sess.AddSuccess("Login successful")

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Logout destroys the session unconditionally.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := middleware.GetSession(c)

	if err := h.sessionManager.Destroy(c, sess); err != nil {
		logger.Log.Error("Failed to destroy session",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Something went wrong. Please try again.",
		})
		return
	}

	logger.Log.Info("User logged out",
		zap.String("session_id", sess.ID),
		zap.String("username", sess.Username),
	)

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out",
	})
}
