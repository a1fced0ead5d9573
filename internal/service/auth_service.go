package service

import (
	"crypto/subtle"
	"regexp"
	"strings"
	"time"

	"github.com/freshkeep/freshkeep/internal/models"
	"github.com/freshkeep/freshkeep/internal/repository"
	"github.com/freshkeep/freshkeep/internal/session"
	"github.com/freshkeep/freshkeep/internal/utils"
	"github.com/freshkeep/freshkeep/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	emailRegex           = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameStartRegex   = regexp.MustCompile(`^[a-zA-Z]`)
	usernameCharsetRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

type AuthService struct {
	userRepo    *repository.UserRepository
	maxAttempts int
	lockout     time.Duration
	environment string
}

func NewAuthService(userRepo *repository.UserRepository, maxAttempts int, lockout time.Duration, environment string) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		maxAttempts: maxAttempts,
		lockout:     lockout,
		environment: environment,
	}
}

// IsProduction returns true if running in production environment
func (s *AuthService) IsProduction() bool {
	return s.environment == "production"
}

// Signup validates the registration form and creates the account. Validation
// is sequential and stops at the first failure; nothing is written unless
// every check passes.
func (s *AuthService) Signup(username, email, password, confirmPassword string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	logger.Log.Debug("Processing signup",
		zap.String("username", username),
		zap.String("email", email),
	)

	if err := s.validateSignupInput(username, email, password, confirmPassword); err != nil {
		logger.Log.Warn("Signup validation failed",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}

	// Uniqueness check before insert; the store's unique indexes remain the
	// ultimate guarantee against a concurrent signup.
	existing, err := s.userRepo.GetUserByUsernameOrEmail(username)
	if err != nil {
		logger.Log.Error("Failed to check username existence",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}
	if existing == nil {
		existing, err = s.userRepo.GetUserByEmail(email)
		if err != nil {
			logger.Log.Error("Failed to check email existence",
				zap.String("email", email),
				zap.Error(err),
			)
			return nil, err
		}
	}
	if existing != nil {
		logger.Log.Warn("Signup conflict",
			zap.String("username", username),
			zap.String("email", email),
		)
		return nil, ErrConflict
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		logger.Log.Error("Failed to hash password", zap.Error(err))
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		logger.Log.Error("Failed to create user in database",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("User registered successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", username),
	)

	return user, nil
}

// Login authenticates the identifier (username or email) against the stored
// hash and binds the user to the session on success.
//
// The CSRF token must match the session-held token, and the per-session
// throttle rejects the attempt outright once maxAttempts failures have
// accumulated within the lockout window.
func (s *AuthService) Login(sess *session.Session, identifier, password, csrfToken string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)

	if subtle.ConstantTimeCompare([]byte(csrfToken), []byte(sess.CSRFToken)) != 1 {
		logger.Log.Warn("Login rejected: CSRF token mismatch",
			zap.String("session_id", sess.ID),
		)
		return nil, ErrInvalidRequest
	}

	if retryAfter, limited := s.throttled(sess, time.Now()); limited {
		logger.Log.Warn("Login rejected: throttled",
			zap.String("session_id", sess.ID),
			zap.Int("attempts", sess.LoginAttempts),
			zap.Duration("retry_after", retryAfter),
		)
		return nil, &RateLimitedError{RetryAfter: retryAfter}
	}

	if identifier == "" || password == "" {
		return nil, validationError("both username and password are required")
	}

	user, err := s.userRepo.GetUserByUsernameOrEmail(identifier)
	if err != nil {
		logger.Log.Error("Failed to look up user",
			zap.String("identifier", identifier),
			zap.Error(err),
		)
		return nil, err
	}
	if user == nil {
		sess.RecordFailedLogin(time.Now())
		logger.Log.Warn("Login failed: user not found",
			zap.String("identifier", identifier),
			zap.Int("attempts", sess.LoginAttempts),
		)
		return nil, ErrUserNotFound
	}

	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if !valid {
		sess.RecordFailedLogin(time.Now())
		logger.Log.Warn("Login failed: invalid password",
			zap.String("user_id", user.ID.String()),
			zap.Int("attempts", sess.LoginAttempts),
		)
		return nil, ErrInvalidPassword
	}

	sess.ResetLoginAttempts()
	sess.UserID = &user.ID
	sess.Username = user.Username

	logger.Log.Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	return user, nil
}

// throttled reports whether the session is inside the lockout window.
// The key is the session, not the account; discarding the cookie resets the
// counter. The IP limiter on the auth routes backstops that gap.
func (s *AuthService) throttled(sess *session.Session, now time.Time) (time.Duration, bool) {
	if sess.LoginAttempts < s.maxAttempts {
		return 0, false
	}

	elapsed := now.Sub(time.Unix(sess.LastAttempt, 0))
	if elapsed >= s.lockout {
		return 0, false
	}

	return s.lockout - elapsed, true
}

func (s *AuthService) validateSignupInput(username, email, password, confirmPassword string) error {
	// Username
	if username == "" {
		return validationError("username is required")
	}
	if len(username) < 3 {
		return validationError("username must be at least 3 characters")
	}
	if len(username) > 33 {
		return validationError("username must be 33 characters or less")
	}
	if !usernameStartRegex.MatchString(username) {
		return validationError("username must start with a letter")
	}
	if !usernameCharsetRegex.MatchString(username) {
		return validationError("username can only contain letters, numbers, underscores, and hyphens")
	}

	// Email
	if email == "" {
		return validationError("email is required")
	}
	if !emailRegex.MatchString(email) {
		return validationError("invalid email format")
	}
	if len(email) > 33 {
		return validationError("email must be 33 characters or less")
	}

	// Password: minimum only. The old UI capped length at 11, but that was a
	// presentation quirk; the server enforces no upper bound.
	if password == "" {
		return validationError("password is required")
	}
	if len(password) < 6 {
		return validationError("password must be at least 6 characters")
	}

	if password != confirmPassword {
		return validationError("passwords do not match")
	}

	return nil
}
