package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dias221467/habit_tracker/internal/models"
	"github.com/Dias221467/habit_tracker/internal/repository"
	jwtutil "github.com/Dias221467/habit_tracker/pkg/jwt"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const minPasswordLength = 8

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo    UserStore
	revoker TokenRevoker
}

// NewUserService creates a new instance of UserService. revoker may be nil, in which
// case logout only succeeds client-side.
func NewUserService(repo UserStore, revoker TokenRevoker) *UserService {
	return &UserService{
		repo:    repo,
		revoker: revoker,
	}
}

// RegisterUser registers a new user after hashing their password.
func (s *UserService) RegisterUser(ctx context.Context, creds models.Credentials) (*models.User, error) {
	logrus.Info("Registering new user")

	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || creds.Password == "" {
		logrus.Warn("Missing required fields during registration")
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidUser)
	}

	if !emailRegex.MatchString(email) {
		logrus.WithField("email", email).Warn("Invalid email format during registration")
		return nil, fmt.Errorf("%w: invalid email format", ErrInvalidUser)
	}

	if len(creds.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters long", ErrInvalidUser, minPasswordLength)
	}

	// Check if the email is already registered
	existingUser, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existingUser != nil {
		logrus.WithField("email", email).Warn("Email already in use")
		return nil, ErrEmailInUse
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	username := strings.TrimSpace(creds.Username)
	if username == "" {
		username = email[:strings.Index(email, "@")]
	}

	user := &models.User{
		Username:       username,
		Email:          email,
		HashedPassword: string(hashedPwd),
		Role:           "user",
	}

	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"userID": createdUser.ID.Hex(),
		"role":   createdUser.Role,
	}).Info("User registered successfully")

	return createdUser, nil
}

// AuthenticateUser verifies the email and password and returns the user if credentials are valid.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	logrus.WithField("email", email).Info("Authenticating user")

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logrus.WithField("email", email).Warn("User not found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// Compare the provided password with the hashed password.
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Invalid credentials")
		return nil, ErrInvalidCredentials
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		logrus.WithError(err).Warn("Invalid user ID")
		return nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}

	user, err := s.repo.GetUserByID(ctx, objID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).Warn("Failed to retrieve user")
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpdateLastActive records that the user made an authenticated request.
func (s *UserService) UpdateLastActive(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.UpdateLastActive(ctx, id)
}

// Logout revokes the token described by claims until it expires.
func (s *UserService) Logout(ctx context.Context, claims *jwtutil.Claims) error {
	if s.revoker == nil {
		logrus.Warn("Token revocation unavailable, logout is client-side only")
		return nil
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	logrus.WithField("userID", claims.UserID).Info("User logged out")
	return nil
}
