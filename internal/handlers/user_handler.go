package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Dias221467/habit_tracker/internal/config"
	"github.com/Dias221467/habit_tracker/internal/models"
	"github.com/Dias221467/habit_tracker/internal/services"
	jwtutil "github.com/Dias221467/habit_tracker/pkg/jwt"
	"github.com/Dias221467/habit_tracker/pkg/middleware"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to user operations.
type UserHandler struct {
	Service *services.UserService
	Config  *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service: service,
		Config:  cfg,
	}
}

// RegisterUserHandler handles user registration.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("RegisterUserHandler called")
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		log.WithError(err).Warn("Failed to decode user registration request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	createdUser, err := h.Service.RegisterUser(r.Context(), creds)
	if err != nil {
		writeServiceError(w, err, "Failed to register user")
		return
	}

	log.WithField("userID", createdUser.ID.Hex()).Info("User registered successfully")
	writeJSON(w, http.StatusCreated, createdUser)
}

// LoginUserHandler handles user login.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("LoginUserHandler called")
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		log.WithError(err).Warn("Failed to decode login request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, err := h.Service.AuthenticateUser(r.Context(), creds.Email, creds.Password)
	if err != nil {
		log.WithFields(log.Fields{
			"email": creds.Email,
			"error": err,
		}).Warn("Authentication failed")
		writeServiceError(w, err, "Failed to log in")
		return
	}

	// Generate a JWT token
	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, user.Role, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User logged in successfully")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GetMeHandler returns the authenticated user's profile.
func (h *UserHandler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	user, err := h.Service.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err, "Failed to get user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// LogoutHandler revokes the token the request was made with.
func (h *UserHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.Service.Logout(r.Context(), claims); err != nil {
		writeServiceError(w, err, "Failed to log out")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
