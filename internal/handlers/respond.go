package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dias221467/habit_tracker/internal/services"
	"github.com/Dias221467/habit_tracker/pkg/logger"
	"github.com/Dias221467/habit_tracker/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode response")
	}
}

// writeServiceError maps service sentinel errors to status codes.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrInvalidID),
		errors.Is(err, services.ErrInvalidHabit),
		errors.Is(err, services.ErrInvalidUser):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidCredentials):
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
	case errors.Is(err, services.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, services.ErrHabitNotFound):
		http.Error(w, "Habit not found", http.StatusNotFound)
	case errors.Is(err, services.ErrUserNotFound):
		http.Error(w, "User not found", http.StatusNotFound)
	case errors.Is(err, services.ErrNotificationNotFound):
		http.Error(w, "Notification not found", http.StatusNotFound)
	case errors.Is(err, services.ErrEmailInUse):
		http.Error(w, "Email already in use", http.StatusConflict)
	case errors.Is(err, services.ErrCompletionConflict):
		http.Error(w, "Habit was updated by another request, please retry", http.StatusConflict)
	default:
		logger.Log.WithError(err).Error(fallback)
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

// currentUserID returns the authenticated user's id, writing 401 when there is none.
func currentUserID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		logger.Log.WithField("userID", claims.UserID).Warn("Token carries an invalid user ID")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return primitive.NilObjectID, false
	}
	return userID, true
}
