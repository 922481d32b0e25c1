package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Dias221467/habit_tracker/internal/services"
	"github.com/Dias221467/habit_tracker/pkg/logger"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const adminHabitLimit = 500

// HabitHandler handles HTTP requests related to habits.
type HabitHandler struct {
	Service *services.HabitService
}

// NewHabitHandler creates a new instance of HabitHandler.
func NewHabitHandler(service *services.HabitService) *HabitHandler {
	return &HabitHandler{Service: service}
}

// CreateHabitHandler handles the creation of a new habit.
func (h *HabitHandler) CreateHabitHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var input services.HabitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during habit creation")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	habit, err := h.Service.CreateHabit(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, err, "Failed to create habit")
		return
	}

	logrus.WithFields(logrus.Fields{
		"userID":  userID.Hex(),
		"habitID": habit.ID.Hex(),
	}).Info("Habit successfully created")
	writeJSON(w, http.StatusCreated, h.Service.View(*habit))
}

// GetHabitsHandler lists the caller's habits. Supports ?frequency= and ?sort=streak.
func (h *HabitHandler) GetHabitsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	habits, err := h.Service.GetHabits(r.Context(), userID, q.Get("frequency"), q.Get("sort"))
	if err != nil {
		writeServiceError(w, err, "Failed to get habits")
		return
	}
	writeJSON(w, http.StatusOK, habits)
}

// GetHabitHandler handles fetching a single habit by its ID.
func (h *HabitHandler) GetHabitHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	view, err := h.Service.GetHabitView(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		writeServiceError(w, err, "Failed to get habit")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateHabitHandler handles updating a habit's title, description and frequency.
func (h *HabitHandler) UpdateHabitHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var input services.HabitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during habit update")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	updated, err := h.Service.UpdateHabit(r.Context(), mux.Vars(r)["id"], userID, input)
	if err != nil {
		writeServiceError(w, err, "Failed to update habit")
		return
	}
	writeJSON(w, http.StatusOK, h.Service.View(*updated))
}

// DeleteHabitHandler handles deleting a habit.
func (h *HabitHandler) DeleteHabitHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.Service.DeleteHabit(r.Context(), id, userID); err != nil {
		writeServiceError(w, err, "Failed to delete habit")
		return
	}

	logrus.WithField("habitID", id).Info("Habit deleted")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Habit deleted successfully"})
}

// CompleteHabitHandler marks a habit done for today. A rejected completion is still a 200.
func (h *HabitHandler) CompleteHabitHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	result, err := h.Service.CompleteHabit(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		writeServiceError(w, err, "Failed to complete habit")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetCompletionsHandler returns a habit's completion log. Supports ?limit=.
func (h *HabitHandler) GetCompletionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	completions, err := h.Service.GetCompletions(r.Context(), mux.Vars(r)["id"], userID, limit)
	if err != nil {
		writeServiceError(w, err, "Failed to get completions")
		return
	}
	writeJSON(w, http.StatusOK, completions)
}

// AdminGetAllHabitsHandler lists habits of every user. Admins only.
func (h *HabitHandler) AdminGetAllHabitsHandler(w http.ResponseWriter, r *http.Request) {
	habits, err := h.Service.GetAllHabits(r.Context(), adminHabitLimit)
	if err != nil {
		http.Error(w, "Failed to retrieve habits", http.StatusInternalServerError)
		logger.Log.Errorf("Admin failed to fetch habits: %v", err)
		return
	}

	logger.Log.Infof("Admin fetched %d habits", len(habits))
	writeJSON(w, http.StatusOK, habits)
}
