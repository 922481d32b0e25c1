package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dias221467/habit_tracker/internal/cache"
	"github.com/Dias221467/habit_tracker/internal/config"
	"github.com/Dias221467/habit_tracker/internal/models"
	"github.com/Dias221467/habit_tracker/internal/repository/memory"
	"github.com/Dias221467/habit_tracker/internal/services"
	"github.com/Dias221467/habit_tracker/internal/streak"
	jwtutil "github.com/Dias221467/habit_tracker/pkg/jwt"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testServer struct {
	t             *testing.T
	srv           *httptest.Server
	cfg           *config.Config
	notifications *memory.NotificationStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{JWTSecret: "test-secret", TokenExpiry: time.Hour}
	habitStore := memory.NewHabitStore()
	completionStore := memory.NewCompletionStore()
	userStore := memory.NewUserStore()
	notificationStore := memory.NewNotificationStore()

	statsCache := cache.NewStatsCache(rdb, time.Minute)
	revocations := cache.NewTokenRevocations(rdb)

	notificationService := services.NewNotificationService(notificationStore)
	habitService := services.NewHabitService(habitStore, completionStore, notificationService, statsCache, time.UTC)
	statsService := services.NewStatsService(habitStore, completionStore, statsCache, time.UTC)
	userService := services.NewUserService(userStore, revocations)

	router := NewRouter(Router{
		Config:        cfg,
		Users:         NewUserHandler(userService, cfg),
		Habits:        NewHabitHandler(habitService),
		Stats:         NewStatsHandler(statsService),
		Notifications: NewNotificationHandler(notificationService),
		Revocations:   revocations,
		Activity:      userService,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, cfg: cfg, notifications: notificationStore}
}

func (s *testServer) do(method, path, token string, body interface{}) *http.Response {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.srv.URL+path, &buf)
	require.NoError(s.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.srv.Client().Do(req)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// signup registers and logs in a user, returning the token and user id.
func (s *testServer) signup(email string) (string, string) {
	s.t.Helper()
	creds := models.Credentials{Email: email, Password: "password123"}

	resp := s.do(http.MethodPost, "/users/register", "", creds)
	require.Equal(s.t, http.StatusCreated, resp.StatusCode)

	resp = s.do(http.MethodPost, "/users/login", "", creds)
	require.Equal(s.t, http.StatusOK, resp.StatusCode)
	var out struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decode(s.t, resp, &out)
	require.NotEmpty(s.t, out.Token)
	return out.Token, out.User.ID.Hex()
}

func (s *testServer) createHabit(token, title, freq string) models.HabitView {
	s.t.Helper()
	resp := s.do(http.MethodPost, "/habits", token, services.HabitInput{Title: title, Frequency: freq})
	require.Equal(s.t, http.StatusCreated, resp.StatusCode)
	var view models.HabitView
	decode(s.t, resp, &view)
	return view
}

func TestHabitCompletionFlow(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signup("ann@example.com")

	habit := s.createHabit(token, "Read a chapter", "daily")
	assert.Equal(t, streak.Daily, habit.Frequency)
	assert.Zero(t, habit.StreakCount)
	assert.True(t, habit.Due)

	resp := s.do(http.MethodPost, "/habits/"+habit.ID.Hex()+"/complete", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var first services.CompletionResult
	decode(t, resp, &first)
	assert.True(t, first.Accepted)
	assert.Equal(t, streak.OutcomeStarted, first.Outcome)
	assert.Equal(t, 1, first.Habit.StreakCount)
	assert.True(t, first.Habit.CompletedToday)

	resp = s.do(http.MethodPost, "/habits/"+habit.ID.Hex()+"/complete", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "rejection is not an error")
	var second services.CompletionResult
	decode(t, resp, &second)
	assert.False(t, second.Accepted)
	assert.Equal(t, streak.ReasonAlreadyCompletedToday, second.Reason)
	assert.Equal(t, 1, second.Habit.StreakCount)

	resp = s.do(http.MethodGet, "/habits/"+habit.ID.Hex()+"/completions", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var log []models.Completion
	decode(t, resp, &log)
	assert.Len(t, log, 1)

	resp = s.do(http.MethodGet, "/stats", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats services.UserStats
	decode(t, resp, &stats)
	assert.Equal(t, 1, stats.HabitCount)
	assert.Equal(t, 1, stats.CompletedToday)
	assert.Equal(t, "Perfect day! All habits completed!", stats.Motivation)
	assert.Len(t, stats.Week, 7)
}

func TestHabitCRUD(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signup("bob@example.com")

	resp := s.do(http.MethodPost, "/habits", token, services.HabitInput{Title: "ab"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(http.MethodPost, "/habits", token, services.HabitInput{Title: "Yoga", Frequency: "yearly"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	daily := s.createHabit(token, "Meditate", "")
	s.createHabit(token, "Long run", "weekly")

	resp = s.do(http.MethodGet, "/habits?frequency=weekly", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var weekly []models.HabitView
	decode(t, resp, &weekly)
	require.Len(t, weekly, 1)
	assert.Equal(t, "Long run", weekly[0].Title)

	resp = s.do(http.MethodPut, "/habits/"+daily.ID.Hex(), token, services.HabitInput{Title: "Meditate 20m", Frequency: "daily"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.HabitView
	decode(t, resp, &updated)
	assert.Equal(t, "Meditate 20m", updated.Title)

	resp = s.do(http.MethodDelete, "/habits/"+daily.ID.Hex(), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodGet, "/habits/"+daily.ID.Hex(), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodGet, "/habits/not-an-id", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHabitBelongsToOwner(t *testing.T) {
	s := newTestServer(t)
	owner, _ := s.signup("owner@example.com")
	other, _ := s.signup("other@example.com")

	habit := s.createHabit(owner, "Practice piano", "daily")

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/habits/"+habit.ID.Hex(), other, nil).StatusCode)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/habits/"+habit.ID.Hex()+"/complete", other, nil).StatusCode)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, "/habits/"+habit.ID.Hex(), other, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/habits/"+primitive.NewObjectID().Hex()+"/complete", owner, nil).StatusCode)
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/habits", "", nil).StatusCode)

	resp := s.do(http.MethodPost, "/users/register", "", models.Credentials{Email: "bad", Password: "password123"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	token, userID := s.signup("cat@example.com")

	resp = s.do(http.MethodPost, "/users/register", "", models.Credentials{Email: "cat@example.com", Password: "password123"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(http.MethodPost, "/users/login", "", models.Credentials{Email: "cat@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me map[string]interface{}
	decode(t, resp, &me)
	assert.Equal(t, userID, me["id"])
	assert.NotContains(t, me, "hashed_password")
	assert.NotEqual(t, "0001-01-01T00:00:00Z", me["last_active_at"])

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/admin/habits", token, nil).StatusCode)

	resp = s.do(http.MethodPost, "/users/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/users/me", token, nil).StatusCode)
}

func TestAdminListsAllHabits(t *testing.T) {
	s := newTestServer(t)
	userToken, _ := s.signup("dan@example.com")
	s.createHabit(userToken, "Cold shower", "daily")

	adminToken, err := jwtutil.GenerateToken(primitive.NewObjectID().Hex(), "admin@example.com", "admin", s.cfg.JWTSecret, time.Hour)
	require.NoError(t, err)

	resp := s.do(http.MethodGet, "/admin/habits", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []models.Habit
	decode(t, resp, &all)
	assert.Len(t, all, 1)
}

func TestNotificationRoutes(t *testing.T) {
	s := newTestServer(t)
	token, userID := s.signup("eve@example.com")
	uid, err := primitive.ObjectIDFromHex(userID)
	require.NoError(t, err)

	notif := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    uid,
		Type:      models.NotificationStreakAtRisk,
		Title:     "Streak at risk",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	s.notifications.Put(notif)

	resp := s.do(http.MethodGet, "/notifications", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []models.Notification
	decode(t, resp, &list)
	require.Len(t, list, 1)

	other, _ := s.signup("mallory@example.com")
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/notifications/"+notif.ID.Hex()+"/read", other, nil).StatusCode)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/notifications/xyz/read", token, nil).StatusCode)

	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/notifications/"+notif.ID.Hex()+"/read", token, nil).StatusCode)
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/notifications/"+notif.ID.Hex(), token, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/notifications/"+notif.ID.Hex(), token, nil).StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
