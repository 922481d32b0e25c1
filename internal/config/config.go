package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port        string
	Storage     string // "mongo" or "memory"
	MongoURI    string
	DBName      string
	JWTSecret   string
	TokenExpiry time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	StatsCacheTTL time.Duration

	// Calendar days are evaluated in this location.
	Location *time.Location

	AllowedOrigins  []string
	ReminderEnabled bool
	ReminderEmails  bool

	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPPassword string
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Storage:         strings.ToLower(getEnv("STORAGE", "mongo")),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:          getEnv("DB_NAME", "habit_tracker"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		TokenExpiry:     getDuration("TOKEN_EXPIRY", 72*time.Hour),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getInt("REDIS_DB", 0),
		StatsCacheTTL:   getDuration("STATS_CACHE_TTL", time.Minute),
		Location:        getLocation("TIMEZONE", time.UTC),
		AllowedOrigins:  getList("CORS_ORIGINS", []string{"http://localhost:8081", "http://localhost:19006"}),
		ReminderEnabled: getBool("REMINDERS_ENABLED", true),
		ReminderEmails:  getBool("REMINDER_EMAILS", false),
		SMTPHost:        getEnv("SMTP_HOST", ""),
		SMTPPort:        getEnv("SMTP_PORT", "587"),
		SMTPSender:      getEnv("SMTP_SENDER", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
	}

	if cfg.JWTSecret == "" {
		logrus.Warn("JWT_SECRET is not set, tokens will be signed with an empty key")
	}
	if cfg.Storage != "mongo" && cfg.Storage != "memory" {
		logrus.WithField("storage", cfg.Storage).Warn("Unknown STORAGE, using mongo")
		cfg.Storage = "mongo"
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Invalid integer in environment, using default")
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Invalid boolean in environment, using default")
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Invalid duration in environment, using default")
		return fallback
	}
	return d
}

func getLocation(key string, fallback *time.Location) *time.Location {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	loc, err := time.LoadLocation(v)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Unknown timezone, using default")
		return fallback
	}
	return loc
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
