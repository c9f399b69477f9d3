package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	platformstrings "gangland/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr            string
	LogLevel        string
	LogFormat       string
	Debug           bool
	SOAPPretty      bool
	TrustProxy      bool
	ShutdownTimeout time.Duration

	Content  Content
	Database Database
	Auth     Auth
	Redis    RedisConfig
	Audit    Audit
	Limits   Limits
	Profile  Profile
}

// Content locates the shipped defaults and the writable per-install copy.
type Content struct {
	BaseDir string
	UserDir string
}

type Database struct {
	Driver string
	DSN    string
	Wipe   bool
}

// Auth controls bearer token issuance. Legacy mode hands out the user uuid.
type Auth struct {
	SignedTokens  bool
	JWTSigningKey string
	TokenTTL      time.Duration
}

// RedisConfig enables the ticket cache when URL is set.
type RedisConfig struct {
	URL            string
	PoolSize       int
	MinIdleConns   int
	DialTimeout    time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	TicketCacheTTL time.Duration
}

// Audit sends events to Kafka when Brokers is set, otherwise to the log.
type Audit struct {
	Brokers []string
	Topic   string
}

// Limits is the per client IP request budget. RPS <= 0 disables limiting.
type Limits struct {
	RPS   float64
	Burst int
}

// Profile holds the optional XP floor applied to saved profiles. 0 disables it.
type Profile struct {
	MinXPLevel int
}

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	cfg := Server{
		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		Content: Content{
			BaseDir: getEnv("BASECFG_DIR", "./basecfg"),
			UserDir: getEnv("USERCFG_DIR", "./usercfg"),
		},
		Database: Database{
			Driver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		},
		Audit: Audit{
			Topic: getEnv("KAFKA_AUDIT_TOPIC", "gangland.audit"),
		},
	}

	var err error
	port := getEnv("HTTP_PORT", "8080")
	cfg.Addr = getEnv("ADDR", ":"+port)

	if cfg.Debug, err = getBool("DEBUG", false); err != nil {
		return Server{}, err
	}
	verbose := cfg.LogLevel == "verbose" || cfg.Debug
	if cfg.SOAPPretty, err = getBool("SOAP_PRETTY", verbose); err != nil {
		return Server{}, err
	}
	if cfg.TrustProxy, err = getBool("TRUST_PROXY", false); err != nil {
		return Server{}, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Server{}, err
	}

	cfg.Database.DSN = getEnv("DB_DSN", "")
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = strings.TrimRight(cfg.Content.UserDir, "/") + "/database.db"
	}
	if cfg.Database.Wipe, err = getBool("WIPE_DB_ON_START", false); err != nil {
		return Server{}, err
	}

	if cfg.Auth.SignedTokens, err = getBool("AUTH_SIGNED_TOKENS", false); err != nil {
		return Server{}, err
	}
	cfg.Auth.JWTSigningKey = os.Getenv("JWT_SIGNING_KEY")
	if cfg.Auth.JWTSigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.Auth.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	if cfg.Auth.TokenTTL, err = getDuration("TOKEN_TTL", 1000000*time.Second); err != nil {
		return Server{}, err
	}

	cfg.Redis = RedisConfig{
		URL:          os.Getenv("REDIS_URL"),
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	if cfg.Redis.TicketCacheTTL, err = getDuration("TICKET_CACHE_TTL", 24*time.Hour); err != nil {
		return Server{}, err
	}

	cfg.Audit.Brokers = platformstrings.SplitList(os.Getenv("KAFKA_BROKERS"), ",")

	if cfg.Limits.RPS, err = getFloat("RATE_LIMIT_RPS", 0); err != nil {
		return Server{}, err
	}
	if cfg.Limits.Burst, err = getInt("RATE_LIMIT_BURST", 20); err != nil {
		return Server{}, err
	}
	if cfg.Profile.MinXPLevel, err = getInt("PROFILE_MIN_XP_LEVEL", 0); err != nil {
		return Server{}, err
	}

	return cfg, nil
}

// DebugLogging reports whether debug output was requested.
func (s Server) DebugLogging() bool {
	return s.Debug || s.LogLevel == "debug" || s.LogLevel == "verbose"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

// getDuration accepts Go durations ("30s") or a bare number of seconds.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
