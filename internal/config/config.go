package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	RadiusInformational = "informational"
	RadiusStrict        = "strict"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Storage      StorageConfig
	Auth         AuthConfig
	Matching     MatchingConfig
	Flow         FlowConfig
	Sweeper      SweeperConfig
	Admin        AdminConfig
	Logging      LoggingConfig
	CORS         CORSConfig
	GeminiAPIKey string
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (c *ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type StorageConfig struct {
	Type string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	Issuer    string
}

type MatchingConfig struct {
	DailyLikeLimit           int
	PremiumDailyLikeLimit    int
	ConversationHours        int
	PremiumConversationHours int
	RadiusPolicy             string
	DefaultSearchRadiusKm    int
	DefaultSearchAgeMin      int
	DefaultSearchAgeMax      int
	CollectInterests         bool
	Timezone                 string
	Location                 *time.Location
}

func (c *MatchingConfig) ConversationDuration() time.Duration {
	return time.Duration(c.ConversationHours) * time.Hour
}

func (c *MatchingConfig) PremiumConversationDuration() time.Duration {
	return time.Duration(c.PremiumConversationHours) * time.Hour
}

type FlowConfig struct {
	SessionTTL time.Duration
}

type SweeperConfig struct {
	Schedule string
}

type AdminConfig struct {
	Identities []int64
}

func (c *AdminConfig) IsAdmin(identity int64) bool {
	for _, id := range c.Identities {
		if id == identity {
			return true
		}
	}
	return false
}

type LoggingConfig struct {
	Level string
}

type CORSConfig struct {
	AllowedOrigins []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")

	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)

	v.SetDefault("STORAGE_TYPE", StorageMemory)

	v.SetDefault("JWT_TOKEN_TTL", "720h")
	v.SetDefault("JWT_ISSUER", "nearby-backend")

	v.SetDefault("LIKES_PER_DAY", 20)
	v.SetDefault("PREMIUM_LIKES_PER_DAY", 0)
	v.SetDefault("CONVERSATION_HOURS", 24)
	v.SetDefault("PREMIUM_CONVERSATION_HOURS", 72)
	v.SetDefault("RADIUS_POLICY", RadiusInformational)
	v.SetDefault("DEFAULT_SEARCH_RADIUS_KM", 50)
	v.SetDefault("DEFAULT_SEARCH_AGE_MIN", domain.MinAge)
	v.SetDefault("DEFAULT_SEARCH_AGE_MAX", domain.MaxAge)
	v.SetDefault("COLLECT_INTERESTS", true)
	v.SetDefault("QUOTA_TIMEZONE", "UTC")

	v.SetDefault("FLOW_SESSION_TTL", "24h")
	v.SetDefault("SWEEPER_SCHEDULE", "@every 5m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = v.ReadInConfig()

	admins, err := parseIdentities(v.GetString("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("%w: ADMIN_IDS: %v", domain.ErrConfiguration, err)
	}

	config := &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetInt("SERVER_PORT"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSL_MODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Storage: StorageConfig{
			Type: strings.ToLower(v.GetString("STORAGE_TYPE")),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
			TokenTTL:  v.GetDuration("JWT_TOKEN_TTL"),
			Issuer:    v.GetString("JWT_ISSUER"),
		},
		Matching: MatchingConfig{
			DailyLikeLimit:           v.GetInt("LIKES_PER_DAY"),
			PremiumDailyLikeLimit:    v.GetInt("PREMIUM_LIKES_PER_DAY"),
			ConversationHours:        v.GetInt("CONVERSATION_HOURS"),
			PremiumConversationHours: v.GetInt("PREMIUM_CONVERSATION_HOURS"),
			RadiusPolicy:             strings.ToLower(v.GetString("RADIUS_POLICY")),
			DefaultSearchRadiusKm:    v.GetInt("DEFAULT_SEARCH_RADIUS_KM"),
			DefaultSearchAgeMin:      v.GetInt("DEFAULT_SEARCH_AGE_MIN"),
			DefaultSearchAgeMax:      v.GetInt("DEFAULT_SEARCH_AGE_MAX"),
			CollectInterests:         v.GetBool("COLLECT_INTERESTS"),
			Timezone:                 v.GetString("QUOTA_TIMEZONE"),
		},
		Flow: FlowConfig{
			SessionTTL: v.GetDuration("FLOW_SESSION_TTL"),
		},
		Sweeper: SweeperConfig{
			Schedule: v.GetString("SWEEPER_SCHEDULE"),
		},
		Admin: AdminConfig{
			Identities: admins,
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values and resolves the quota timezone.
func (c *Config) Validate() error {
	fail := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", domain.ErrConfiguration, fmt.Sprintf(format, args...))
	}

	switch c.Storage.Type {
	case StorageMemory:
	case StoragePostgres:
		if c.Database.Host == "" {
			return fail("database host is required")
		}
		if c.Database.User == "" {
			return fail("database user is required")
		}
		if c.Database.DBName == "" {
			return fail("database name is required")
		}
	default:
		return fail("unknown storage type %q", c.Storage.Type)
	}

	if c.Auth.JWTSecret == "" {
		return fail("JWT secret is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fail("JWT secret must be at least 32 characters")
	}

	m := &c.Matching
	if m.DailyLikeLimit < 0 || m.PremiumDailyLikeLimit < 0 {
		return fail("like limits must not be negative")
	}
	if m.ConversationHours <= 0 || m.PremiumConversationHours <= 0 {
		return fail("conversation hours must be positive")
	}
	if m.RadiusPolicy != RadiusInformational && m.RadiusPolicy != RadiusStrict {
		return fail("unknown radius policy %q", m.RadiusPolicy)
	}
	if m.DefaultSearchAgeMin < domain.MinAge || m.DefaultSearchAgeMax > domain.MaxAge ||
		m.DefaultSearchAgeMin > m.DefaultSearchAgeMax {
		return fail("default search age range must lie within %d-%d", domain.MinAge, domain.MaxAge)
	}
	if m.DefaultSearchRadiusKm <= 0 {
		return fail("default search radius must be positive")
	}
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return fail("quota timezone: %v", err)
	}
	m.Location = loc

	if c.Flow.SessionTTL <= 0 {
		return fail("flow session TTL must be positive")
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func parseIdentities(raw string) ([]int64, error) {
	ids := []int64{}
	for _, part := range splitList(raw) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid identity %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
