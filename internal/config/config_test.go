package config

import (
	"errors"
	"testing"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ADMIN_IDS", "42, 7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected defaults to load, got %v", err)
	}

	if cfg.Storage.Type != StorageMemory {
		t.Errorf("expected memory storage, got %q", cfg.Storage.Type)
	}
	if cfg.Matching.DailyLikeLimit != 20 || cfg.Matching.PremiumDailyLikeLimit != 0 {
		t.Errorf("unexpected like limits %d/%d", cfg.Matching.DailyLikeLimit, cfg.Matching.PremiumDailyLikeLimit)
	}
	if cfg.Matching.ConversationDuration() != 24*time.Hour {
		t.Errorf("expected 24h conversation, got %v", cfg.Matching.ConversationDuration())
	}
	if cfg.Matching.RadiusPolicy != RadiusInformational {
		t.Errorf("expected informational radius policy, got %q", cfg.Matching.RadiusPolicy)
	}
	if cfg.Matching.Location == nil {
		t.Errorf("expected quota location to be resolved")
	}
	if !cfg.Admin.IsAdmin(42) || !cfg.Admin.IsAdmin(7) || cfg.Admin.IsAdmin(1) {
		t.Errorf("unexpected admin list %v", cfg.Admin.Identities)
	}
}

func TestLoadRejectsBadAdminIDs(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ADMIN_IDS", "42,abc")

	if _, err := Load(); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func validConfig() *Config {
	return &Config{
		Storage: StorageConfig{Type: StorageMemory},
		Auth:    AuthConfig{JWTSecret: testSecret},
		Matching: MatchingConfig{
			DailyLikeLimit:           20,
			ConversationHours:        24,
			PremiumConversationHours: 72,
			RadiusPolicy:             RadiusInformational,
			DefaultSearchRadiusKm:    50,
			DefaultSearchAgeMin:      18,
			DefaultSearchAgeMax:      100,
			Timezone:                 "UTC",
		},
		Flow: FlowConfig{SessionTTL: time.Hour},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"postgres without host", func(c *Config) { c.Storage.Type = StoragePostgres }, false},
		{"postgres complete", func(c *Config) {
			c.Storage.Type = StoragePostgres
			c.Database = DatabaseConfig{Host: "db", User: "app", DBName: "nearby"}
		}, true},
		{"unknown storage", func(c *Config) { c.Storage.Type = "sqlite" }, false},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, false},
		{"negative limit", func(c *Config) { c.Matching.DailyLikeLimit = -1 }, false},
		{"unknown radius policy", func(c *Config) { c.Matching.RadiusPolicy = "fuzzy" }, false},
		{"inverted age range", func(c *Config) { c.Matching.DefaultSearchAgeMin = 50; c.Matching.DefaultSearchAgeMax = 30 }, false},
		{"bad timezone", func(c *Config) { c.Matching.Timezone = "Mars/Olympus" }, false},
		{"zero session ttl", func(c *Config) { c.Flow.SessionTTL = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.ok && !errors.Is(err, domain.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}
