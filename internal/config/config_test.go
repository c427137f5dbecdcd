package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg := LoadWith(viper.New())
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("unexpected driver: %s", cfg.Database.Driver)
	}
	if cfg.Order.StrictTransitions {
		t.Fatalf("strict transitions should default to false")
	}
	if cfg.Order.PlaceRateLimit.MaxRequests != 10 {
		t.Fatalf("unexpected place rate limit: %+v", cfg.Order.PlaceRateLimit)
	}
	if cfg.Security.LoginRateLimit.BlockSeconds != 600 {
		t.Fatalf("unexpected login rate limit: %+v", cfg.Security.LoginRateLimit)
	}
	if cfg.Events.Topic != "orders.events" {
		t.Fatalf("unexpected events topic: %s", cfg.Events.Topic)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ORDER_STRICT_TRANSITIONS", "true")
	t.Setenv("SERVER_PORT", "9090")

	cfg := LoadWith(viper.New())
	if !cfg.Order.StrictTransitions {
		t.Fatalf("expected env to enable strict transitions")
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("unexpected port: %s", cfg.Server.Port)
	}
}
