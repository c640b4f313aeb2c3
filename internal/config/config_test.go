package config

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PLUGINTIMEOUT", "")
	t.Setenv("RATELIMITWINDOW", "")
	t.Setenv("RATELIMITRETRY", "")
	t.Setenv("INSTANCEIDLETTL", "")

	cfg := New()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.PluginTimeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %v", cfg.PluginTimeout)
	}
	if cfg.RateLimitWindow != time.Minute {
		t.Fatalf("expected 60s window, got %v", cfg.RateLimitWindow)
	}
	if cfg.RateLimitRetry != 65*time.Second {
		t.Fatalf("expected 65s retry, got %v", cfg.RateLimitRetry)
	}
	if cfg.InstanceIdleTTL != 15*time.Minute {
		t.Fatalf("expected 15m idle ttl, got %v", cfg.InstanceIdleTTL)
	}
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PLUGINBASEURL", "https://gateway.internal")
	t.Setenv("PLUGINTIMEOUT", "5s")
	t.Setenv("RATELIMITWINDOW", "garbage")

	cfg := New()
	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Port)
	}
	if cfg.PluginBaseURL != "https://gateway.internal" {
		t.Fatalf("unexpected base url %q", cfg.PluginBaseURL)
	}
	if cfg.PluginTimeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", cfg.PluginTimeout)
	}
	if cfg.RateLimitWindow != time.Minute {
		t.Fatalf("expected fallback window, got %v", cfg.RateLimitWindow)
	}
}
