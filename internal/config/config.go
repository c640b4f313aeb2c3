package config

import (
	"os"
	"time"
)

type Config struct {
	ProjectID string
	Region    string
	LogLevel  string
	Port      string

	PluginBaseURL     string
	PluginToken       string
	PluginTokenSecret string
	PluginTokenCipher string
	KMSKeyName        string
	PluginTimeout     time.Duration

	RateLimitWindow time.Duration
	RateLimitRetry  time.Duration
	InstanceIdleTTL time.Duration

	OTelEndpoint string
	OTelInsecure bool
}

func New() *Config {
	return &Config{
		ProjectID:         os.Getenv("PROJECTID"),
		Region:            os.Getenv("REGION"),
		LogLevel:          os.Getenv("LOGLEVEL"),
		Port:              getOr("PORT", "8080"),
		PluginBaseURL:     os.Getenv("PLUGINBASEURL"),
		PluginToken:       os.Getenv("PLUGINTOKEN"),
		PluginTokenSecret: os.Getenv("PLUGINTOKENSECRET"),
		PluginTokenCipher: os.Getenv("PLUGINTOKENCIPHER"),
		KMSKeyName:        os.Getenv("KMSKEYNAME"),
		PluginTimeout:     getDuration("PLUGINTIMEOUT", 30*time.Second),
		RateLimitWindow:   getDuration("RATELIMITWINDOW", 60*time.Second),
		RateLimitRetry:    getDuration("RATELIMITRETRY", 65*time.Second),
		InstanceIdleTTL:   getDuration("INSTANCEIDLETTL", 15*time.Minute),
		OTelEndpoint:      os.Getenv("OTELENDPOINT"),
		OTelInsecure:      os.Getenv("OTELINSECURE") == "true",
	}
}

func getOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration accepts Go duration strings ("90s") and falls back on anything unparsable.
func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
