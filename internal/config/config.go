package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string

	MongoURI      string
	MongoDatabase string

	FlwSecretKey string
	FlwBaseURL   string

	WebhookSecret string
	SignatureMode string // "static" or "hmac"

	Tenants        []string // fallback search order; first entry is the default tenant
	TenantRequired bool

	UpstreamTimeout time.Duration
}

func Load() Config {
	cfg := Config{
		Env:             get("APP_ENV", "dev"),
		HTTPPort:        get("PORT", "8080"),
		MongoURI:        get("MONGOURI", "mongodb://localhost:27017"),
		MongoDatabase:   get("MONGO_DATABASE", "payrecondb"),
		FlwSecretKey:    get("FLW_SECRET_KEY", ""),
		FlwBaseURL:      get("FLW_BASE_URL", "https://api.flutterwave.com"),
		WebhookSecret:   get("FLW_WEBHOOK_SECRET", ""),
		SignatureMode:   get("WEBHOOK_SIGNATURE_MODE", "static"),
		Tenants:         split(get("TENANTS", "serac,fleurdevie")),
		TenantRequired:  getBool("TENANT_REQUIRED", false),
		UpstreamTimeout: getDuration("UPSTREAM_TIMEOUT", 10*time.Second),
	}
	return cfg
}

// DefaultTenant is the first configured tenant, used when the caller omits
// a brand and TENANT_REQUIRED is off.
func (c Config) DefaultTenant() string {
	if len(c.Tenants) == 0 {
		return ""
	}
	return c.Tenants[0]
}

func get(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func split(csv string) []string {
	var out []string
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
