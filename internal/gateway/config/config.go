package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort            = ":8000"
	DefaultUpstreamURL     = "http://34.135.155.158:8000/create_architecture"
	DefaultUpstreamTimeout = 120 * time.Second
	DefaultCacheTTL        = 10 * time.Minute
)

type Config struct {
	Port     string
	Env      string
	Upstream UpstreamConfig
	Cache    CacheConfig
	CORS     CORSConfig
}

// IsLocal reports whether the service runs in the local development env.
func (c *Config) IsLocal() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "local")
}

type UpstreamConfig struct {
	URL     string
	Timeout time.Duration
}

// CacheConfig is disabled unless Size is positive.
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

func (c CacheConfig) Enabled() bool { return c.Size > 0 }

// CORSConfig lists allowed origins. Empty means every origin.
type CORSConfig struct {
	AllowedOrigins []string
}

// Overrides carries command-line values. Empty fields leave the environment
// value in place.
type Overrides struct {
	Port            string
	UpstreamURL     string
	UpstreamTimeout string
	CacheSize       string
	CacheTTL        string
}

func Load(o Overrides) (*Config, error) {
	_ = godotenv.Load()

	port := normalizePort(firstNonEmpty(o.Port, strings.TrimSpace(os.Getenv("PORT")), DefaultPort))

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	upstream, err := loadUpstreamConfig(o)
	if err != nil {
		return nil, err
	}
	cache, err := loadCacheConfig(o)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:     port,
		Env:      env,
		Upstream: upstream,
		Cache:    cache,
		CORS:     CORSConfig{AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))},
	}, nil
}

func loadUpstreamConfig(o Overrides) (UpstreamConfig, error) {
	raw := firstNonEmpty(o.UpstreamURL, strings.TrimSpace(os.Getenv("ARCHITECTURE_SERVICE_URL")), DefaultUpstreamURL)
	u, err := url.Parse(raw)
	if err != nil {
		return UpstreamConfig{}, fmt.Errorf("invalid architecture service url %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return UpstreamConfig{}, fmt.Errorf("invalid architecture service url %q: must be an absolute http(s) url", raw)
	}

	timeout, err := parseDuration("ARCHITECTURE_SERVICE_TIMEOUT", o.UpstreamTimeout, DefaultUpstreamTimeout)
	if err != nil {
		return UpstreamConfig{}, err
	}
	if timeout <= 0 {
		return UpstreamConfig{}, fmt.Errorf("ARCHITECTURE_SERVICE_TIMEOUT must be positive, got %s", timeout)
	}
	return UpstreamConfig{URL: raw, Timeout: timeout}, nil
}

func loadCacheConfig(o Overrides) (CacheConfig, error) {
	size := 0
	if raw := firstNonEmpty(o.CacheSize, strings.TrimSpace(os.Getenv("ARCHITECTURE_CACHE_SIZE"))); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return CacheConfig{}, fmt.Errorf("invalid ARCHITECTURE_CACHE_SIZE %q: %w", raw, err)
		}
		if v < 0 {
			return CacheConfig{}, fmt.Errorf("ARCHITECTURE_CACHE_SIZE must not be negative, got %d", v)
		}
		size = v
	}
	ttl, err := parseDuration("ARCHITECTURE_CACHE_TTL", o.CacheTTL, DefaultCacheTTL)
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{Size: size, TTL: ttl}, nil
}

func parseDuration(key, override string, def time.Duration) (time.Duration, error) {
	raw := firstNonEmpty(override, strings.TrimSpace(os.Getenv(key)))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func normalizePort(port string) string {
	port = strings.TrimSpace(port)
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
