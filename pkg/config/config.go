package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// Remote API
	APIBaseURL      string        `envconfig:"API_BASE_URL" default:"http://localhost:8000/api"`
	APITimeout      time.Duration `envconfig:"API_TIMEOUT" default:"10s"`
	APIRetryMax     uint64        `envconfig:"API_RETRY_MAX" default:"2"`
	APIRetryInitial time.Duration `envconfig:"API_RETRY_INITIAL" default:"200ms"`
	// Token storage; empty REDIS_ADDR keeps tokens in memory
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	TokenTTL      time.Duration `envconfig:"TOKEN_TTL" default:"720h"`
	// Browser sessions
	SessionCookie  string        `envconfig:"SESSION_COOKIE" default:"sid"`
	CookieSecure   bool          `envconfig:"COOKIE_SECURE" default:"false"`
	SessionIdleTTL time.Duration `envconfig:"SESSION_IDLE_TTL" default:"24h"`
	CSRFKey        string        `envconfig:"CSRF_KEY" default:""`
	// Activity events; empty RABBIT_URL logs them instead
	RabbitURL        string   `envconfig:"RABBIT_URL" default:""`
	ActivityExchange string   `envconfig:"STOREFRONT_EXCHANGE" default:"storefront.exchange"`
	ActivityQueue    string   `envconfig:"ACTIVITY_QUEUE" default:"storefront.activity.q"`
	ActivityBindings []string `envconfig:"ACTIVITY_BINDINGS" default:"storefront.#"`
	ActivityDLX      string   `envconfig:"ACTIVITY_DLX" default:"storefront.activity.dlx"`
	ActivityDLQ      string   `envconfig:"ACTIVITY_DLQ" default:"storefront.activity.q.dlq"`
	// Tracing; empty endpoint disables export
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:""`
	Env          string `envconfig:"ENV" default:"dev"`
	// Network
	HTTPAddr string `envconfig:"STOREFRONT_HTTP_ADDR" default:":3000"`
}

// Load reads an optional .env file and then the process environment.
func Load() (App, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return App{}, err
	}
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
