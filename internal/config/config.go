package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	appenv "github.com/drivehr/jobsync/internal/env"
)

type Config struct {
	Port        string             `env:"PORT" envDefault:"8080"`
	MetricsPort string             `env:"METRICS_PORT" envDefault:"9090"`
	Env         appenv.Environment `env:"ENV" envDefault:"development"`
	DatabaseURL string             `env:"DATABASE_URL,required"`
	RedisURL    string             `env:"REDIS_URL"`
	SyncSource  string             `env:"SYNC_SOURCE" envDefault:"drivehr"`
	Webhook     Webhook            `envPrefix:"WEBHOOK_"`
	RateLimit   RateLimit          `envPrefix:"RATE_"`
}

type Webhook struct {
	// Secret is intentionally not ,required: an empty secret disables
	// nothing — verification simply rejects every request until it is set.
	Secret          string `env:"SECRET"`
	Enabled         bool   `env:"ENABLED" envDefault:"true"`
	Path            string `env:"PATH" envDefault:"/webhook/drivehr-sync"`
	MaxJobs         int    `env:"MAX_JOBS" envDefault:"100"`
	MaxDriftSeconds int    `env:"MAX_DRIFT_SECONDS" envDefault:"300"`
}

func (w Webhook) MaxDrift() time.Duration {
	return time.Duration(w.MaxDriftSeconds) * time.Second
}

type RateLimit struct {
	Limit         int `env:"LIMIT" envDefault:"10"`
	WindowSeconds int `env:"WINDOW_SECONDS" envDefault:"60"`
}

func (r RateLimit) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

func Read() (Config, error) {
	return env.ParseAs[Config]()
}
