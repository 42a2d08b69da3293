// internal/api/activities/config.go
package activities

import (
	"context"
	"time"
)

// ReadinessCheck reports whether one dependency can serve traffic.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Config struct {
	StaticDir    string
	ReadyTimeout time.Duration
	Checks       []ReadinessCheck
}

func LoadConfig(staticDir string, checks ...ReadinessCheck) *Config {
	return &Config{
		StaticDir:    staticDir,
		ReadyTimeout: 2 * time.Second,
		Checks:       checks,
	}
}
