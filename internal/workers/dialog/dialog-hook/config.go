// internal/workers/dialog/dialog-hook/config.go
package dialoghook

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
