// internal/workers/recommendation/send-recommendations/config.go
package sendrecommendations

import "time"

type Config struct {
	BatchSize        int
	Concurrency      int
	MaxSearchResults int
	Recommendations  int
	MessageTimeout   time.Duration
	PollInterval     time.Duration
}

func LoadConfig() *Config {
	return &Config{
		BatchSize:        10,
		Concurrency:      1,
		MaxSearchResults: 20,
		Recommendations:  3,
		MessageTimeout:   30 * time.Second,
		PollInterval:     time.Minute,
	}
}
