package relay

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr string `yaml:"addr"`

	// EmptyGrace is how long a room with no members survives.
	EmptyGrace time.Duration `yaml:"empty_grace"`
	// IdleTimeout reclaims rooms nobody has touched, members or not.
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`

	PingInterval time.Duration `yaml:"ping_interval"`
	SendBuffer   int           `yaml:"send_buffer"`

	// RateLimit is the sustained number of messages per second a session
	// may send; Burst is the bucket size.
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`

	// GameLog is a sqlite path finished games are written to. Empty
	// disables the log.
	GameLog string `yaml:"game_log"`
}

func DefaultConfig() Config {
	return Config{
		Addr:          ":5000",
		EmptyGrace:    time.Minute,
		IdleTimeout:   time.Hour,
		SweepInterval: time.Minute,
		PingInterval:  30 * time.Second,
		SendBuffer:    16,
		RateLimit:     20,
		Burst:         40,
	}
}

// LoadConfig reads a YAML file over the defaults. Unknown keys are an
// error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Check()
}

// Check reports the first setting that cannot work.
func (c Config) Check() error {
	switch {
	case c.SweepInterval <= 0:
		return fmt.Errorf("sweep_interval must be positive")
	case c.PingInterval <= 0:
		return fmt.Errorf("ping_interval must be positive")
	case c.SendBuffer <= 0:
		return fmt.Errorf("send_buffer must be positive")
	case c.RateLimit <= 0 || c.Burst <= 0:
		return fmt.Errorf("rate_limit and burst must be positive")
	}
	return nil
}
