package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type SourceConfig struct {
	Name   string  `yaml:"name"`
	URL    string  `yaml:"url"`
	Weight float64 `yaml:"weight"`
}

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		BanTTL   string `yaml:"banTtl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Twitch struct {
		Username   string   `yaml:"username"`
		OAuthToken string   `yaml:"oauthToken"`
		Channels   []string `yaml:"channels"`
	} `yaml:"twitch"`
	Trivia struct {
		DefaultAward        int      `yaml:"defaultAward"`
		DefaultTTL          string   `yaml:"defaultTtl"`
		ShinyMultiplier     int      `yaml:"shinyMultiplier"`
		ShinyProbability    float64  `yaml:"shinyProbability"`
		ToxicProbability    float64  `yaml:"toxicProbability"`
		ShinyCap            int      `yaml:"shinyCap"`
		ShinyWindow         string   `yaml:"shinyWindow"`
		SuperCooldown       string   `yaml:"superCooldown"`
		SuperQueueCap       int      `yaml:"superQueueCap"`
		MaxSourcingAttempts int      `yaml:"maxSourcingAttempts"`
		HistoryLookback     string   `yaml:"historyLookback"`
		SourceFailThreshold int      `yaml:"sourceFailThreshold"`
		SourceFailWindow    string   `yaml:"sourceFailWindow"`
		BannedTerms         []string `yaml:"bannedTerms"`
		Emotes              []string `yaml:"emotes"`
		Controllers         []string `yaml:"controllers"`
	} `yaml:"trivia"`
	Sources []SourceConfig `yaml:"sources"`
}

// Load reads YAML config from path and applies defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	t := &c.Trivia
	if t.DefaultAward == 0 {
		t.DefaultAward = 25
	}
	if t.ShinyMultiplier == 0 {
		t.ShinyMultiplier = 5
	}
	if t.ShinyProbability == 0 {
		t.ShinyProbability = 0.02
	}
	if t.ToxicProbability == 0 {
		t.ToxicProbability = 0.01
	}
	if t.ShinyCap == 0 {
		t.ShinyCap = 3
	}
	if t.SuperQueueCap == 0 {
		t.SuperQueueCap = 5
	}
	if t.MaxSourcingAttempts == 0 {
		t.MaxSourcingAttempts = 5
	}
	if t.SourceFailThreshold == 0 {
		t.SourceFailThreshold = 3
	}
}

// Validate rejects impossible tunables. Any error here is fatal at
// startup, never a per-request condition.
func (c *Config) Validate() error {
	t := c.Trivia
	if t.DefaultAward < 1 {
		return fmt.Errorf("trivia.defaultAward must be positive, got %d", t.DefaultAward)
	}
	if t.ShinyProbability < 0 || t.ShinyProbability > 1 {
		return fmt.Errorf("trivia.shinyProbability must be within [0, 1], got %v", t.ShinyProbability)
	}
	if t.ToxicProbability < 0 || t.ToxicProbability > 1 {
		return fmt.Errorf("trivia.toxicProbability must be within [0, 1], got %v", t.ToxicProbability)
	}
	if t.ShinyCap < 0 {
		return fmt.Errorf("trivia.shinyCap must not be negative, got %d", t.ShinyCap)
	}
	if t.SuperQueueCap < 1 {
		return fmt.Errorf("trivia.superQueueCap must be positive, got %d", t.SuperQueueCap)
	}
	if t.MaxSourcingAttempts < 1 {
		return fmt.Errorf("trivia.maxSourcingAttempts must be positive, got %d", t.MaxSourcingAttempts)
	}
	if d := TTLDuration(t.SuperCooldown, time.Minute); d < 0 {
		return fmt.Errorf("trivia.superCooldown must not be negative, got %s", t.SuperCooldown)
	}
	for _, src := range c.Sources {
		if src.Name == "" || src.URL == "" {
			return fmt.Errorf("every source needs a name and url, got %+v", src)
		}
		if src.Weight < 0 {
			return fmt.Errorf("source %q weight must not be negative", src.Name)
		}
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty
// or malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
