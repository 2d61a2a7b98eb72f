package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrConfiguration marks a process that must not start serving traffic.
var ErrConfiguration = errors.New("configuration error")

const (
	StorePostgres = "postgres"
	StorePebble   = "pebble"
	StoreNone     = "none"
)

type Config struct {
	Port string

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	LLMTimeout    time.Duration

	Store       string
	DatabaseURL string
	PebbleDir   string

	KafkaBrokers []string
	KafkaTopic   string

	MenuPath   string
	StrictMenu bool

	CORSOrigins []string
}

func Load() (Config, error) {
	c := Config{
		Port:          envOr("PORT", "8080"),
		OpenAIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:   envOr("OPENAI_MODEL", openai.GPT4oMini),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		LLMTimeout:    60 * time.Second,
		Store:         strings.ToLower(envOr("ORDER_STORE", StorePostgres)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		PebbleDir:     envOr("PEBBLE_DIR", "./data/orders"),
		KafkaBrokers:  splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    envOr("KAFKA_TOPIC", "orders.finalized"),
		MenuPath:      os.Getenv("MENU_PATH"),
		CORSOrigins:   splitList(envOr("CORS_ORIGINS", "*")),
	}

	if c.OpenAIKey == "" {
		return Config{}, fmt.Errorf("%w: OPENAI_API_KEY not set", ErrConfiguration)
	}

	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("%w: invalid LLM_TIMEOUT %q", ErrConfiguration, v)
		}
		c.LLMTimeout = d
	}

	if v := os.Getenv("STRICT_MENU"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: invalid STRICT_MENU %q", ErrConfiguration, v)
		}
		c.StrictMenu = b
	}

	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return Config{}, fmt.Errorf("%w: DATABASE_URL is required when ORDER_STORE=postgres", ErrConfiguration)
		}
	case StorePebble:
		if strings.TrimSpace(c.PebbleDir) == "" {
			return Config{}, fmt.Errorf("%w: PEBBLE_DIR is empty", ErrConfiguration)
		}
	case StoreNone:
	default:
		return Config{}, fmt.Errorf("%w: unknown ORDER_STORE %q", ErrConfiguration, c.Store)
	}

	return c, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
