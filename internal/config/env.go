package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFile is loaded from the books directory when present. Variables already
// set in the process environment take precedence over it.
const EnvFile = ".env"

// Env holds per-machine overrides. They change how a books directory is
// opened but are never written back to books.yaml.
//
//	BOOKS_LOG_LEVEL      logging.level
//	BOOKS_LOG_FORMAT     logging.format
//	BOOKS_EVENTS_STRICT  events.strict
//	BOOKS_CORS_ORIGINS   api.cors_origins, comma separated
type Env struct {
	LogLevel    string
	LogFormat   string
	Strict      *bool
	CORSOrigins []string
}

// LoadEnv reads <root>/.env, if any, and then the BOOKS_* variables.
func LoadEnv(root string) (Env, error) {
	path := filepath.Join(root, EnvFile)
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			return Env{}, fmt.Errorf("loading %s: %w", EnvFile, err)
		}
	}

	env := Env{
		LogLevel:  os.Getenv("BOOKS_LOG_LEVEL"),
		LogFormat: os.Getenv("BOOKS_LOG_FORMAT"),
	}
	if s := os.Getenv("BOOKS_EVENTS_STRICT"); s != "" {
		strict, err := strconv.ParseBool(s)
		if err != nil {
			return Env{}, fmt.Errorf("parsing BOOKS_EVENTS_STRICT %q: %w", s, err)
		}
		env.Strict = &strict
	}
	for _, o := range strings.Split(os.Getenv("BOOKS_CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			env.CORSOrigins = append(env.CORSOrigins, o)
		}
	}
	return env, nil
}

// Runtime returns a copy of c with env applied.
func (c Config) Runtime(env Env) Config {
	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		c.Logging.Format = env.LogFormat
	}
	if env.Strict != nil {
		c.Events.Strict = *env.Strict
	}
	if len(env.CORSOrigins) > 0 {
		c.API.CORSOrigins = env.CORSOrigins
	}
	return c
}
