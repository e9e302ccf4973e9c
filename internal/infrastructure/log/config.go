package log

import (
	"strconv"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Logger environment variables
const (
	EnvLevel      = "LOG_LEVEL"
	EnvFormat     = "LOG_FORMAT"
	EnvOutput     = "LOG_OUTPUT"
	EnvAddSource  = "LOG_ADD_SOURCE"
	EnvMaxSizeMB  = "LOG_MAX_SIZE_MB"
	EnvMaxBackups = "LOG_MAX_BACKUPS"
	EnvMaxAgeDays = "LOG_MAX_AGE_DAYS"

	// EnvDeployment set to "development" forces debug console logs with sources
	EnvDeployment = "ENV"
)

// Config controls the process-wide logger
type Config struct {
	Level     string // debug, info, warn, error
	Format    string // console or json
	Output    string // stdout, stderr or file:/path/to/log
	AddSource bool
	Rotation  Rotation
}

// Rotation limits file outputs; zero fields take the defaults
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var defaultRotation = Rotation{MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 30}

func (r Rotation) withDefaults() Rotation {
	if r.MaxSizeMB <= 0 {
		r.MaxSizeMB = defaultRotation.MaxSizeMB
	}
	if r.MaxBackups <= 0 {
		r.MaxBackups = defaultRotation.MaxBackups
	}
	if r.MaxAgeDays <= 0 {
		r.MaxAgeDays = defaultRotation.MaxAgeDays
	}
	return r
}

// NewConfigFromEnv reads the logger configuration from the environment.
// Unparseable values fall back to their defaults.
func NewConfigFromEnv() *Config {
	k := koanf.New(".")
	// reading the environment does not fail
	_ = k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value = strings.TrimSpace(value); value == "" {
			return "", nil
		}
		if key != EnvDeployment && !strings.HasPrefix(key, "LOG_") {
			return "", nil
		}
		return key, value
	}), nil)

	cfg := &Config{
		Level:     stringOr(k, EnvLevel, "info"),
		Format:    stringOr(k, EnvFormat, "console"),
		Output:    stringOr(k, EnvOutput, "stdout"),
		AddSource: boolOr(k, EnvAddSource, false),
		Rotation: Rotation{
			MaxSizeMB:  intOr(k, EnvMaxSizeMB, defaultRotation.MaxSizeMB),
			MaxBackups: intOr(k, EnvMaxBackups, defaultRotation.MaxBackups),
			MaxAgeDays: intOr(k, EnvMaxAgeDays, defaultRotation.MaxAgeDays),
		},
	}

	if strings.EqualFold(k.String(EnvDeployment), "development") {
		cfg.Level = "debug"
		cfg.Format = "console"
		cfg.AddSource = true
	}
	return cfg
}

func stringOr(k *koanf.Koanf, key, def string) string {
	if v := k.String(key); v != "" {
		return v
	}
	return def
}

func boolOr(k *koanf.Koanf, key string, def bool) bool {
	b, err := strconv.ParseBool(k.String(key))
	if err != nil {
		return def
	}
	return b
}

func intOr(k *koanf.Koanf, key string, def int) int {
	n, err := strconv.Atoi(k.String(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
