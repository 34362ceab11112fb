package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultPort        = 3318
	DefaultSQLitePath  = "quickly-pulse.db"
	DefaultModel       = "gpt-4o-mini"
	DefaultTokenBudget = 100000
)

type Config struct {
	Port                 int
	DatabaseURL          string
	DatabaseType         string
	PresenterKeySalt     string
	OpenAIKey            string
	OpenAIModel          string
	OpenAIBaseURL        string
	SynthesisTokenBudget int
}

// SynthesisEnabled reports whether an OpenAI key was configured.
func (c Config) SynthesisEnabled() bool {
	return c.OpenAIKey != ""
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	flagSet := flag.NewFlagSet("quickly-pulse", flag.ContinueOnError)

	flagSet.StringVar(&envFile, "env", ".env", "Optional dotenv file")

	// Network config (can be CLI args or env)
	flagSet.IntVar(&cfg.Port, "p", 0, "Server port")
	flagSet.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	flagSet.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	flagSet.StringVar(&cfg.PresenterKeySalt, "presenter-salt", "", "Presenter key salt (prefer env)")
	flagSet.StringVar(&cfg.OpenAIKey, "openai-key", "", "OpenAI API key (prefer env)")
	flagSet.StringVar(&cfg.OpenAIModel, "openai-model", "", "OpenAI model name")
	flagSet.StringVar(&cfg.OpenAIBaseURL, "openai-url", "", "OpenAI API base URL (e.g., for an OpenAI-compatible API)")
	flagSet.IntVar(&cfg.SynthesisTokenBudget, "token-budget", -1, "Token budget per synthesis request (0 disables)")

	if err := flagSet.Parse(args); err != nil {
		return Config{}, err
	}

	// Existing environment variables win over the file
	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = DefaultSQLitePath
	}

	// Secrets - MUST be provided
	if cfg.PresenterKeySalt == "" {
		cfg.PresenterKeySalt = os.Getenv("PRESENTER_KEY_SALT")
	}
	if cfg.PresenterKeySalt == "" {
		return Config{}, errors.New("PRESENTER_KEY_SALT required")
	}

	// Synthesis is optional
	if cfg.OpenAIKey == "" {
		cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = os.Getenv("OPENAI_MODEL")
		if cfg.OpenAIModel == "" {
			cfg.OpenAIModel = DefaultModel
		}
	}
	if cfg.OpenAIBaseURL == "" {
		cfg.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if cfg.SynthesisTokenBudget < 0 {
		if budgetStr := os.Getenv("SYNTHESIS_TOKEN_BUDGET"); budgetStr != "" {
			budget, err := strconv.Atoi(budgetStr)
			if err != nil || budget < 0 {
				return Config{}, errors.New("invalid SYNTHESIS_TOKEN_BUDGET env variable")
			}
			cfg.SynthesisTokenBudget = budget
		} else {
			cfg.SynthesisTokenBudget = DefaultTokenBudget
		}
	}

	return cfg, nil
}

// loadEnvFile reads a dotenv file if present. A missing file is fine.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
