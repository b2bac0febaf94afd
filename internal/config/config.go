package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"shiritori/internal/domain"
)

// Dictionary backends
const (
	BackendAPI      = "api"
	BackendWordList = "wordlist"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Game       GameConfig
	Dictionary DictionaryConfig
	Redis      RedisConfig
	Logging    LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
	Host string
	Env  string // "development" or "production"
}

// GameConfig holds the rules every new room is created with
type GameConfig struct {
	TurnSeconds   int
	InitialScore  int
	MinWordLength int
	TimeoutBonus  int
	LookupPenalty int
	WinRule       string
	TickInterval  time.Duration
	StaleTimeout  time.Duration
}

// DictionaryConfig selects and tunes the word lookup
type DictionaryConfig struct {
	Backend      string // "api" or "wordlist"
	BaseURL      string
	Timeout      time.Duration
	WordListPath string // newline-delimited words imported at startup
	WordListDB   string // sqlite file; ":memory:" keeps it in RAM
}

// RedisConfig holds the verdict cache settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load loads configuration from environment variables with defaults.
// Variables from a .env file in the working directory are picked up
// first, without overriding the real environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "0.0.0.0"),
			Env:  getEnv("ENV", "development"),
		},
		Game: GameConfig{
			TurnSeconds:   getEnvInt("TURN_SECONDS", 15),
			InitialScore:  getEnvInt("INITIAL_SCORE", 100),
			MinWordLength: getEnvInt("MIN_WORD_LENGTH", 4),
			TimeoutBonus:  getEnvInt("TIMEOUT_BONUS", 2),
			LookupPenalty: getEnvInt("LOOKUP_PENALTY", 1),
			WinRule:       getEnv("WIN_RULE", string(domain.WinLastStanding)),
			TickInterval:  getEnvDuration("TICK_INTERVAL", time.Second),
			StaleTimeout:  getEnvDuration("STALE_GAME_TIMEOUT", 2*time.Hour),
		},
		Dictionary: DictionaryConfig{
			Backend:      getEnv("DICTIONARY_BACKEND", BackendAPI),
			BaseURL:      getEnv("DICTIONARY_BASE_URL", "https://api.dictionaryapi.dev/api/v2/entries/en"),
			Timeout:      getEnvDuration("DICTIONARY_TIMEOUT", 5*time.Second),
			WordListPath: getEnv("WORDLIST_PATH", ""),
			WordListDB:   getEnv("WORDLIST_DB", ":memory:"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			CacheTTL: getEnvDuration("DICTIONARY_CACHE_TTL", 24*time.Hour),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}, nil
}

// Rules returns the game rules for new rooms
func (c *Config) Rules() domain.Rules {
	return domain.Rules{
		TurnSeconds:   c.Game.TurnSeconds,
		InitialScore:  c.Game.InitialScore,
		MinWordLength: c.Game.MinWordLength,
		TimeoutBonus:  c.Game.TimeoutBonus,
		LookupPenalty: c.Game.LookupPenalty,
		WinRule:       domain.WinRule(c.Game.WinRule),
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// getEnv returns an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as an integer or a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("750ms") or whole seconds ("5")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
