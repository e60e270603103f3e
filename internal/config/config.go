package config

import (
	"log"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	PlayerName           string `env:"PLAYER_NAME" validate:"required"`
	LichessToken         string `env:"LICHESS_TOKEN"`
	LichessBaseURL       string `env:"LICHESS_BASE_URL" validate:"required,url"`
	ChessComBaseURL      string `env:"CHESSCOM_BASE_URL" validate:"required,url"`
	CannedGamesURL       string `env:"CANNED_GAMES_URL" validate:"required,url"`
	GamesFile            string `env:"GAMES_FILE" validate:"required"`
	DBPath               string `env:"DB_PATH" validate:"required"`
	Addr                 string `env:"ADDR" validate:"required"`
	LogLevel             string `env:"LOG_LEVEL" validate:"required,loglevel"`
	LogFormat            string `env:"LOG_FORMAT" validate:"oneof=text json"`
	ShardCount           int    `env:"SHARD_COUNT" validate:"min=1,max=64"`
	HTTPTimeoutSeconds   int    `env:"HTTP_TIMEOUT_SECONDS" validate:"min=1,max=600"`
	HTTPRetryCount       int    `env:"HTTP_RETRY_COUNT" validate:"min=0,max=10"`
	ImportWorkerCount    int    `env:"IMPORT_WORKER_COUNT" validate:"min=1"`
	ImportQueueSize      int    `env:"IMPORT_QUEUE_SIZE" validate:"min=1"`
	ArchiveLimit         int    `env:"ARCHIVE_LIMIT" validate:"min=0"`
	MaxConcurrentArchive int    `env:"MAX_CONCURRENT_ARCHIVE" validate:"min=1,max=50"`
	DetectOpenings       bool   `env:"DETECT_OPENINGS"`
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		PlayerName:           envOr("PLAYER_NAME", "dgs3"),
		LichessToken:         os.Getenv("LICHESS_TOKEN"),
		LichessBaseURL:       envOr("LICHESS_BASE_URL", "https://lichess.org"),
		ChessComBaseURL:      envOr("CHESSCOM_BASE_URL", "https://api.chess.com"),
		CannedGamesURL:       envOr("CANNED_GAMES_URL", "https://sayles-lichess-games.s3.amazonaws.com/games.zip"),
		GamesFile:            envOr("GAMES_FILE", "games.json"),
		DBPath:               envOr("DB_PATH", "file:openingstats.db"),
		Addr:                 envOr("ADDR", ":8080"),
		LogLevel:             envOr("LOG_LEVEL", "INFO"),
		LogFormat:            strings.ToLower(envOr("LOG_FORMAT", "text")),
		ShardCount:           envIntOr("SHARD_COUNT", 1),
		HTTPTimeoutSeconds:   envIntOr("HTTP_TIMEOUT_SECONDS", 30),
		HTTPRetryCount:       envIntOr("HTTP_RETRY_COUNT", 2),
		ImportWorkerCount:    envIntOr("IMPORT_WORKER_COUNT", 2),
		ImportQueueSize:      envIntOr("IMPORT_QUEUE_SIZE", 32),
		ArchiveLimit:         envIntOr("ARCHIVE_LIMIT", 0),
		MaxConcurrentArchive: envIntOr("MAX_CONCURRENT_ARCHIVE", 10),
		DetectOpenings:       envBoolOr("DETECT_OPENINGS", false),
	}
}

// HTTPTimeout is the per-request timeout for the game source clients.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

var validLogLevels = map[string]bool{"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("env")
	})
	_ = v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		return validLogLevels[strings.ToUpper(fl.Field().String())]
	})
	return v
}

// Validate checks every field and reports all problems at once, keyed by the
// environment variable that sets the field.
func (c Config) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate config")
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.Newf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " cannot be empty"
	case "min":
		return name + " must be at least " + fe.Param()
	case "max":
		return name + " must be at most " + fe.Param()
	case "url":
		return name + " must be a valid URL"
	case "oneof":
		return name + " must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "loglevel":
		return name + " must be one of DEBUG, INFO, WARN, ERROR"
	default:
		return name + " is invalid (" + fe.Tag() + ")"
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
