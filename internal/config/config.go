// Package config reads portal settings from the environment. A .env file in
// the working directory is loaded first when present.
package config

import (
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/csg33k/code-portal/internal/adapters/storage"
)

type Config struct {
	Server      string
	Username    string
	Password    string
	HTTPTimeout time.Duration

	NoticeVisible  time.Duration
	NoticeExit     time.Duration
	DownloadSettle time.Duration

	Storage storage.StorageConfig
	PDFFont string

	LogLevel  slog.Level
	LogFormat string
	NoColor   bool
}

// Load loads .env (if any) and reads the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("error loading .env file", "err", err)
	}
	return FromEnv()
}

// FromEnv reads the environment without touching .env.
func FromEnv() *Config {
	return &Config{
		Server:      getEnv("PORTAL_SERVER", "http://localhost:5000"),
		Username:    os.Getenv("PORTAL_USERNAME"),
		Password:    os.Getenv("PORTAL_PASSWORD"),
		HTTPTimeout: getEnvDuration("PORTAL_HTTP_TIMEOUT", 0),

		NoticeVisible:  getEnvDuration("PORTAL_NOTICE_VISIBLE", 3*time.Second),
		NoticeExit:     getEnvDuration("PORTAL_NOTICE_EXIT", time.Second),
		DownloadSettle: getEnvDuration("PORTAL_DOWNLOAD_SETTLE", time.Second),

		Storage: storage.StorageConfig{
			Type:         storage.StorageType(getEnv("STORAGE_TYPE", string(storage.StorageTypeLocal))),
			LocalPath:    getEnv("STORAGE_LOCAL_PATH", "./downloads"),
			S3Bucket:     os.Getenv("AWS_S3_BUCKET"),
			S3Region:     getEnv("AWS_REGION", "us-east-1"),
			S3Prefix:     os.Getenv("AWS_S3_PREFIX"),
			S3Endpoint:   os.Getenv("AWS_S3_ENDPOINT"),
			AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},

		PDFFont: os.Getenv("PORTAL_PDF_FONT"),

		LogLevel:  parseLevel(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		NoColor:   os.Getenv("NO_COLOR") != "",
	}
}

// NewLogger builds the slog handler named by LogFormat.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvDuration accepts Go durations ("1.5s") or plain seconds ("2").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 || n > int64(math.MaxInt64/time.Second) {
		slog.Warn("ignoring invalid duration", "key", key, "value", v)
		return fallback
	}
	return time.Duration(n) * time.Second
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
