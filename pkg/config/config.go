package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Storage struct {
		Driver     string `env:"STORAGE_DRIVER" env-default:"sqlite" env-description:"sqlite, postgres, redis or memory"`
		Path       string `env:"STORAGE_PATH" env-default:"./data/stories.db"`
		QuotaBytes int64  `env:"STORAGE_QUOTA_BYTES" env-default:"10485760" env-description:"0 disables the quota"`
		Namespace  string `env:"STORAGE_NAMESPACE" env-default:"stories"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Redis struct {
		Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" env-default:"0"`
	}
	Media struct {
		MaxImageDim      int   `env:"MEDIA_MAX_IMAGE_DIM" env-default:"1400"`
		JPEGQuality      int   `env:"MEDIA_JPEG_QUALITY" env-default:"82"`
		MaxImageBytes    int64 `env:"MEDIA_MAX_IMAGE_BYTES" env-default:"1572864"`
		MaxFallbackBytes int64 `env:"MEDIA_MAX_FALLBACK_BYTES" env-default:"4718592"`
		MaxVideoBytes    int64 `env:"MEDIA_MAX_VIDEO_BYTES" env-default:"4194304"`
		DimLadder        []int `env:"MEDIA_DIM_LADDER" env-separator:"," env-default:"1280,1024,800"`
		QualityLadder    []int `env:"MEDIA_QUALITY_LADDER" env-separator:"," env-default:"75,68,60"`
	}
	Playback struct {
		ImageDuration  time.Duration `env:"PLAYBACK_IMAGE_DURATION" env-default:"3s"`
		ImageTick      time.Duration `env:"PLAYBACK_IMAGE_TICK" env-default:"50ms"`
		VideoTick      time.Duration `env:"PLAYBACK_VIDEO_TICK" env-default:"80ms"`
		VideoFallback  time.Duration `env:"PLAYBACK_VIDEO_FALLBACK" env-default:"15s"`
		CloseDelay     time.Duration `env:"PLAYBACK_CLOSE_DELAY" env-default:"200ms"`
		SwipeThreshold float64       `env:"PLAYBACK_SWIPE_THRESHOLD" env-default:"40"`
	}
	Story struct {
		Retention     time.Duration `env:"STORY_RETENTION" env-default:"24h"`
		SweepInterval time.Duration `env:"SWEEP_INTERVAL" env-default:"5m"`
		ArchiveWarn   int           `env:"STORY_ARCHIVE_WARN" env-default:"200"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		c, err := Read()
		if err != nil {
			help, _ := cleanenv.GetDescription(&Config{}, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
		cfg = c
	})
	return cfg, nil
}

// Read loads a fresh Config from the environment without touching the
// process-wide instance returned by New.
func Read() (*Config, error) {
	c := &Config{}
	if err := cleanenv.ReadEnv(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}
