package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/config.yml"

type (
	// Config -.
	Config struct {
		App      `yaml:"app"`
		Log      `yaml:"logger"`
		Telegram `yaml:"telegram"`
		Audio    `yaml:"audio"`
		Server   `yaml:"server"`
		OTEL     `yaml:"otel"`
	}

	// App -.
	App struct {
		Name    string `env-default:"audio-bot" yaml:"name"    env:"APP_NAME"`
		Version string `env-default:"1.0.0"     yaml:"version" env:"APP_VERSION"`
	}

	// Log -.
	Log struct {
		Level string `env-default:"info" yaml:"log_level" env:"LOG_LEVEL"`
	}

	// Telegram -. The token is only ever read from the environment.
	Telegram struct {
		Token       string `env-required:"true" yaml:"-" env:"TELEGRAM_TOKEN"`
		PollTimeout int    `env-default:"60" yaml:"poll_timeout" env:"TELEGRAM_POLL_TIMEOUT"`
		Debug       bool   `env-default:"false" yaml:"debug" env:"TELEGRAM_DEBUG"`
	}

	// Audio -.
	Audio struct {
		TempDir       string `yaml:"temp_dir" env:"AUDIO_TEMP_DIR"`
		FFmpegPath    string `env-default:"ffmpeg" yaml:"ffmpeg_path" env:"FFMPEG_PATH"`
		MP3Bitrate    string `env-default:"192k" yaml:"mp3_bitrate" env:"AUDIO_MP3_BITRATE"`
		PreservePitch bool   `env-default:"false" yaml:"preserve_pitch" env:"AUDIO_PRESERVE_PITCH"`
	}

	// Server exposes /metrics and /healthz. An empty port disables it.
	Server struct {
		Port string `yaml:"port" env:"HTTP_PORT"`
	}

	// OTEL -. SampleRatio is the fraction of root traces kept, 0 to 1.
	OTEL struct {
		Exporter    string  `env-default:"none" yaml:"exporter" env:"OTEL_EXPORTER"`
		Endpoint    string  `yaml:"endpoint" env:"OTEL_ENDPOINT"`
		SampleRatio float64 `env-default:"1" yaml:"sample_ratio" env:"OTEL_SAMPLE_RATIO"`
	}
)

// NewConfig returns app config.
//
// The YAML file at CONFIG_PATH (default ./config/config.yml) is optional;
// environment variables always take precedence over it.
func NewConfig() (*Config, error) {
	cfg := &Config{}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	var err error
	if _, statErr := os.Stat(path); statErr == nil {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	switch c.OTEL.Exporter {
	case "none", "":
	case "jaeger", "otlp":
		if c.OTEL.Endpoint == "" {
			return fmt.Errorf("otel exporter %q requires an endpoint", c.OTEL.Exporter)
		}
	default:
		return fmt.Errorf("unknown otel exporter %q", c.OTEL.Exporter)
	}

	if c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1 {
		return fmt.Errorf("otel sample ratio must be between 0 and 1, got %v", c.OTEL.SampleRatio)
	}

	if c.Telegram.PollTimeout < 0 {
		return fmt.Errorf("telegram poll timeout must not be negative, got %d", c.Telegram.PollTimeout)
	}

	if c.Audio.MP3Bitrate == "" {
		return fmt.Errorf("audio mp3 bitrate must not be empty")
	}

	return nil
}
