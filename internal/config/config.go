package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration knobs for the backend.
type Config struct {
	HTTP struct {
		Addr         string        `mapstructure:"addr"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
	} `mapstructure:"http"`
	Push struct {
		VAPIDPublicKey  string        `mapstructure:"vapid_public_key"`
		VAPIDPrivateKey string        `mapstructure:"vapid_private_key"`
		Subject         string        `mapstructure:"subject"`
		TTL             int           `mapstructure:"ttl"`
		RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	} `mapstructure:"push"`
	Storage struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"storage"`
	Reminder struct {
		WindowDays   int           `mapstructure:"window_days"`
		SweepTimeout time.Duration `mapstructure:"sweep_timeout"`
	} `mapstructure:"reminder"`
	Cron struct {
		Secret    string `mapstructure:"secret"`
		Enabled   bool   `mapstructure:"enabled"`
		Morning   string `mapstructure:"morning"`
		Afternoon string `mapstructure:"afternoon"`
		Evening   string `mapstructure:"evening"`
	} `mapstructure:"cron"`
	Frontend struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"frontend"`
	Auth struct {
		Enabled   bool   `mapstructure:"enabled"`
		Username  string `mapstructure:"username"`
		Password  string `mapstructure:"password"`
		JWTSecret string `mapstructure:"jwt_secret"`
	} `mapstructure:"auth"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// PushConfigured reports whether VAPID delivery credentials are present.
func (c *Config) PushConfigured() bool {
	return strings.TrimSpace(c.Push.VAPIDPublicKey) != "" && strings.TrimSpace(c.Push.VAPIDPrivateKey) != ""
}

// Load reads the configuration from disk/environment using Viper.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("payalert")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// a missing file is fine, env-only config is allowed
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8090")
	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.write_timeout", "30s")

	v.SetDefault("push.subject", "mailto:admin@payalert.app")
	v.SetDefault("push.ttl", 86400)
	v.SetDefault("push.request_timeout", "10s")

	v.SetDefault("storage.path", "./data/payalert.db")

	v.SetDefault("reminder.window_days", 7)
	v.SetDefault("reminder.sweep_timeout", "2m")

	v.SetDefault("cron.enabled", false)
	v.SetDefault("cron.morning", "0 8 * * *")
	v.SetDefault("cron.afternoon", "0 14 * * *")
	v.SetDefault("cron.evening", "0 20 * * *")

	v.SetDefault("frontend.dir", "./web")

	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.username", "admin")
	v.SetDefault("auth.password", "admin123")
	v.SetDefault("auth.jwt_secret", "change-me-secret")

	v.SetDefault("log.level", "info")
}
