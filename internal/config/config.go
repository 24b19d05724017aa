package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host               string
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	MaxMultipartMemory int64
}

type LoggingConfig struct {
	Level string
}

// ClassifierConfig describes the external classification program. The
// artifact path is appended after Args on every invocation.
type ClassifierConfig struct {
	Command       string
	Args          []string
	WorkDir       string
	Timeout       time.Duration
	MaxConcurrent int
}

type ArtifactConfig struct {
	Dir           string
	MaxAge        time.Duration
	SweepSchedule string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

type AppConfig struct {
	Environment      string
	Logging          LoggingConfig
	HTTP             HTTPConfig
	Classifier       ClassifierConfig
	Artifacts        ArtifactConfig
	Redis            RedisConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("POTHOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Classifier.Command == "" {
		return nil, fmt.Errorf("classifier.command must be set")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("logging.level", "")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "30s")
	v.SetDefault("http.writetimeout", "5m")
	v.SetDefault("http.idletimeout", "60s")
	v.SetDefault("http.maxmultipartmemory", 32<<20)

	v.SetDefault("allowcorsorigins", []string{"http://localhost:5173"})

	v.SetDefault("classifier.command", "python3")
	v.SetDefault("classifier.args", []string{"python/test.py"})
	v.SetDefault("classifier.workdir", "")
	v.SetDefault("classifier.timeout", "2m")
	v.SetDefault("classifier.maxconcurrent", 0)

	v.SetDefault("artifacts.dir", "")
	v.SetDefault("artifacts.maxage", "1h")
	v.SetDefault("artifacts.sweepschedule", "0 */10 * * * *") // every 10 minutes

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "24h")
	v.SetDefault("redis.prefix", "pothole:prediction:")
}
