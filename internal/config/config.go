package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "WINDGUARD"

// Config is the explicit configuration handed to every component at construction.
type Config struct {
	Port     string
	LogLevel string
	LogFile  string
	DBPath   string

	Weather Weather
	Arlo    Arlo
	Poll    Poll
	Auth    Auth

	HistoryCapacity int
}

type Weather struct {
	BaseURL   string
	APIKey    string
	Latitude  string
	Longitude string
	StationID string // Weather Underground pws id; overrides lat/long when set
	UseGust   bool
	Timeout   time.Duration
}

type Arlo struct {
	BaseURL   string
	Email     string
	Password  string
	ArmedMode string
	WindyMode string
	Timeout   time.Duration

	// LegacyUnguardedDiscovery proceeds to the notify call even when no base
	// station was listed, notifying device "none" instead of failing.
	LegacyUnguardedDiscovery bool
}

type Poll struct {
	Interval         time.Duration
	WindThresholdMph float64
}

type Auth struct {
	SigningKey string
	TokenTTL   time.Duration
}

// Flags are the command line switches understood by cmd/main.go.
type Flags struct {
	ConfigFile string
	Once       bool
	SetupOnly  bool
}

var (
	errMissingAPIKey      = errors.New("weather.api_key is required")
	errMissingLocation    = errors.New("weather.latitude/weather.longitude or weather.station_id is required")
	errMissingCredentials = errors.New("arlo.email and arlo.password are required")
	errBadThreshold       = errors.New("poll.wind_threshold_mph must be > 0")
	errBadCapacity        = errors.New("history.capacity must be > 0")
	errBadInterval        = errors.New("poll.interval must be > 0")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "windguard.db")

	v.SetDefault("weather.base_url", "http://api.wunderground.com")
	v.SetDefault("weather.timeout", 10*time.Second)

	v.SetDefault("arlo.base_url", "https://arlo.netgear.com")
	v.SetDefault("arlo.armed_mode", "mode1")
	v.SetDefault("arlo.windy_mode", "mode2")
	v.SetDefault("arlo.timeout", 15*time.Second)

	v.SetDefault("poll.interval", 5*time.Minute)
	v.SetDefault("poll.wind_threshold_mph", 6.0)

	v.SetDefault("history.capacity", 100)

	v.SetDefault("auth.token_ttl", time.Hour)
}

// BindFlags registers the command line flags on fs and binds the overridable ones into v.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) (*Flags, error) {
	f := &Flags{}
	fs.StringVar(&f.ConfigFile, "config", "", "path to config file (default configs/config.yml)")
	fs.BoolVar(&f.Once, "once", false, "run a single poll cycle and exit")
	fs.BoolVar(&f.SetupOnly, "setup-only", false, "seed the history table and exit")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("port", "", "HTTP API port")

	if err := v.BindPFlag("log.level", fs.Lookup("log-level")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("port", fs.Lookup("port")); err != nil {
		return nil, err
	}
	return f, nil
}

// Load reads .env, the YAML config file and WINDGUARD_* environment variables, in increasing priority.
func Load(v *viper.Viper, file string) (*Config, error) {
	_ = godotenv.Load()

	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath("configs") // configs/config.yml
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:     v.GetString("port"),
		LogLevel: v.GetString("log.level"),
		LogFile:  v.GetString("log.file"),
		DBPath:   v.GetString("db.path"),
		Weather: Weather{
			BaseURL:   v.GetString("weather.base_url"),
			APIKey:    v.GetString("weather.api_key"),
			Latitude:  v.GetString("weather.latitude"),
			Longitude: v.GetString("weather.longitude"),
			StationID: v.GetString("weather.station_id"),
			UseGust:   v.GetBool("weather.use_gust"),
			Timeout:   v.GetDuration("weather.timeout"),
		},
		Arlo: Arlo{
			BaseURL:                  v.GetString("arlo.base_url"),
			Email:                    v.GetString("arlo.email"),
			Password:                 v.GetString("arlo.password"),
			ArmedMode:                v.GetString("arlo.armed_mode"),
			WindyMode:                v.GetString("arlo.windy_mode"),
			Timeout:                  v.GetDuration("arlo.timeout"),
			LegacyUnguardedDiscovery: v.GetBool("arlo.legacy_unguarded_discovery"),
		},
		Poll: Poll{
			Interval:         v.GetDuration("poll.interval"),
			WindThresholdMph: v.GetFloat64("poll.wind_threshold_mph"),
		},
		Auth: Auth{
			SigningKey: v.GetString("auth.signing_key"),
			TokenTTL:   v.GetDuration("auth.token_ttl"),
		},
		HistoryCapacity: v.GetInt("history.capacity"),
	}
}

// Validate checks the settings a poll cycle cannot run without.
func (c *Config) Validate() error {
	if c.Weather.APIKey == "" {
		return errMissingAPIKey
	}
	if c.Weather.StationID == "" && (c.Weather.Latitude == "" || c.Weather.Longitude == "") {
		return errMissingLocation
	}
	if c.Arlo.Email == "" || c.Arlo.Password == "" {
		return errMissingCredentials
	}
	if c.Poll.WindThresholdMph <= 0 {
		return errBadThreshold
	}
	if c.HistoryCapacity <= 0 {
		return errBadCapacity
	}
	if c.Poll.Interval <= 0 {
		return errBadInterval
	}
	return nil
}
