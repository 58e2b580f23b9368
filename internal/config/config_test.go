package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const testYAML = `
weather:
  api_key: k123
  latitude: "37.77"
  longitude: "-122.42"
arlo:
  email: me@example.com
  password: secret
poll:
  wind_threshold_mph: 8.5
  interval: 2m
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_FileAndDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Weather.APIKey != "k123" || cfg.Weather.Latitude != "37.77" {
		t.Fatalf("weather not loaded: %+v", cfg.Weather)
	}
	if cfg.Poll.WindThresholdMph != 8.5 {
		t.Fatalf("threshold: got %v", cfg.Poll.WindThresholdMph)
	}
	if cfg.Poll.Interval != 2*time.Minute {
		t.Fatalf("interval: got %v", cfg.Poll.Interval)
	}
	// defaults
	if cfg.Arlo.ArmedMode != "mode1" || cfg.Arlo.WindyMode != "mode2" {
		t.Fatalf("mode defaults: %+v", cfg.Arlo)
	}
	if cfg.HistoryCapacity != 100 {
		t.Fatalf("capacity default: got %d", cfg.HistoryCapacity)
	}
	if cfg.Arlo.BaseURL != "https://arlo.netgear.com" {
		t.Fatalf("arlo base url default: %q", cfg.Arlo.BaseURL)
	}
	if cfg.Arlo.LegacyUnguardedDiscovery {
		t.Fatalf("legacy discovery must default to false")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("WINDGUARD_POLL_WIND_THRESHOLD_MPH", "12")
	t.Setenv("WINDGUARD_ARLO_PASSWORD", "from-env")

	cfg, err := Load(viper.New(), writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Poll.WindThresholdMph != 12 {
		t.Fatalf("threshold: got %v, want 12", cfg.Poll.WindThresholdMph)
	}
	if cfg.Arlo.Password != "from-env" {
		t.Fatalf("password: got %q", cfg.Arlo.Password)
	}
}

func TestLoad_FlagOverridesPort(t *testing.T) {
	v := viper.New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags, err := BindFlags(fs, v)
	if err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := fs.Parse([]string{"--port", "9090", "--once"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg, err := Load(v, writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("port: got %q", cfg.Port)
	}
	if !flags.Once || flags.SetupOnly {
		t.Fatalf("flags: %+v", flags)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Weather:         Weather{APIKey: "k", Latitude: "1", Longitude: "2"},
			Arlo:            Arlo{Email: "e", Password: "p"},
			Poll:            Poll{WindThresholdMph: 6, Interval: time.Minute},
			HistoryCapacity: 100,
		}
	}

	cases := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"ok", func(c *Config) {}, nil},
		{"station id instead of coordinates", func(c *Config) { c.Weather.Latitude, c.Weather.Longitude, c.Weather.StationID = "", "", "KX1" }, nil},
		{"missing api key", func(c *Config) { c.Weather.APIKey = "" }, errMissingAPIKey},
		{"missing location", func(c *Config) { c.Weather.Longitude = "" }, errMissingLocation},
		{"missing password", func(c *Config) { c.Arlo.Password = "" }, errMissingCredentials},
		{"zero threshold", func(c *Config) { c.Poll.WindThresholdMph = 0 }, errBadThreshold},
		{"zero capacity", func(c *Config) { c.HistoryCapacity = 0 }, errBadCapacity},
		{"zero interval", func(c *Config) { c.Poll.Interval = 0 }, errBadInterval},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			if err := c.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}
