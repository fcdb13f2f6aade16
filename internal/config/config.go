// Package config loads the server configuration from flags, environment
// variables and an optional config file.
//
// Precedence, highest first: command-line flag, FAKEHUB_* environment
// variable, config file, default. Flag names use dashes; the matching
// environment variable upper-cases the name and turns dashes into
// underscores (--init-state → FAKEHUB_INIT_STATE).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "FAKEHUB"
	DefaultPort    = 3000
	DefaultMainHub = "main"
)

// Config is the resolved server configuration.
type Config struct {
	Port      int      `mapstructure:"port"`
	Address   string   `mapstructure:"address"`    // base of every URL handed out; "localhost:<port>" when empty
	MainHub   string   `mapstructure:"main-hub"`   // hub served by the unprefixed routes
	Hubs      []string `mapstructure:"hubs"`       // extra hubs created at startup
	InitState string   `mapstructure:"init-state"` // optional sqlite seed database
	Verbose   bool     `mapstructure:"verbose"`
	Seed      uint64   `mapstructure:"seed"` // id generator seed; 0 picks a time-based one
}

// FlagSet returns the command-line flags understood by Load.
func FlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("fakehub", pflag.ContinueOnError)
	fs.IntP("port", "p", DefaultPort, "port to listen on")
	fs.String("address", "", "address used in generated URLs (default localhost:<port>)")
	fs.String("main-hub", DefaultMainHub, "name of the default hub")
	fs.StringSlice("hubs", nil, "extra hubs to create at startup")
	fs.StringP("init-state", "i", "", "sqlite database with initial hubs and users")
	fs.BoolP("verbose", "v", false, "enable debug logging")
	fs.Uint64("seed", 0, "seed for generated user ids (0 = time-based)")
	fs.StringP("config", "c", "", "path to a TOML, YAML or JSON config file")
	return fs
}

// Load parses args (without the program name) and resolves the configuration.
func Load(args []string) (*Config, error) {
	fs := FlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: parsing flags: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("config: binding flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	// Env values for list flags arrive as one string.
	cfg.Hubs = splitHubs(v.GetStringSlice("hubs"))

	if cfg.Address == "" {
		cfg.Address = fmt.Sprintf("localhost:%d", cfg.Port)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports configuration that cannot be served.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range 1..65535", c.Port))
	}
	if strings.TrimSpace(c.MainHub) == "" {
		errs = append(errs, errors.New("main-hub must not be empty"))
	}
	seen := map[string]bool{c.MainHub: true}
	for _, hub := range c.Hubs {
		if seen[hub] {
			errs = append(errs, fmt.Errorf("hub %q listed twice", hub))
		}
		seen[hub] = true
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

func splitHubs(raw []string) []string {
	var hubs []string
	for _, item := range raw {
		for _, name := range strings.FieldsFunc(item, func(r rune) bool { return r == ',' || r == ' ' }) {
			hubs = append(hubs, name)
		}
	}
	return hubs
}
