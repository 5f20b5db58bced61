package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Dicklesworthstone/refdash/internal/errors"
)

// DefaultEndpoint is the reference service the dashboard reads from.
const DefaultEndpoint = "https://reference.intellisense.io/thickenernn/v1/referencia"

// EnvPrefix namespaces environment overrides, e.g. REFDASH_ENDPOINT.
const EnvPrefix = "REFDASH"

// Config carries runtime options for refdash.
type Config struct {
	Endpoint string      `mapstructure:"endpoint" yaml:"endpoint"`
	Group    string      `mapstructure:"group" yaml:"group"`
	Prefix   string      `mapstructure:"prefix" yaml:"prefix"`
	Fetch    FetchConfig `mapstructure:"fetch" yaml:"fetch"`
	Chart    ChartConfig `mapstructure:"chart" yaml:"chart"`
	UI       UIConfig    `mapstructure:"ui" yaml:"ui"`
	Serve    ServeConfig `mapstructure:"serve" yaml:"serve"`
	Log      LogConfig   `mapstructure:"log" yaml:"log"`
}

// FetchConfig controls the single outbound request.
type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"` // 0 = no timeout
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// ChartConfig controls line color and image export size.
type ChartConfig struct {
	StableColors bool `mapstructure:"stable_colors" yaml:"stable_colors"`
	Width        int  `mapstructure:"width" yaml:"width"`
	Height       int  `mapstructure:"height" yaml:"height"`
}

// UIConfig controls dashboard presentation.
type UIConfig struct {
	ShowErrors bool `mapstructure:"show_errors" yaml:"show_errors"`
}

// ServeConfig holds the browser dashboard listener.
type ServeConfig struct {
	Listen string `mapstructure:"listen" yaml:"listen"`
}

// LogConfig selects where diagnostics go.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

func Default() Config {
	return Config{
		Endpoint: DefaultEndpoint,
		Group:    "TK1",
		Prefix:   "",
		Fetch: FetchConfig{
			Timeout:   0,
			UserAgent: "refdash",
		},
		Chart: ChartConfig{
			StableColors: false,
			Width:        1024,
			Height:       480,
		},
		UI: UIConfig{
			ShowErrors: false,
		},
		Serve: ServeConfig{
			Listen: ":8080",
		},
		Log: LogConfig{
			File:  "",
			Level: "info",
		},
	}
}

// MetricPrefix returns the key prefix a metric must carry to be kept.
// An unset prefix derives from the group, e.g. "TK1_".
func (c Config) MetricPrefix() string {
	if c.Prefix != "" {
		return c.Prefix
	}
	return c.Group + "_"
}

// Validate checks the options every command depends on.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New(errors.ErrConfig,
			"No endpoint configured",
			"Set 'endpoint' in the config file or pass --endpoint")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(errors.ErrConfig,
			"Endpoint '"+c.Endpoint+"' is not an http(s) URL",
			"Use a full URL such as "+DefaultEndpoint)
	}
	if strings.TrimSpace(c.Group) == "" {
		return errors.New(errors.ErrConfig,
			"No metric group configured",
			"Set 'group' (for example TK1)")
	}
	if c.Fetch.Timeout < 0 {
		return errors.New(errors.ErrConfig,
			"fetch.timeout cannot be negative",
			"Use 0 to disable the timeout, or a duration like 10s")
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return errors.New(errors.ErrConfig,
			"chart.width and chart.height must be positive",
			"Try 1024 and 480")
	}
	return nil
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"endpoint":      "endpoint",
	"group":         "group",
	"prefix":        "prefix",
	"timeout":       "fetch.timeout",
	"stable-colors": "chart.stable_colors",
	"show-errors":   "ui.show_errors",
	"listen":        "serve.listen",
	"log-file":      "log.file",
	"log-level":     "log.level",
	"width":         "chart.width",
	"height":        "chart.height",
}

// Load resolves configuration from defaults, the optional YAML file at path,
// REFDASH_* environment variables, and any flags set on fs, in that order.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found: "+path,
					"Check the path passed to --config")
			}
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file is valid YAML")
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.WrapWithCode(err, errors.ErrConfig,
						"Cannot bind flag --"+name, "")
				}
			}
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("group", d.Group)
	v.SetDefault("prefix", d.Prefix)
	v.SetDefault("fetch.timeout", d.Fetch.Timeout)
	v.SetDefault("fetch.user_agent", d.Fetch.UserAgent)
	v.SetDefault("chart.stable_colors", d.Chart.StableColors)
	v.SetDefault("chart.width", d.Chart.Width)
	v.SetDefault("chart.height", d.Chart.Height)
	v.SetDefault("ui.show_errors", d.UI.ShowErrors)
	v.SetDefault("serve.listen", d.Serve.Listen)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.level", d.Log.Level)
}

// AddFlags registers the flags Load understands on fs.
func AddFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("endpoint", d.Endpoint, "metrics endpoint URL")
	fs.String("group", d.Group, "metric group key under current.data")
	fs.String("prefix", "", "metric name prefix (default <group>_)")
	fs.Duration("timeout", d.Fetch.Timeout, "fetch timeout, 0 disables it")
	fs.Bool("stable-colors", d.Chart.StableColors, "derive chart line color from the metric name")
	fs.Bool("show-errors", d.UI.ShowErrors, "show a notice when the fetch fails")
	fs.String("log-file", d.Log.File, "write diagnostics to this file")
	fs.String("log-level", d.Log.Level, "log level: debug|info|warn|error")
}
