package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabstat/internal/stats"
)

// OrdinalOrder ranks the levels of one categorical column, lowest first.
// Stored as a list entry so viper does not lowercase column names.
type OrdinalOrder struct {
	Column string   `mapstructure:"column" yaml:"column"`
	Levels []string `mapstructure:"levels" yaml:"levels"`
}

// Global configuration structure.
type Global struct {
	Delimiter          string  `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string  `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string  `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	MaxRows            int     `mapstructure:"max_rows" yaml:"max_rows"`
	HistogramBins      int     `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	TopValues          int     `mapstructure:"top_values" yaml:"top_values"`
	CoercePolicy       string  `mapstructure:"coerce_policy" yaml:"coerce_policy"`
	NumericDefault     float64 `mapstructure:"numeric_default" yaml:"numeric_default"`
	OutputFormat       string  `mapstructure:"output_format" yaml:"output_format"`
	LogLevel           string  `mapstructure:"log_level" yaml:"log_level"`

	OrdinalOrders []OrdinalOrder `mapstructure:"ordinal_orders" yaml:"ordinal_orders"`
}

// Defaults returns the configuration used when no file or environment is present.
func Defaults() *Global {
	c := &Global{
		MaxRows:       0,
		HistogramBins: 10,
		TopValues:     10,
		CoercePolicy:  "default",
		OutputFormat:  "md",
		LogLevel:      "warn",
	}
	for col, levels := range stats.DefaultOrders() {
		c.OrdinalOrders = append(c.OrdinalOrders, OrdinalOrder{Column: col, Levels: levels})
	}
	return c
}

// Orders converts the configured rankings to the engine's order table.
func (c *Global) Orders() stats.Orders {
	out := make(stats.Orders, len(c.OrdinalOrders))
	for _, o := range c.OrdinalOrders {
		if o.Column == "" {
			continue
		}
		out[o.Column] = append([]string(nil), o.Levels...)
	}
	return out
}

// SetOrder replaces or appends the ranking for column.
func (c *Global) SetOrder(column string, levels []string) {
	for i := range c.OrdinalOrders {
		if c.OrdinalOrders[i].Column == column {
			c.OrdinalOrders[i].Levels = levels
			return
		}
	}
	c.OrdinalOrders = append(c.OrdinalOrders, OrdinalOrder{Column: column, Levels: levels})
}

// DefaultPath returns ~/.tabstat/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabstat", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabstat/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
// A .env file in the working directory is read first when present.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	d := Defaults()
	v := viper.New()
	v.SetEnvPrefix("TABSTAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("decimal_separator", d.DecimalSeparator)
	v.SetDefault("thousands_separator", d.ThousandsSeparator)
	v.SetDefault("max_rows", d.MaxRows)
	v.SetDefault("histogram_bins", d.HistogramBins)
	v.SetDefault("top_values", d.TopValues)
	v.SetDefault("coerce_policy", d.CoercePolicy)
	v.SetDefault("numeric_default", d.NumericDefault)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("log_level", d.LogLevel)

	if cfgFile != "" {
		// a missing explicit file is allowed so `config set` can create it
		if _, err := os.Stat(cfgFile); err == nil {
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
			}
		}
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if !v.IsSet("ordinal_orders") {
		c.OrdinalOrders = d.OrdinalOrders
	}
	return &c, nil
}
