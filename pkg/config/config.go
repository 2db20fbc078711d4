package config

import (
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths struct {
		Root       string `mapstructure:"root"`
		Artifact   string `mapstructure:"artifact"`
		Template   string `mapstructure:"template"`
		Assignment string `mapstructure:"assignment"`
		History    string `mapstructure:"history"`
	} `mapstructure:"paths"`

	Server struct {
		HTTPPort    int `mapstructure:"http_port"`
		GRPCPort    int `mapstructure:"grpc_port"`
		MetricsPort int `mapstructure:"metrics_port"`
	} `mapstructure:"server"`

	Worker struct {
		Concurrency int `mapstructure:"concurrency"`
	} `mapstructure:"worker"`

	Metrics struct {
		Textfile string `mapstructure:"textfile"`
	} `mapstructure:"metrics"`
}

// Load layers hard defaults, an optional YAML file, VARIANT_* environment
// variables and any flags in fs (highest precedence). Flag names use the
// config key with dots replaced by dashes, e.g. --paths-root.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// ➊ YAML file (optional)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	// ➋ ENV overrides — e.g. VARIANT_PATHS_ROOT=/srv/lab
	v.SetEnvPrefix("VARIANT")
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	// ➌ Hard defaults
	v.SetDefault("paths.root", ".")
	v.SetDefault("paths.artifact", ".variant_config.json")
	v.SetDefault("paths.template", "ASSIGNMENT_TEMPLATE.md")
	v.SetDefault("paths.assignment", "ASSIGNMENT.md")
	v.SetDefault("paths.history", "")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("server.metrics_port", 9102)
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("metrics.textfile", "")

	// ➍ Flags
	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			if bindErr == nil {
				bindErr = v.BindPFlag(flagKey(f.Name), f)
			}
		})
		if bindErr != nil {
			return nil, bindErr
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Resolve joins p onto the project root unless p is already absolute.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.Root, p)
}

func (c *Config) ArtifactPath() string   { return c.Resolve(c.Paths.Artifact) }
func (c *Config) TemplatePath() string   { return c.Resolve(c.Paths.Template) }
func (c *Config) AssignmentPath() string { return c.Resolve(c.Paths.Assignment) }
func (c *Config) HistoryPath() string    { return c.Resolve(c.Paths.History) }
