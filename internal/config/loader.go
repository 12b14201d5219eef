package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".sysdash.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/sysdash"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// DotEnvFile is read from the working directory before the environment is consulted.
	DotEnvFile = ".env"

	// EnvPrefix namespaces environment overrides: SYSDASH_API_URL, SYSDASH_METRICS_INTERVAL, ...
	EnvPrefix = "SYSDASH"
	// LegacyAPIURLEnv is honored when SYSDASH_API_URL is unset.
	LegacyAPIURLEnv = "API_URL"
)

// Options controls where Resolve looks for configuration.
type Options struct {
	// Path is an explicit config file (from --config). Empty means search.
	Path string
	// APIURL overrides every other source when set (from --api-url).
	APIURL string
	// DotEnv is the .env file to load. Empty means DotEnvFile in the working directory.
	DotEnv string
}

// Load reads config from the specified path, with environment overrides applied.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'sysdash init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Resolve builds the effective config: defaults, then the config file (if
// any), then .env and the process environment, then opts.APIURL.
// The result is validated.
func Resolve(opts Options) (*Config, error) {
	if err := loadDotEnv(opts.DotEnv); err != nil {
		return nil, err
	}

	path, err := Find(opts.Path)
	if err != nil {
		return nil, err
	}

	var cfg *Config
	if path == "" {
		cfg, err = parseConfig(newViper(), "")
	} else {
		cfg, err = Load(path)
	}
	if err != nil {
		return nil, err
	}

	if cfg.APIURL == "" {
		cfg.APIURL = os.Getenv(LegacyAPIURLEnv)
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .sysdash.yaml in current directory
// 3. .sysdash.yaml in parent directories (stops at git root or home)
// 4. ~/.config/sysdash/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	home, _ := os.UserHomeDir()
	dir := cwd
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && parent == home {
			break
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		// Stop at git root
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}
	}

	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// newViper returns a viper instance with defaults and SYSDASH_* env binding.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		where := "the environment"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the values in "+where)
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("api_url", "")
	v.SetDefault("metrics_interval", d.MetricsInterval.String())
	v.SetDefault("process_interval", d.ProcessInterval.String())
	v.SetDefault("request_timeout", "0s")
	v.SetDefault("history_size", d.HistorySize)
	v.SetDefault("thresholds.cpu.warn", d.Thresholds.CPU.Warn)
	v.SetDefault("thresholds.cpu.crit", d.Thresholds.CPU.Crit)
	v.SetDefault("thresholds.memory.warn", d.Thresholds.Memory.Warn)
	v.SetDefault("thresholds.memory.crit", d.Thresholds.Memory.Crit)
	v.SetDefault("thresholds.disk.warn", d.Thresholds.Disk.Warn)
	v.SetDefault("thresholds.disk.crit", d.Thresholds.Disk.Crit)
}

// loadDotEnv loads a .env file into the process environment. Variables that
// are already set win. A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		path = DotEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read "+path,
			"Check the file uses KEY=value lines")
	}
	return nil
}
