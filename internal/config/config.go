package config

import (
	"os"
	"strings"
	"time"

	"github.com/jeremywohl/flatten"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/fleetward/osrecon/internal/model"
	"github.com/fleetward/osrecon/internal/probe"
)

const (
	defaultConcurrency   = 10
	defaultMetricsListen = "localhost:9090"
	defaultSNMPCommunity = "public"
)

// InventoryOptions defines the inventory store configuration.
type InventoryOptions struct {
	// Path is the sqlite inventory database file.
	Path string `mapstructure:"path"`
}

// Configuration holds application configuration read from a YAML file
// or set by environment variables.
// nolint:govet // prefer readability over field alignment optimization for this case.
type Configuration struct {
	// LogLevel is the app verbose logging level.
	// one of - info, debug, trace
	LogLevel string `mapstructure:"log_level"`

	// Concurrency is the number of devices processed at once.
	Concurrency int `mapstructure:"concurrency"`

	// BatchTimeout bounds a whole reconciliation run, zero disables it.
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`

	// MetricsListenAddress is where the prometheus endpoint listens.
	MetricsListenAddress string `mapstructure:"metrics_listen_address"`

	// Dryrun simulates all inventory writes.
	Dryrun bool `mapstructure:"dryrun"`

	EnableProfiling bool `mapstructure:"enable_profiling"`

	// Inventory defines the inventory store parameters.
	Inventory InventoryOptions `mapstructure:"inventory"`

	// SNMP defines the device probing client parameters.
	SNMP probe.SNMPConfig `mapstructure:"snmp"`
}

func (c *Configuration) AsLogFields() map[string]interface{} {
	return map[string]interface{}{
		"logLevel":     c.LogLevel,
		"concurrency":  c.Concurrency,
		"batchTimeout": c.BatchTimeout.String(),
		"metricsAddr":  c.MetricsListenAddress,
		"dryrun":       c.Dryrun,
		"inventory":    c.Inventory.Path,
		"snmpPort":     c.SNMP.Port,
	}
}

// Load reads the application configuration from the given file when
// available and overrides from environment variables.
func Load(cfgFilePath, loglevel string) (*Configuration, error) {
	v := viper.New()
	cfg := &Configuration{}

	if err := cfg.envBindVars(v); err != nil {
		return nil, err
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix(model.AppName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readInFile(v, cfg, cfgFilePath); err != nil {
		return nil, err
	}

	if loglevel != "" {
		cfg.LogLevel = loglevel
	}

	err := cfg.validate()

	return cfg, err
}

// Reads in the cfgFile when available and overrides from environment variables.
func readInFile(v *viper.Viper, cfg *Configuration, path string) error {
	if path != "" {
		fh, err := os.Open(path)
		if err != nil {
			return errors.Wrap(model.ErrConfig, err.Error())
		}

		if err = v.ReadConfig(fh); err != nil {
			return errors.Wrap(model.ErrConfig, "ReadConfig error: "+err.Error())
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return err
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return err
	}

	return nil
}

func (cfg *Configuration) validate() error {
	if cfg.Inventory.Path == "" {
		return errors.Wrap(model.ErrConfig, "no inventory database path")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.Concurrency == 0 {
		cfg.Concurrency = defaultConcurrency
	}

	if cfg.MetricsListenAddress == "" {
		cfg.MetricsListenAddress = defaultMetricsListen
	}

	if cfg.SNMP.Community == "" {
		cfg.SNMP.Community = defaultSNMPCommunity
	}

	return nil
}

// envBindVars binds environment variables to the struct
// without a configuration file being unmarshalled,
// this is a workaround for a viper bug,
//
// This can be replaced by the solution in https://github.com/spf13/viper/pull/1429
// once that PR is merged.
func (cfg *Configuration) envBindVars(v *viper.Viper) error {
	envKeysMap := map[string]interface{}{}
	if err := mapstructure.Decode(cfg, &envKeysMap); err != nil {
		return err
	}

	// Flatten nested conf map
	flat, err := flatten.Flatten(envKeysMap, "", flatten.DotStyle)
	if err != nil {
		return errors.Wrap(err, "Unable to flatten config")
	}

	for k := range flat {
		if err := v.BindEnv(k); err != nil {
			return errors.Wrap(model.ErrConfig, "env var bind error: "+err.Error())
		}
	}

	return nil
}
