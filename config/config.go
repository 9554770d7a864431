package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/TurbineJesse/go-cfa835/display"
	"github.com/TurbineJesse/go-cfa835/protocol"
	"github.com/TurbineJesse/go-cfa835/serialport"
)

// EnvPrefix prefixes environment overrides, e.g. CFA835_SERIAL_PORT.
const EnvPrefix = "CFA835"

// SerialConfig selects the link to the module.
type SerialConfig struct {
	Port        string        `mapstructure:"port" yaml:"port"`
	Baud        int           `mapstructure:"baud" yaml:"baud"`
	ReadTimeout time.Duration `mapstructure:"readTimeout" yaml:"readTimeout"`
	QueueSize   int           `mapstructure:"queueSize" yaml:"queueSize"`

	// Simulate replaces the serial port with an in-memory module
	Simulate bool `mapstructure:"simulate" yaml:"simulate"`
}

// ProtocolConfig holds the exchange timing and retry settings.
type ProtocolConfig struct {
	Retries           int           `mapstructure:"retries" yaml:"retries"`
	SettleDelay       time.Duration `mapstructure:"settleDelay" yaml:"settleDelay"`
	DrainDelay        time.Duration `mapstructure:"drainDelay" yaml:"drainDelay"`
	KeypadSettleDelay time.Duration `mapstructure:"keypadSettleDelay" yaml:"keypadSettleDelay"`
	KeypadDrainDelay  time.Duration `mapstructure:"keypadDrainDelay" yaml:"keypadDrainDelay"`
	ResponseTimeout   time.Duration `mapstructure:"responseTimeout" yaml:"responseTimeout"`
	PollDelay         time.Duration `mapstructure:"pollDelay" yaml:"pollDelay"`
	PollInterval      time.Duration `mapstructure:"pollInterval" yaml:"pollInterval"`
	ReceiveBufferSize int           `mapstructure:"receiveBufferSize" yaml:"receiveBufferSize"`
}

// LumberjackConfig configures the rotating log file.
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename" yaml:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize" yaml:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups" yaml:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge" yaml:"maxAge"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// LoggingConfig sets the log level and outputs.
type LoggingConfig struct {
	Level  string           `mapstructure:"level" yaml:"level"`
	Format string           `mapstructure:"format" yaml:"format"`
	File   LumberjackConfig `mapstructure:"file" yaml:"file"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable" yaml:"enable"`
	Addr   string `mapstructure:"addr" yaml:"addr"`
	Path   string `mapstructure:"path" yaml:"path"`
}

// Config is the top-level configuration.
type Config struct {
	Serial   SerialConfig   `mapstructure:"serial" yaml:"serial"`
	Protocol ProtocolConfig `mapstructure:"protocol" yaml:"protocol"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"port":         "serial.port",
	"baud":         "serial.baud",
	"simulate":     "serial.simulate",
	"retries":      "protocol.retries",
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"log-file":     "logging.file.filename",
	"metrics-addr": "metrics.addr",
}

// Load reads configuration from a YAML file, CFA835_* environment variables
// and, when flags is non-nil, any of the flags in flagKeys that were set.
// Precedence is flags, then environment, then file, then defaults.
//
// If path is empty, CFA835_CONFIG is consulted, then cfa835.yaml is looked
// for in the working directory and $HOME/.config/cfa835. A missing file is
// only an error when a path was given explicitly.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path == "" {
		path = v.GetString("config")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/cfa835")
		v.SetConfigName("cfa835")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("config", "")

	v.SetDefault("serial.port", "")
	v.SetDefault("serial.baud", serialport.DefaultBaudRate)
	v.SetDefault("serial.readTimeout", "10ms")
	v.SetDefault("serial.queueSize", 1024)
	v.SetDefault("serial.simulate", false)

	v.SetDefault("protocol.retries", 3)
	v.SetDefault("protocol.settleDelay", "50ms")
	v.SetDefault("protocol.drainDelay", "50ms")
	v.SetDefault("protocol.keypadSettleDelay", "20ms")
	v.SetDefault("protocol.keypadDrainDelay", "20ms")
	v.SetDefault("protocol.responseTimeout", "500ms")
	v.SetDefault("protocol.pollDelay", "20ms")
	v.SetDefault("protocol.pollInterval", "1ms")
	v.SetDefault("protocol.receiveBufferSize", protocol.ReceiveBufferSize)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 10)
	v.SetDefault("logging.file.maxBackups", 3)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", false)
	v.SetDefault("metrics.addr", ":9835")
	v.SetDefault("metrics.path", "/metrics")
}

// Validate checks the configuration for values the driver cannot use.
func (c *Config) Validate() error {
	var errs []error

	if !c.Serial.Simulate {
		serialCfg := c.Serial.PortConfig()
		if err := serialCfg.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("serial: %w", err))
		}
	}

	p := c.Protocol
	if p.Retries < 1 {
		errs = append(errs, fmt.Errorf("protocol: retries must be at least 1, got %d", p.Retries))
	}
	for name, d := range map[string]time.Duration{
		"settleDelay":       p.SettleDelay,
		"drainDelay":        p.DrainDelay,
		"keypadSettleDelay": p.KeypadSettleDelay,
		"keypadDrainDelay":  p.KeypadDrainDelay,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("protocol: %s cannot be negative", name))
		}
	}
	if p.ResponseTimeout <= 0 || p.PollDelay <= 0 || p.PollInterval <= 0 {
		errs = append(errs, errors.New("protocol: responseTimeout, pollDelay and pollInterval must be positive"))
	}
	if p.ReceiveBufferSize < protocol.MaxFrameSize {
		errs = append(errs, fmt.Errorf("protocol: receiveBufferSize must be at least %d", protocol.MaxFrameSize))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logging: unknown level %q", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging: unknown format %q", c.Logging.Format))
	}

	if c.Metrics.Enable && c.Metrics.Addr == "" {
		errs = append(errs, errors.New("metrics: addr is required when enabled"))
	}

	return errors.Join(errs...)
}

// PortConfig converts the serial settings for serialport.Open.
func (s SerialConfig) PortConfig() serialport.Config {
	return serialport.Config{
		Name:        s.Port,
		BaudRate:    s.Baud,
		ReadTimeout: s.ReadTimeout,
		QueueSize:   s.QueueSize,
	}
}

// Options converts the protocol settings into display options.
func (p ProtocolConfig) Options() []display.Option {
	return []display.Option{
		display.WithRetries(p.Retries),
		display.WithSettleDelay(p.SettleDelay),
		display.WithDrainDelay(p.DrainDelay),
		display.WithKeypadTiming(p.KeypadSettleDelay, p.KeypadDrainDelay),
		display.WithResponseTimeout(p.ResponseTimeout),
		display.WithPollDelay(p.PollDelay),
		display.WithPollInterval(p.PollInterval),
		display.WithReceiveBufferSize(p.ReceiveBufferSize),
	}
}
