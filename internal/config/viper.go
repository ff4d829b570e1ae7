// Package config provides Viper-based hierarchical configuration management
// for the payslip tool: defaults, then config.yaml, then PAYSLIP_* variables.
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/lezzdif22/payslip/internal/validation"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Payroll struct {
		// Marker is the token identifying the header row ("per hour").
		Marker    string   `mapstructure:"marker" yaml:"marker"`
		ScanLimit int      `mapstructure:"scan_limit" yaml:"scan_limit"`
		Encodings []string `mapstructure:"encodings" yaml:"encodings"`
	} `mapstructure:"payroll" yaml:"payroll"`

	Output struct {
		Directory   string `mapstructure:"directory" yaml:"directory"`
		Format      string `mapstructure:"format" yaml:"format"`
		Template    string `mapstructure:"template" yaml:"template"`
		Placement   string `mapstructure:"placement" yaml:"placement"`
		Institution string `mapstructure:"institution" yaml:"institution"`
		Title       string `mapstructure:"title" yaml:"title"`
		Force       bool   `mapstructure:"force" yaml:"force"`
	} `mapstructure:"output" yaml:"output"`

	Store struct {
		Driver string `mapstructure:"driver" yaml:"driver"`
		Path   string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"store" yaml:"store"`

	Mail struct {
		Host       string `mapstructure:"host" yaml:"host"`
		Port       int    `mapstructure:"port" yaml:"port"`
		User       string `mapstructure:"user" yaml:"user"`
		Password   string `mapstructure:"password" yaml:"-"` // never serialized
		UseSSL     bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
		From       string `mapstructure:"from" yaml:"from"`
		FromName   string `mapstructure:"from_name" yaml:"from_name"`
		BCC        string `mapstructure:"bcc" yaml:"bcc"`
		Subject    string `mapstructure:"subject" yaml:"subject"`
		Body       string `mapstructure:"body" yaml:"body"`
		ThrottleMS int    `mapstructure:"throttle_ms" yaml:"throttle_ms"`
		DryRun     bool   `mapstructure:"dry_run" yaml:"dry_run"`
	} `mapstructure:"mail" yaml:"mail"`

	Server struct {
		Addr           string   `mapstructure:"addr" yaml:"addr"`
		AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	} `mapstructure:"server" yaml:"server"`

	Batch struct {
		Parallelism int `mapstructure:"parallelism" yaml:"parallelism"`
	} `mapstructure:"batch" yaml:"batch"`
}

// SMTP variables recognised without the PAYSLIP_ prefix, for compatibility
// with existing mail setups.
var smtpEnv = map[string]string{
	"mail.host":      "SMTP_HOST",
	"mail.port":      "SMTP_PORT",
	"mail.user":      "SMTP_USER",
	"mail.password":  "SMTP_PASS",
	"mail.use_ssl":   "SMTP_USE_SSL",
	"mail.from":      "SMTP_FROM_EMAIL",
	"mail.from_name": "SMTP_FROM_NAME",
	"mail.bcc":       "SMTP_BCC",
}

// InitializeConfig loads the configuration. When configFile is empty the
// usual search path is used ($HOME/.payslip, .payslip, current directory).
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.payslip")
		v.AddConfigPath(".payslip")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PAYSLIP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if configFile != "" {
				return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
			}
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	for key, env := range smtpEnv {
		prefixed := "PAYSLIP_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the built-in configuration without reading any file or
// environment variable.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Sprintf("invalid built-in defaults: %v", err))
	}
	return &config
}

// Validate checks the configuration after command-line overrides.
func (c *Config) Validate() error {
	return validateConfig(c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("payroll.marker", "per hour")
	v.SetDefault("payroll.scan_limit", 20)
	v.SetDefault("payroll.encodings", []string{"utf-8", "latin-1", "windows-1252", "iso-8859-1"})

	v.SetDefault("output.directory", "payslips")
	v.SetDefault("output.format", "pdf")
	v.SetDefault("output.template", "")
	v.SetDefault("output.placement", "both")
	v.SetDefault("output.institution", "")
	v.SetDefault("output.title", "PAYSLIP")
	v.SetDefault("output.force", false)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "emails.db")

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 0)
	v.SetDefault("mail.user", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.use_ssl", false)
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.from_name", "Payroll")
	v.SetDefault("mail.bcc", "")
	v.SetDefault("mail.subject", "Payslip - {name}")
	v.SetDefault("mail.body", "Hello {name},\n\nPlease find your payslip attached.\n\nRegards,\nPayroll")
	v.SetDefault("mail.throttle_ms", 500)
	v.SetDefault("mail.dry_run", true)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("batch.parallelism", 4)
}

var validStoreDrivers = map[string]bool{"sqlite": true, "memory": true}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if strings.TrimSpace(config.Payroll.Marker) == "" {
		return fmt.Errorf("payroll.marker must not be empty")
	}
	if config.Payroll.ScanLimit < 1 {
		return fmt.Errorf("payroll.scan_limit must be positive, got: %d", config.Payroll.ScanLimit)
	}
	if len(config.Payroll.Encodings) == 0 {
		return fmt.Errorf("payroll.encodings must list at least one encoding")
	}

	if err := validation.IsValidOutputFormat(config.Output.Format); err != nil {
		return err
	}
	if err := validation.IsValidPlacement(config.Output.Placement); err != nil {
		return err
	}
	if config.Mail.From != "" {
		if err := validation.IsValidEmail(config.Mail.From); err != nil {
			return fmt.Errorf("mail.from: %w", err)
		}
	}

	if !validStoreDrivers[config.Store.Driver] {
		return fmt.Errorf("invalid store driver: %s (must be 'sqlite' or 'memory')", config.Store.Driver)
	}

	if config.Mail.Port < 0 || config.Mail.Port > 65535 {
		return fmt.Errorf("mail.port out of range: %d", config.Mail.Port)
	}
	if config.Mail.ThrottleMS < 0 {
		return fmt.Errorf("mail.throttle_ms must not be negative, got: %d", config.Mail.ThrottleMS)
	}

	if config.Batch.Parallelism < 1 || config.Batch.Parallelism > 64 {
		return fmt.Errorf("batch.parallelism must be between 1 and 64, got: %d", config.Batch.Parallelism)
	}

	return nil
}

// ConfigureLoggingFromConfig builds a logrus logger from the log section.
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
