package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfig_Defaults(t *testing.T) {
	clearTestEnvVars(t)
	chdirTemp(t)

	config, err := InitializeConfig("")
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, ",", config.CSV.Delimiter)
	assert.Equal(t, "per hour", config.Payroll.Marker)
	assert.Equal(t, 20, config.Payroll.ScanLimit)
	assert.Equal(t, []string{"utf-8", "latin-1", "windows-1252", "iso-8859-1"}, config.Payroll.Encodings)
	assert.Equal(t, "pdf", config.Output.Format)
	assert.Equal(t, "both", config.Output.Placement)
	assert.Equal(t, "payslips", config.Output.Directory)
	assert.Equal(t, "sqlite", config.Store.Driver)
	assert.True(t, config.Mail.DryRun)
	assert.Equal(t, 500, config.Mail.ThrottleMS)
	assert.Equal(t, ":8080", config.Server.Addr)
	assert.Equal(t, 4, config.Batch.Parallelism)
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	clearTestEnvVars(t)
	chdirTemp(t)

	t.Setenv("PAYSLIP_LOG_LEVEL", "debug")
	t.Setenv("PAYSLIP_CSV_DELIMITER", ";")
	t.Setenv("PAYSLIP_OUTPUT_FORMAT", "xlsx")
	t.Setenv("PAYSLIP_OUTPUT_PLACEMENT", "15")
	t.Setenv("PAYSLIP_PAYROLL_SCAN_LIMIT", "30")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_PASS", "secret")

	config, err := InitializeConfig("")
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, ";", config.CSV.Delimiter)
	assert.Equal(t, "xlsx", config.Output.Format)
	assert.Equal(t, "15", config.Output.Placement)
	assert.Equal(t, 30, config.Payroll.ScanLimit)
	assert.Equal(t, "smtp.example.com", config.Mail.Host)
	assert.Equal(t, 2525, config.Mail.Port)
	assert.Equal(t, "secret", config.Mail.Password)
}

func TestInitializeConfig_PrefixedMailEnvWins(t *testing.T) {
	clearTestEnvVars(t)
	chdirTemp(t)

	t.Setenv("SMTP_HOST", "legacy.example.com")
	t.Setenv("PAYSLIP_MAIL_HOST", "new.example.com")

	config, err := InitializeConfig("")
	require.NoError(t, err)
	assert.Equal(t, "new.example.com", config.Mail.Host)
}

func TestInitializeConfig_ConfigFile(t *testing.T) {
	clearTestEnvVars(t)
	dir := chdirTemp(t)

	content := `
log:
  level: warn
  format: json
payroll:
  marker: "rate per hour"
  scan_limit: 10
output:
  format: xlsx
  institution: "Example College"
store:
  driver: memory
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600))

	config, err := InitializeConfig("")
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "rate per hour", config.Payroll.Marker)
	assert.Equal(t, 10, config.Payroll.ScanLimit)
	assert.Equal(t, "xlsx", config.Output.Format)
	assert.Equal(t, "Example College", config.Output.Institution)
	assert.Equal(t, "memory", config.Store.Driver)
	// untouched keys keep defaults
	assert.Equal(t, "both", config.Output.Placement)
}

func TestInitializeConfig_ExplicitFile(t *testing.T) {
	clearTestEnvVars(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch:\n  parallelism: 2\n"), 0600))

	config, err := InitializeConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, config.Batch.Parallelism)

	_, err = InitializeConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestInitializeConfig_HierarchicalPrecedence(t *testing.T) {
	clearTestEnvVars(t)
	dir := chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log:\n  level: warn\n"), 0600))
	t.Setenv("PAYSLIP_LOG_LEVEL", "error")

	config, err := InitializeConfig("")
	require.NoError(t, err)
	assert.Equal(t, "error", config.Log.Level)
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.Log.Level = "info"
		c.Log.Format = "text"
		c.CSV.Delimiter = ","
		c.Payroll.Marker = "per hour"
		c.Payroll.ScanLimit = 20
		c.Payroll.Encodings = []string{"utf-8"}
		c.Output.Format = "pdf"
		c.Output.Placement = "30"
		c.Store.Driver = "sqlite"
		c.Batch.Parallelism = 1
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "invalid log level"},
		{name: "bad format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "invalid log format"},
		{name: "long delimiter", mutate: func(c *Config) { c.CSV.Delimiter = ";;" }, wantErr: "single character"},
		{name: "empty marker", mutate: func(c *Config) { c.Payroll.Marker = "  " }, wantErr: "payroll.marker"},
		{name: "zero scan limit", mutate: func(c *Config) { c.Payroll.ScanLimit = 0 }, wantErr: "scan_limit"},
		{name: "no encodings", mutate: func(c *Config) { c.Payroll.Encodings = nil }, wantErr: "encodings"},
		{name: "bad output format", mutate: func(c *Config) { c.Output.Format = "docx" }, wantErr: "output format"},
		{name: "bad placement", mutate: func(c *Config) { c.Output.Placement = "31" }, wantErr: "placement"},
		{name: "bad driver", mutate: func(c *Config) { c.Store.Driver = "postgres" }, wantErr: "store driver"},
		{name: "bad from", mutate: func(c *Config) { c.Mail.From = "Payroll <pay@example.com>" }, wantErr: "mail.from"},
		{name: "bad port", mutate: func(c *Config) { c.Mail.Port = 70000 }, wantErr: "mail.port"},
		{name: "negative throttle", mutate: func(c *Config) { c.Mail.ThrottleMS = -1 }, wantErr: "throttle"},
		{name: "parallelism", mutate: func(c *Config) { c.Batch.Parallelism = 0 }, wantErr: "parallelism"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := validateConfig(c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigureLoggingFromConfig(t *testing.T) {
	c := &Config{}
	c.Log.Level = "DEBUG"
	c.Log.Format = "json"

	logger := ConfigureLoggingFromConfig(c)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	_, ok := logger.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)

	c.Log.Level = "nope"
	c.Log.Format = "text"
	logger = ConfigureLoggingFromConfig(c)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestGetEnv(t *testing.T) {
	t.Setenv("PAYSLIP_TEST_VALUE", "x")
	assert.Equal(t, "x", GetEnv("PAYSLIP_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetEnv("PAYSLIP_TEST_UNSET_VALUE", "fallback"))
}

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	original, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(original)
	})
	// keep $HOME/.payslip out of the picture
	t.Setenv("HOME", dir)
	return dir
}

func clearTestEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PAYSLIP_LOG_LEVEL", "PAYSLIP_LOG_FORMAT", "PAYSLIP_CSV_DELIMITER",
		"PAYSLIP_OUTPUT_FORMAT", "PAYSLIP_OUTPUT_PLACEMENT", "PAYSLIP_PAYROLL_SCAN_LIMIT",
		"PAYSLIP_MAIL_HOST", "PAYSLIP_BATCH_PARALLELISM", "PAYSLIP_STORE_DRIVER",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "SMTP_USE_SSL",
		"SMTP_FROM_EMAIL", "SMTP_FROM_NAME", "SMTP_BCC",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "pdf", cfg.Output.Format)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "Payslip - {name}", cfg.Mail.Subject)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.NoError(t, cfg.Validate())

	cfg.Output.Placement = "16"
	assert.Error(t, cfg.Validate())
}
