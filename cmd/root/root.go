// Package root contains the root command for the application
package root

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lezzdif22/payslip/internal/config"
	"github.com/lezzdif22/payslip/internal/container"
	"github.com/lezzdif22/payslip/internal/logging"
	"github.com/lezzdif22/payslip/internal/validation"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input    string
	Output   string
	Validate bool
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "payslip",
		Short: "A CLI tool to compute payroll CSV sheets and render payslips.",
		Long: `payslip is a CLI tool that reads payroll CSV sheets with any number of
pay-period columns, computes gross pay, taxes and net pay per employee, and
renders one payslip per employee as PDF or XLSX. Payslips can be emailed to
addresses kept in a local address book.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to payslip!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: initialize,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer == nil {
				return
			}
			if err := appContainer.Close(); err != nil {
				Log.Warnf("Failed to close container: %v", err)
			}
			appContainer = nil
		},
		SilenceUsage: true,
	}

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}

	// Configuration flags
	ConfigFile string
	LogLevel   string
	LogFormat  string

	// AppConfig is the configuration the current command runs with.
	AppConfig *config.Config

	appContainer *container.Container
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input payroll CSV file (or directory for batch)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output directory (or file for emails export)")
	Cmd.PersistentFlags().BoolVarP(&SharedFlags.Validate, "validate", "v", false, "Validate the input file before processing")

	Cmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "Config file (default is $HOME/.payslip/config.yaml)")
	Cmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	Cmd.PersistentFlags().StringVar(&LogFormat, "log-format", "", "Log format (text, json)")
}

// AddRenderFlags registers the payslip output flags on cmd.
func AddRenderFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "", "Payslip format: pdf or xlsx")
	cmd.Flags().String("template", "", "XLSX template workbook")
	cmd.Flags().String("placement", "", "Withholding placement: 15, 30 or both")
	cmd.Flags().String("institution", "", "Institution name printed on payslips")
	cmd.Flags().Bool("force", false, "Overwrite existing payslips")
}

// AddMailFlags registers the sending flags on cmd.
func AddMailFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", true, "Log messages instead of sending them (--dry-run=false to send)")
	cmd.Flags().Int("throttle-ms", 0, "Pause between two sends, in milliseconds")
	cmd.Flags().String("subject", "", "Subject template ({name}, {seq}, {periods})")
}

// AddStoreFlags registers the address book flags on flags, so a command
// group can share them through its persistent flags.
func AddStoreFlags(flags *pflag.FlagSet) {
	flags.String("store", "", "Address book driver: sqlite or memory")
	flags.String("store-path", "", "Address book database path")
}

func initialize(cmd *cobra.Command, _ []string) error {
	if _, err := config.LoadEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.InitializeConfig(ConfigFile)
	if err != nil {
		return err
	}
	if err := ApplyFlagOverrides(cmd.Flags(), cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	Log = config.ConfigureLoggingFromConfig(cfg)
	logger := logging.NewLogrusAdapterFromLogger(Log)

	if ConfigFile != "" {
		if info, err := os.Stat(ConfigFile); err == nil {
			if err := validation.IsValidFilePermissions(info.Mode().Perm()); err != nil {
				logger.Warn("Config file is readable by other users",
					logging.F(logging.FieldFile, ConfigFile),
					logging.F(logging.FieldReason, err.Error()))
			}
		}
	}

	c, err := container.NewContainerWithLogger(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}

	AppConfig = cfg
	appContainer = c
	return nil
}

// ApplyFlagOverrides copies explicitly set flags over cfg.
func ApplyFlagOverrides(flags *pflag.FlagSet, cfg *config.Config) error {
	if LogLevel != "" {
		cfg.Log.Level = LogLevel
	}
	if LogFormat != "" {
		cfg.Log.Format = LogFormat
	}

	texts := map[string]*string{
		"format":      &cfg.Output.Format,
		"template":    &cfg.Output.Template,
		"placement":   &cfg.Output.Placement,
		"institution": &cfg.Output.Institution,
		"subject":     &cfg.Mail.Subject,
		"store":       &cfg.Store.Driver,
		"store-path":  &cfg.Store.Path,
		"addr":        &cfg.Server.Addr,
	}
	for name, dst := range texts {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}

	bools := map[string]*bool{
		"force":   &cfg.Output.Force,
		"dry-run": &cfg.Mail.DryRun,
	}
	for name, dst := range bools {
		if f := flags.Lookup(name); f != nil && f.Changed {
			v, err := flags.GetBool(name)
			if err != nil {
				return fmt.Errorf("invalid --%s: %w", name, err)
			}
			*dst = v
		}
	}

	ints := map[string]*int{
		"throttle-ms": &cfg.Mail.ThrottleMS,
		"parallelism": &cfg.Batch.Parallelism,
	}
	for name, dst := range ints {
		if f := flags.Lookup(name); f != nil && f.Changed {
			v, err := flags.GetInt(name)
			if err != nil {
				return fmt.Errorf("invalid --%s: %w", name, err)
			}
			*dst = v
		}
	}
	return nil
}

// GetContainer returns the container built for the running command.
func GetContainer() *container.Container {
	return appContainer
}

// GetLogrusAdapter returns the command logger behind the logging interface.
func GetLogrusAdapter() logging.Logger {
	if appContainer != nil {
		return appContainer.GetLogger()
	}
	return logging.NewLogrusAdapterFromLogger(Log)
}
