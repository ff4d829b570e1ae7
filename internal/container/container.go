// Package container provides dependency injection for the payslip application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"
	"sync"
	"time"

	"github.com/lezzdif22/payslip/internal/batch"
	"github.com/lezzdif22/payslip/internal/config"
	"github.com/lezzdif22/payslip/internal/logging"
	"github.com/lezzdif22/payslip/internal/mailer"
	"github.com/lezzdif22/payslip/internal/metrics"
	"github.com/lezzdif22/payslip/internal/parser"
	"github.com/lezzdif22/payslip/internal/renderer"
	"github.com/lezzdif22/payslip/internal/report"
	"github.com/lezzdif22/payslip/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods. The address book is opened on creation
// and released by Close.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	store    store.AddressBook
	parser   parser.PayrollParser
	renderer renderer.Renderer
	metrics  *metrics.Recorder
	reports  *report.ReportGenerator

	senderOnce sync.Once
	sender     mailer.Sender
	senderErr  error
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format))
}

// NewContainerWithLogger is NewContainer with a caller-supplied logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	placement, err := renderer.ParsePlacement(cfg.Output.Placement)
	if err != nil {
		return nil, err
	}
	rend, err := renderer.New(renderer.Options{
		Format:      cfg.Output.Format,
		Template:    cfg.Output.Template,
		Placement:   placement,
		Title:       cfg.Output.Title,
		Institution: cfg.Output.Institution,
	})
	if err != nil {
		return nil, err
	}

	book, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open address book: %w", err)
	}

	c := &Container{
		logger:   logger,
		config:   cfg,
		store:    book,
		parser:   parser.New(cfg, logger),
		renderer: rend,
		metrics:  metrics.NewRecorder(),
		reports:  report.NewReportGenerator(logger),
	}

	logger.Info("Container initialized successfully",
		logging.F(logging.FieldFormat, rend.Extension()),
		logging.F("store", cfg.Store.Driver),
		logging.F("dry_run", cfg.Mail.DryRun))
	return c, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger { return c.logger }

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config { return c.config }

// GetStore returns the address book.
func (c *Container) GetStore() store.AddressBook { return c.store }

// GetParser returns the payroll engine.
func (c *Container) GetParser() parser.PayrollParser { return c.parser }

// GetRenderer returns the configured payslip renderer.
func (c *Container) GetRenderer() renderer.Renderer { return c.renderer }

// GetMetrics returns the metrics recorder.
func (c *Container) GetMetrics() *metrics.Recorder { return c.metrics }

// GetReportGenerator returns the run report generator.
func (c *Container) GetReportGenerator() *report.ReportGenerator { return c.reports }

// GetSender returns the mail sender, built on first use. In dry-run mode it
// is a DryRunSender; otherwise SMTP credentials must be configured.
func (c *Container) GetSender() (mailer.Sender, error) {
	c.senderOnce.Do(func() {
		if c.config.Mail.DryRun {
			c.sender = mailer.NewDryRunSender(c.logger)
			return
		}
		c.sender, c.senderErr = mailer.NewSMTPSender(mailer.Settings{
			Host:     c.config.Mail.Host,
			Port:     c.config.Mail.Port,
			User:     c.config.Mail.User,
			Password: c.config.Mail.Password,
			UseSSL:   c.config.Mail.UseSSL,
			From:     c.config.Mail.From,
			FromName: c.config.Mail.FromName,
			BCC:      mailer.ParseList(c.config.Mail.BCC),
		}, c.logger)
	})
	return c.sender, c.senderErr
}

// NewGenerator returns a payslip generator using the configured renderer.
func (c *Container) NewGenerator() *batch.Generator {
	g := batch.NewGenerator(c.renderer, c.logger, c.metrics)
	g.Force = c.config.Output.Force
	return g
}

// NewDispatcher returns a dispatcher wired to the address book and sender.
func (c *Container) NewDispatcher() (*batch.Dispatcher, error) {
	sender, err := c.GetSender()
	if err != nil {
		return nil, err
	}
	d := batch.NewDispatcher(c.NewGenerator(), c.store, sender, c.logger, c.metrics)
	if c.config.Mail.Subject != "" {
		d.Subject = c.config.Mail.Subject
	}
	if c.config.Mail.Body != "" {
		d.Body = c.config.Mail.Body
	}
	d.Throttle = time.Duration(c.config.Mail.ThrottleMS) * time.Millisecond
	d.DryRun = c.config.Mail.DryRun
	return d, nil
}

// Close releases the address book.
func (c *Container) Close() error {
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("failed to close address book: %w", err)
	}
	c.logger.Debug("Container closed")
	return nil
}
