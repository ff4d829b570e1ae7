package batch

import (
	"context"
	"strings"
	"time"

	"github.com/lezzdif22/payslip/internal/logging"
	"github.com/lezzdif22/payslip/internal/mailer"
	"github.com/lezzdif22/payslip/internal/metrics"
	"github.com/lezzdif22/payslip/internal/models"
	"github.com/lezzdif22/payslip/internal/payrollparser"
	"github.com/lezzdif22/payslip/internal/store"
)

// Dispatcher generates payslips and mails each one to its employee.
//
// The recipient is the record's own address, else the address-book entry
// for its lookup keys. Any address found is remembered for later runs.
type Dispatcher struct {
	gen     *Generator
	book    store.AddressBook
	sender  mailer.Sender
	logger  logging.Logger
	metrics *metrics.Recorder

	Subject  string
	Body     string
	Throttle time.Duration
	// DryRun marks sends as dry_run; the sender is still called so it can
	// record the message.
	DryRun bool
}

// NewDispatcher creates a Dispatcher. book and rec may be nil.
func NewDispatcher(gen *Generator, book store.AddressBook, sender mailer.Sender, logger logging.Logger, rec *metrics.Recorder) *Dispatcher {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Dispatcher{
		gen:     gen,
		book:    book,
		sender:  sender,
		logger:  logger,
		metrics: rec,
		Subject: "Payslip - {name}",
		Body:    "Please find attached your payslip.",
	}
}

// Send drains b, rendering and mailing every record.
func (d *Dispatcher) Send(ctx context.Context, b *payrollparser.Batch, outDir string) (*Result, error) {
	labels := periodLabels(b.Periods)
	attempts := 0
	return d.gen.run(ctx, b, outDir, func(ctx context.Context, rec models.EmployeeRecord, o Outcome) Outcome {
		o = d.dispatch(ctx, rec, o, labels, &attempts)
		d.metrics.EmailDispatched(string(o.Status))
		return o
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, rec models.EmployeeRecord, o Outcome, labels string, attempts *int) Outcome {
	if o.Status == StatusError {
		o.Status = StatusNoPDF
		return o
	}

	email, err := store.ResolveEmail(ctx, d.book, rec)
	if err != nil {
		d.logger.WithError(err).Warn("Address lookup failed", logging.F(logging.FieldEmployee, rec.Name))
	}
	if email == "" {
		o.Status, o.Error = StatusNoEmail, "no_recipient"
		return o
	}
	o.Email = email

	if d.book != nil {
		if err := d.book.Remember(ctx, store.EntryFromRecord(rec, email)); err != nil {
			d.logger.WithError(err).Warn("Failed to remember address", logging.F(logging.FieldRecipient, email))
		}
	}

	if *attempts > 0 {
		if err := wait(ctx, d.Throttle); err != nil {
			o.Status, o.Error = StatusError, err.Error()
			return o
		}
	}
	*attempts++

	seq := rec.SequenceString()
	msg := mailer.Message{
		To:          email,
		Subject:     mailer.Expand(d.Subject, rec.Name, seq, labels),
		Body:        mailer.Expand(d.Body, rec.Name, seq, labels),
		Attachments: []string{o.Path},
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.WithError(err).Error("Failed to send payslip", logging.F(logging.FieldRecipient, email))
		o.Status, o.Error = StatusError, err.Error()
		return o
	}

	if d.DryRun {
		o.Status = StatusDryRun
	} else {
		o.Status = StatusSent
	}
	return o
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func periodLabels(periods []models.PeriodDescriptor) string {
	labels := make([]string, len(periods))
	for i, p := range periods {
		labels[i] = p.Label
	}
	return strings.Join(labels, ", ")
}
