package mailer

import (
	"context"
	"sync"

	"github.com/lezzdif22/payslip/internal/logging"
)

// DryRunSender records messages instead of sending them.
type DryRunSender struct {
	logger logging.Logger

	mu   sync.Mutex
	sent []Message
}

// NewDryRunSender creates a DryRunSender. logger may be nil.
func NewDryRunSender(logger logging.Logger) *DryRunSender {
	return &DryRunSender{logger: logger}
}

func (d *DryRunSender) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	d.mu.Lock()
	d.sent = append(d.sent, msg)
	d.mu.Unlock()

	if d.logger != nil {
		d.logger.Info("Dry run: payslip not sent",
			logging.Field{Key: logging.FieldRecipient, Value: msg.To},
			logging.Field{Key: logging.FieldOperation, Value: "send"})
	}
	return nil
}

// Messages returns a copy of the recorded messages.
func (d *DryRunSender) Messages() []Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Message(nil), d.sent...)
}
