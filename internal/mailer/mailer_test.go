package mailer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lezzdif22/payslip/internal/logging"
)

func TestSettings_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		in       Settings
		wantHost string
		wantPort int
		wantSSL  bool
		wantFrom string
	}{
		{"gmail autodetect", Settings{User: "payroll@gmail.com"}, "smtp.gmail.com", 465, true, "payroll@gmail.com"},
		{"googlemail autodetect", Settings{From: "hr@GoogleMail.com"}, "smtp.gmail.com", 465, true, "hr@GoogleMail.com"},
		{"other domain uses office365", Settings{From: "hr@plv.edu.ph"}, "smtp.office365.com", 587, false, "hr@plv.edu.ph"},
		{"explicit host kept", Settings{Host: "mail.local", From: "a@gmail.com"}, "mail.local", 587, false, "a@gmail.com"},
		{"explicit ssl port default", Settings{Host: "mail.local", UseSSL: true}, "mail.local", 465, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Resolve()
			assert.Equal(t, tt.wantHost, got.Host)
			assert.Equal(t, tt.wantPort, got.Port)
			assert.Equal(t, tt.wantSSL, got.UseSSL)
			assert.Equal(t, tt.wantFrom, got.From)
		})
	}
}

func TestExpandAndParseList(t *testing.T) {
	assert.Equal(t, "Payslip - Cruz (3) Oct 1-15",
		Expand("Payslip - {name} ({seq}) {periods}", "Cruz", "3", "Oct 1-15"))
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, ParseList(" a@x.com, ,b@x.com,"))
	assert.Nil(t, ParseList(""))
}

func TestNewSMTPSender_RequiresCredentials(t *testing.T) {
	_, err := NewSMTPSender(Settings{From: "a@gmail.com"}, logging.NewMockLogger())
	assert.Error(t, err)

	s, err := NewSMTPSender(Settings{User: "a@gmail.com", Password: "secret"}, logging.NewMockLogger())
	require.NoError(t, err)
	assert.Equal(t, "smtp.gmail.com", s.Settings().Host)
}

func TestSMTPSender_BuildMessage(t *testing.T) {
	dir := t.TempDir()
	attachment := filepath.Join(dir, "payslip_001_Cruz.pdf")
	require.NoError(t, os.WriteFile(attachment, []byte("%PDF-1.3 test"), 0600))

	s, err := NewSMTPSender(Settings{
		User: "payroll@example.com", Password: "x", FromName: "Payroll", BCC: []string{"audit@example.com"},
	}, logging.NewMockLogger())
	require.NoError(t, err)

	m, err := s.buildMessage(Message{To: "cruz@example.com", Subject: "Payslip - Cruz", Body: "Hello", Attachments: []string{attachment}})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "To: <cruz@example.com>")
	assert.Contains(t, raw, "Subject: Payslip - Cruz")
	assert.Contains(t, raw, `"Payroll" <payroll@example.com>`)
	assert.Contains(t, raw, "payslip_001_Cruz.pdf")
}

func TestSMTPSender_BuildMessageErrors(t *testing.T) {
	s, err := NewSMTPSender(Settings{User: "payroll@example.com", Password: "x"}, nil)
	require.NoError(t, err)

	_, err = s.buildMessage(Message{})
	assert.ErrorIs(t, err, ErrNoRecipient)

	_, err = s.buildMessage(Message{To: "a@example.com", Attachments: []string{filepath.Join(t.TempDir(), "missing.pdf")}})
	assert.ErrorIs(t, err, ErrMissingAttachment)

	_, err = s.buildMessage(Message{To: "a@example.com", Attachments: []string{t.TempDir()}})
	assert.ErrorIs(t, err, ErrMissingAttachment, "a directory is not an attachment")

	_, err = s.buildMessage(Message{To: "not an address"})
	assert.Error(t, err)
}

func TestDryRunSender(t *testing.T) {
	logger := logging.NewMockLogger()
	d := NewDryRunSender(logger)

	require.NoError(t, d.Send(context.Background(), Message{To: "a@example.com", Subject: "s"}))
	assert.ErrorIs(t, d.Send(context.Background(), Message{}), ErrNoRecipient)

	msgs := d.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "a@example.com", msgs[0].To)
	assert.True(t, logger.HasEntry("INFO", "Dry run: payslip not sent"))
}
