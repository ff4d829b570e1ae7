// Package mailer delivers rendered payslips by e-mail.
package mailer

import (
	"context"
	"errors"
	"strings"
)

// ErrNoRecipient is returned when a message has no To address.
var ErrNoRecipient = errors.New("message has no recipient")

// ErrMissingAttachment is returned when an attachment path is not a file.
var ErrMissingAttachment = errors.New("attachment is not a file")

// Message is one outgoing e-mail.
type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Settings holds SMTP connection and sender details.
type Settings struct {
	Host     string
	Port     int
	User     string
	Password string
	UseSSL   bool
	From     string
	FromName string
	BCC      []string
}

// ParseList splits a comma separated address list, dropping blanks.
func ParseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Resolve fills in defaults. From falls back to User. Without a host, Gmail
// senders use smtp.gmail.com:465 over SSL and everyone else
// smtp.office365.com:587 with STARTTLS.
func (s Settings) Resolve() Settings {
	if s.From == "" {
		s.From = s.User
	}
	if s.Host == "" {
		domain := ""
		if at := strings.LastIndex(s.From, "@"); at >= 0 {
			domain = strings.ToLower(s.From[at+1:])
		}
		switch domain {
		case "gmail.com", "googlemail.com":
			s.Host, s.Port, s.UseSSL = "smtp.gmail.com", 465, true
		default:
			s.Host, s.Port, s.UseSSL = "smtp.office365.com", 587, false
		}
	}
	if s.Port == 0 {
		if s.UseSSL {
			s.Port = 465
		} else {
			s.Port = 587
		}
	}
	return s
}

// Expand substitutes {name}, {seq} and {periods} in a subject or body
// template.
func Expand(tpl, name, seq, periods string) string {
	return strings.NewReplacer("{name}", name, "{seq}", seq, "{periods}", periods).Replace(tpl)
}
