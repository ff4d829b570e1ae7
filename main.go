package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/lezzdif22/payslip/cmd/batch"
	"github.com/lezzdif22/payslip/cmd/detect"
	"github.com/lezzdif22/payslip/cmd/emails"
	"github.com/lezzdif22/payslip/cmd/generate"
	"github.com/lezzdif22/payslip/cmd/preview"
	"github.com/lezzdif22/payslip/cmd/root"
	"github.com/lezzdif22/payslip/cmd/send"
	"github.com/lezzdif22/payslip/cmd/serve"
	"github.com/lezzdif22/payslip/internal/config"
)

func init() {
	// .env first so LOG_LEVEL and SMTP_* are visible to everything below
	_, _ = config.LoadEnv()

	root.Log.SetLevel(logLevelFromEnv())

	root.Init()

	root.Cmd.AddCommand(detect.Cmd)
	root.Cmd.AddCommand(preview.Cmd)
	root.Cmd.AddCommand(generate.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
	root.Cmd.AddCommand(send.Cmd)
	root.Cmd.AddCommand(emails.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

// logLevelFromEnv applies LOG_LEVEL before the configuration is loaded.
func logLevelFromEnv() logrus.Level {
	level, err := logrus.ParseLevel(strings.ToLower(config.GetEnv("LOG_LEVEL", "info")))
	if err != nil {
		return logrus.InfoLevel
	}
	logrus.SetLevel(level)
	return level
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
