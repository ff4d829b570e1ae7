// Package serve runs the interactive HTTP front-end.
package serve

import (
	"github.com/spf13/cobra"

	"github.com/lezzdif22/payslip/cmd/common"
	"github.com/lezzdif22/payslip/cmd/root"
	"github.com/lezzdif22/payslip/internal/container"
	"github.com/lezzdif22/payslip/internal/server"
)

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the preview, generate and address book API over HTTP",
	Long: `Start an HTTP server exposing the payroll engine: upload a sheet to preview
its records or render its payslips, manage the address book, and scrape
Prometheus metrics at /metrics. Stops gracefully on Ctrl-C.

Example:
  payslip serve --addr :8080 -o payslips/`,
	Args: cobra.NoArgs,
	Run:  serveFunc,
}

func init() {
	Cmd.Flags().String("addr", "", "Listen address (default from server.addr)")
	root.AddRenderFlags(Cmd)
	root.AddStoreFlags(Cmd.Flags())
}

func serveFunc(cmd *cobra.Command, args []string) {
	c := root.GetContainer()
	srv := NewServer(c, common.OutputDir(root.SharedFlags.Output, c.GetConfig().Output.Directory))
	if err := srv.Run(cmd.Context()); err != nil {
		c.GetLogger().Fatalf("Server error: %v", err)
	}
}

// NewServer wires the HTTP server from the container.
func NewServer(c *container.Container, outDir string) *server.Server {
	cfg := c.GetConfig()
	h := server.NewHandler(c.GetParser(), c.NewGenerator(), c.GetStore(), c.GetMetrics(), c.GetLogger(), outDir)
	return server.New(cfg.Server.Addr, server.NewRouter(h, cfg.Server.AllowedOrigins), c.GetLogger())
}
