package commands

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.vocdoni.io/explorer/api"
	"go.vocdoni.io/explorer/httprouter"
	"go.vocdoni.io/explorer/internal"
	"go.vocdoni.io/explorer/log"
	"go.vocdoni.io/explorer/metrics"
)

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the explorer REST API",
		Args:  cobra.NoArgs,
		RunE:  c.serve,
	}
	flags := cmd.Flags()
	flags.StringVar(&c.cfg.API.Host, "host", c.cfg.API.Host, "listen address for the HTTP API")
	flags.IntVar(&c.cfg.API.Port, "port", c.cfg.API.Port, "listen port for the HTTP API")
	flags.StringVar(&c.cfg.API.Route, "route", c.cfg.API.Route, "base path of the HTTP API")
	flags.StringVar(&c.cfg.API.AdminToken, "adminToken", "",
		"bearer token for the cache admin endpoints (disabled if empty)")
	flags.StringVar(&c.cfg.API.TLSDomain, "tlsDomain", "", "fetch a letsencrypt TLS certificate for this domain")
	flags.StringVar(&c.cfg.API.TLSDirCert, "tlsDirCert", "", "directory where the TLS certificates are stored")
	flags.BoolVar(&c.cfg.API.Metrics, "metrics", true, "expose prometheus metrics under /metrics")
	return cmd
}

func (c *cli) serve(cmd *cobra.Command, args []string) error {
	cfg := c.cfg.API
	log.Infow("starting explorer", "version", internal.Version)

	q, client, err := c.newQueries()
	if err != nil {
		return err
	}
	defer client.Close()

	router := &httprouter.HTTProuter{
		TLSdomain:  cfg.TLSDomain,
		TLSdirCert: cfg.TLSDirCert,
	}
	if cfg.Metrics {
		router.EnablePrometheusMetrics("explorer_http")
	}
	if cfg.TLSDomain != "" && cfg.TLSDirCert == "" {
		router.TLSdirCert = filepath.Join(c.cfg.DataDir, "tls")
	}
	if err := router.Init(cfg.Host, cfg.Port); err != nil {
		return err
	}
	defer router.Close()
	if cfg.Metrics {
		metrics.SetInfo(internal.Version)
		router.ExposePrometheusEndpoint("/metrics")
	}

	uAPI, err := api.NewAPI(router, cfg.Route)
	if err != nil {
		return err
	}
	uAPI.Attach(q, c.cfg.Languages...)
	uAPI.Endpoint.SetAdminToken(cfg.AdminToken)
	if err := uAPI.EnableHandlers(api.AllHandlers...); err != nil {
		return err
	}
	log.Infof("explorer API available at %s", cfg.Route)

	// Wait for SIGTERM
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-ch:
		log.Warnf("received signal %s, exiting now", sig)
	case <-cmd.Context().Done():
	}
	return nil
}
