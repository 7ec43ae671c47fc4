package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/elyxhealth/careteam/internal/server"
)

var (
	servePort     int
	serveAllowAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the care-team HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		cfg := server.Config{
			Port:     app.cfg.Server.Port,
			AllowAll: app.cfg.Server.AllowAll || serveAllowAll,
		}
		if servePort != 0 {
			cfg.Port = servePort
		}

		srv := server.New(cfg, app.pipeline, app.issues, app.machine, app.logger)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return err
		case <-stop:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override the configured port")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}
