package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aretw0/flume"
	"github.com/aretw0/flume/internal/adapters/httpapi"
	"github.com/aretw0/flume/internal/connector"
	"github.com/aretw0/flume/internal/observability"
	"github.com/aretw0/flume/internal/ticket"
	"github.com/aretw0/flume/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the pipeline behind a JSON API: POST /chat runs the pipeline and persists the resulting ticket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		port, _ := cmd.Flags().GetString("port")
		faqPath, _ := cmd.Flags().GetString("faq")
		ticketsPath, _ := cmd.Flags().GetString("tickets")
		redisAddr, _ := cmd.Flags().GetString("redis")

		logger := newLogger(cmd)

		metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

		opts := []flume.Option{
			flume.WithLogger(logger),
			flume.WithLifecycleHooks(metrics.Hooks()),
		}

		var store ports.TicketStore
		if redisAddr != "" {
			conn := connector.NewRedis(redisAddr, "", 0)
			defer conn.Close()
			if faqPath != "" {
				entries, err := connector.LoadCorpus(faqPath)
				if err != nil {
					return fmt.Errorf("failed to load faq corpus: %w", err)
				}
				if err := conn.Seed(cmd.Context(), entries); err != nil {
					return fmt.Errorf("failed to seed faq corpus: %w", err)
				}
			}
			opts = append(opts, flume.WithConnector(conn))

			redisStore := ticket.NewRedisStore(redisAddr, "", 0)
			defer redisStore.Close()
			store = redisStore
		} else {
			if faqPath != "" {
				entries, err := connector.LoadCorpus(faqPath)
				if err != nil {
					return fmt.Errorf("failed to load faq corpus: %w", err)
				}
				opts = append(opts, flume.WithConnector(connector.NewMemory(entries)))
			}
			store = ticket.NewFileStore(ticketsPath)
		}

		eng, err := flume.New(configPath, opts...)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: httpapi.NewHandler(eng, store, logger),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting server", "addr", srv.Addr, "config", configPath)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutdown started", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("could not stop server: %w", err)
				}
			}
			logger.Info("server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("faq", "", "Path to a YAML FAQ corpus")
	serveCmd.Flags().String("tickets", "tickets.json", "Path to the JSON ticket store (ignored with --redis)")
	serveCmd.Flags().String("redis", "", "Redis address; enables the Redis connector and ticket store")
}
