// Command agentrelay runs the dynamic request and context integration engine
// as an HTTP service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentrelay"
	"github.com/hupe1980/agentrelay/config"
	"github.com/hupe1980/agentrelay/lifecycle"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/model/anthropic"
	"github.com/hupe1980/agentrelay/model/openai"
	"github.com/hupe1980/agentrelay/server"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "agentrelay",
		Short:         "dynamic request and context integration engine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newServeCommand())
	return rootCmd
}

func newServeCommand() *cobra.Command {
	var (
		envFile  string
		addr     string
		provider string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			var envFiles []string
			if envFile != "" {
				envFiles = append(envFiles, envFile)
			}
			cfg, err := config.Load(envFiles...)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			logger := logging.NewSlogLogger(cfg.LogLevel, cfg.LogFormat, false)

			mdl, err := buildModel(provider)
			if err != nil {
				return err
			}

			relay, err := agentrelay.New(func(o *agentrelay.Options) {
				o.LifecycleConfig = cfg.Lifecycle()
				o.Executor = lifecycle.NewModelExecutor(mdl)
				o.Logger = logger
			})
			if err != nil {
				return err
			}
			defer relay.Close()

			srv := server.New(relay.Manager(), func(o *server.Options) {
				o.Addr = cfg.HTTPAddr
				o.Metrics = relay.MetricsCollector()
				o.Logger = logger
			})

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "path to a .env file loaded before reading the environment")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides AGENTRELAY_HTTP_ADDR")
	cmd.Flags().StringVar(&provider, "provider", "mock", "helper model provider: mock, anthropic or openai")
	return cmd
}

func buildModel(provider string) (model.Model, error) {
	switch provider {
	case "mock", "":
		return model.NewMockModel("relay-helper"), nil
	case "anthropic":
		return anthropic.NewModel(), nil
	case "openai":
		return openai.NewModel(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
