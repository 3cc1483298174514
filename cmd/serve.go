package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bz888/promptpad/internal/api/server"
	"github.com/bz888/promptpad/internal/api/server/client"
	"github.com/bz888/promptpad/internal/config"
	"github.com/bz888/promptpad/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the development backend",
	Long:  "Serve POST /chat and POST /complete, generating text with a local Ollama server.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", config.DefaultAddr, "Address to listen on")
	serveCmd.Flags().String("ollama-host", config.DefaultOllamaHost, "Ollama server URL")
	serveCmd.Flags().String("model", config.DefaultModel, "Ollama model to generate with")
}

func runServe(cmd *cobra.Command, _ []string) error {
	// serve has no debug console, so it always logs to stderr.
	if err := logger.InitLogger(true, cfg.LogPath, os.Stderr); err != nil {
		return err
	}
	localLogger := logger.NewLogger("main")
	defer localLogger.Close()

	ollama, err := client.NewOllamaClient(cfg.OllamaHost, cfg.Model, nil)
	if err != nil {
		return fmt.Errorf("init ollama client: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	localLogger.Infof("Generating with %s at %s", cfg.Model, cfg.OllamaHost)
	return server.New(ollama, reg).Run(ctx, cfg.Addr)
}
