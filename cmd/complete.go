package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bz888/promptpad/internal/api"
	"github.com/bz888/promptpad/internal/logger"
	"github.com/bz888/promptpad/internal/ui"
	"github.com/bz888/promptpad/internal/widget"
	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Complete text with the backend",
	Long:  "Open the text-completion widget. Ctrl+Enter completes, Ctrl+Y copies the result, F2 toggles the debug console, Ctrl+C quits.",
	RunE:  runComplete,
}

func runComplete(cmd *cobra.Command, _ []string) error {
	app := ui.NewApp(cfg.Dev)
	if err := logger.InitLogger(cfg.Dev, cfg.LogPath, app.DebugConsole()); err != nil {
		return err
	}
	localLogger := logger.NewLogger("main")
	defer localLogger.Close()

	client, err := api.New(cfg.URL)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		app.Stop()
	}()

	page := ui.NewCompletionPage(app)
	completion := widget.NewCompletion(client, page, widget.DetectClipboard(app.TerminalWriter(os.Stdout)))
	page.Bind(ctx, completion)

	localLogger.Info("Completion widget talking to ", cfg.URL)
	return app.Run(page.Root(), page.Input())
}
