package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/bz888/promptpad/internal/api"
	"github.com/bz888/promptpad/internal/logger"
	"github.com/bz888/promptpad/internal/ui"
	"github.com/bz888/promptpad/internal/widget"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the backend",
	Long:  "Open the chat widget. Enter sends, Shift+Enter adds a new line, F2 toggles the debug console, Ctrl+C quits.",
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, _ []string) error {
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

	page := ui.NewChatPage(app)
	chat := widget.NewChat(client, page)
	page.Bind(ctx, chat)
	chat.Start()

	localLogger.Info("Chat widget talking to ", cfg.URL)
	return app.Run(page.Root(), page.Input())
}
