package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"aptutor/config"
	"aptutor/internal/adapter/bot"
	"aptutor/internal/adapter/httpapi"
)

var (
	serveNoBot bool
	servePort  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and, if enabled, the Discord bot",
	Long: `Build the index once, then serve questions until interrupted.

HTTP endpoints:
  GET  /health
  GET  /api/v1/context?q=<query>&k=<n>
  POST /api/v1/ask            {"question": "..."}
  GET  /metrics

The Discord bot answers "<prefix><command> <question>" (".ap" by default)
by direct message. Enable it with bot.enabled or APTUTOR_BOT_ENABLED=true;
the token is read from DISCORD_BOT_TOKEN.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveNoBot, "no-bot", false, "do not start the Discord bot")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from config or PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	log := component("serve")

	t, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	stats := t.index.Stats()
	log.WithField("docs", stats.TotalDocs).WithField("chunks", stats.TotalChunks).Info("index ready")
	for _, w := range t.warnings() {
		log.Warn(w)
	}

	asker, err := newAsker(t)
	if err != nil {
		return err
	}

	if cfg.Bot.Enabled && !serveNoBot {
		b, err := bot.New(config.GetStringEnv(cfg.Bot.TokenEnv, ""), asker, bot.Options{
			Prefix:        cfg.Bot.Prefix,
			Command:       cfg.Bot.Command,
			MaxMessageLen: cfg.Bot.MaxMessageLen,
			Timeout:       cfg.LLM.Timeout,
		}, component("bot"))
		if err != nil {
			return err
		}
		if err := b.Open(); err != nil {
			return fmt.Errorf("failed to connect discord bot: %w", err)
		}
		defer b.Close()
	}

	port := cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, port)

	server := httpapi.NewServer(asker, t.retrieve, cfg.Retrieve.MaxChunks, t.metrics.Handler(), component("http"))
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
